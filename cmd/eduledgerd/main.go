// Command eduledgerd runs a single EduLedger node: the RPC surface, the
// gossip listener and, when enabled, the mining engine.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/eduledger/node/internal/config"
	"github.com/eduledger/node/internal/node"
)

func main() {
	app := &cli.App{
		Name:  "eduledgerd",
		Usage: "run an EduLedger proof-of-work node",
		Flags: config.Flags,
		Action: func(c *cli.Context) error {
			cfg, err := config.FromCLI(c)
			if err != nil {
				return err
			}
			n := node.New(cfg)
			return n.Run(context.Background())
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("eduledgerd: fatal", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
