// Package config binds the node daemon's CLI surface (spec.md §6) to a
// plain Config struct. Each flag falls back to an EDUNET_NODE_-prefixed
// environment variable via urfave/cli/v2's per-flag EnvVars, with flags
// taking precedence when both are set.
package config

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/eduledger/node/internal/chaintypes"
)

const (
	defaultRPCPort       = 8545
	defaultP2PPort       = 9000
	defaultDifficulty    = 4
	defaultBlockInterval = 10_000 // ms
	defaultBlockReward   = 5_000_000_000
)

var Flags = []cli.Flag{
	&cli.IntFlag{Name: "rpc-port", Value: defaultRPCPort, EnvVars: []string{"EDUNET_NODE_RPC_PORT"}, Usage: "JSON-RPC HTTP port"},
	&cli.IntFlag{Name: "p2p-port", Value: defaultP2PPort, EnvVars: []string{"EDUNET_NODE_P2P_PORT"}, Usage: "gossip transport port"},
	&cli.StringFlag{Name: "validator-address", EnvVars: []string{"EDUNET_NODE_VALIDATOR_ADDRESS"}, Usage: "miner coinbase address, required with --mining"},
	&cli.BoolFlag{Name: "mining", EnvVars: []string{"EDUNET_NODE_MINING"}, Usage: "enable the mining engine task"},
	&cli.IntFlag{Name: "difficulty", Value: defaultDifficulty, EnvVars: []string{"EDUNET_NODE_DIFFICULTY"}, Usage: "leading hex zeros required in a block hash"},
	&cli.Int64Flag{Name: "block-interval-ms", Value: defaultBlockInterval, EnvVars: []string{"EDUNET_NODE_BLOCK_INTERVAL_MS"}, Usage: "mining tick cadence"},
	&cli.Uint64Flag{Name: "block-reward", Value: defaultBlockReward, EnvVars: []string{"EDUNET_NODE_BLOCK_REWARD"}, Usage: "coinbase reward per sealed block, in smallest units"},
	&cli.StringFlag{Name: "admin-token-secret", EnvVars: []string{"EDUNET_NODE_ADMIN_TOKEN_SECRET"}, Usage: "HMAC secret gating blockchain_creditBalance; empty leaves it open"},
}

// Config is the fully-resolved node configuration.
type Config struct {
	RPCPort          int
	P2PPort          int
	ValidatorAddress chaintypes.Address
	Mining           bool
	Difficulty       int
	BlockInterval    time.Duration
	BlockReward      uint64
	AdminTokenSecret string
}

// FromCLI resolves Config from a parsed cli.Context, validating the
// required-if-mining validator address.
func FromCLI(c *cli.Context) (Config, error) {
	cfg := Config{
		RPCPort:          c.Int("rpc-port"),
		P2PPort:          c.Int("p2p-port"),
		Mining:           c.Bool("mining"),
		Difficulty:       c.Int("difficulty"),
		BlockInterval:    time.Duration(c.Int64("block-interval-ms")) * time.Millisecond,
		BlockReward:      c.Uint64("block-reward"),
		AdminTokenSecret: c.String("admin-token-secret"),
	}

	if raw := c.String("validator-address"); raw != "" {
		addr, err := chaintypes.ParseAddress(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid --validator-address: %w", err)
		}
		cfg.ValidatorAddress = addr
	}
	if cfg.Mining && cfg.ValidatorAddress == "" {
		return Config{}, fmt.Errorf("config: --validator-address is required when --mining is set")
	}
	return cfg, nil
}
