// Package node wires the ledger, transaction pipeline, mining engine,
// RPC surface and gossip adapter into the long-lived daemon described in
// spec.md §5: three cooperating tasks (RPC server, optional miner, gossip
// listener) started together and shut down together on the first signal
// or first fatal error, using golang.org/x/sync/errgroup the way the
// teacher's own multi-task services do.
package node

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/eduledger/node/internal/config"
	"github.com/eduledger/node/internal/gossip"
	"github.com/eduledger/node/internal/ledger"
	"github.com/eduledger/node/internal/miner"
	"github.com/eduledger/node/internal/rpcapi"
	"github.com/eduledger/node/internal/txpool"
)

// Node is the assembled daemon. Run drives it to completion.
type Node struct {
	cfg config.Config

	ledger *ledger.Ledger
	pool   *txpool.Pool
	gossip *gossip.WSAdapter
	rpc    *rpcapi.Server
	miner  *miner.Miner
}

// New assembles every component from cfg but starts nothing.
func New(cfg config.Config) *Node {
	l := ledger.New()
	pool := txpool.New(l)
	ws := gossip.NewWSAdapter(l, pool)

	api := rpcapi.NewBlockchainAPI(l, pool, ws, rpcapi.MiningInfoSource{
		Difficulty: cfg.Difficulty,
		Reward:     cfg.BlockReward,
		Miner:      cfg.ValidatorAddress,
	})

	n := &Node{
		cfg:    cfg,
		ledger: l,
		pool:   pool,
		gossip: ws,
	}

	if cfg.Mining {
		n.miner = miner.New(miner.Config{
			MinerAddress:  cfg.ValidatorAddress,
			Difficulty:    cfg.Difficulty,
			BlockInterval: cfg.BlockInterval,
			BlockReward:   cfg.BlockReward,
		}, l, ws)
	}

	srv, err := rpcapi.NewServer(fmt.Sprintf(":%d", cfg.RPCPort), api, cfg.AdminTokenSecret)
	if err != nil {
		// RegisterName only fails on a duplicate/invalid receiver shape,
		// which is a programming error, not a runtime condition.
		panic(fmt.Sprintf("node: failed to register RPC receiver: %v", err))
	}
	n.rpc = srv

	return n
}

// Run starts every configured task and blocks until ctx is cancelled (or
// signal.NotifyContext fires) or a task fails, then shuts everything down
// and returns the first non-context-cancellation error, if any.
func (n *Node) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return n.rpc.Run(gctx)
	})

	g.Go(func() error {
		mux := http.NewServeMux()
		mux.HandleFunc("/gossip", n.gossip.HandlePeer)
		gossipSrv := &http.Server{Addr: fmt.Sprintf(":%d", n.cfg.P2PPort), Handler: mux}

		errCh := make(chan error, 1)
		go func() { errCh <- gossipSrv.ListenAndServe() }()

		select {
		case <-gctx.Done():
			_ = gossipSrv.Close()
			_ = n.gossip.Close()
			return gctx.Err()
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		}
	})

	if n.miner != nil {
		g.Go(func() error {
			return n.miner.Run(gctx)
		})
	}

	log.Info("node: started", "rpc_port", n.cfg.RPCPort, "p2p_port", n.cfg.P2PPort, "mining", n.cfg.Mining)
	err := g.Wait()
	if err != nil && ctx.Err() != nil {
		// Every task returns ctx.Err() on a coordinated shutdown; that is
		// success from the caller's point of view.
		return nil
	}
	return err
}
