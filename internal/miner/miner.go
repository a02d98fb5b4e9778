// Package miner is the background mining engine from spec.md §4.4: at a
// fixed cadence it drains the mempool, executes transactions against
// ledger state, composes a candidate block, searches for a winning nonce,
// and seals the result.
package miner

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/eduledger/node/internal/chaintypes"
	"github.com/eduledger/node/internal/gossip"
	"github.com/eduledger/node/internal/ledger"
)

// Config mirrors the node daemon's CLI/env configuration for the mining
// engine (spec.md §6).
type Config struct {
	MinerAddress  chaintypes.Address
	Difficulty    int
	BlockInterval time.Duration
	BlockReward   uint64
	// DrainCap bounds how many mempool entries a single tick drains; 0
	// means unbounded, the spec's default.
	DrainCap int
	// YieldStride is how many proof-of-work iterations run between
	// cooperative yields to the shutdown context (spec.md §5 default
	// 1024).
	YieldStride int
}

// Miner is the long-lived mining task. The zero value is not usable;
// construct with New.
type Miner struct {
	cfg    Config
	ledger *ledger.Ledger
	gossip gossip.Adapter
}

func New(cfg Config, l *ledger.Ledger, g gossip.Adapter) *Miner {
	if cfg.YieldStride <= 0 {
		cfg.YieldStride = 1024
	}
	return &Miner{cfg: cfg, ledger: l, gossip: g}
}

// Run drives the mining ticker until ctx is cancelled. It finishes any
// in-progress hash batch before returning; it never seals a block after
// cancellation is observed (spec.md §4.4, §5).
func (m *Miner) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.BlockInterval)
	defer ticker.Stop()

	log.Info("miner: started", "interval", m.cfg.BlockInterval, "difficulty", m.cfg.Difficulty, "miner", m.cfg.MinerAddress)
	for {
		select {
		case <-ctx.Done():
			log.Info("miner: stopped")
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick runs one full iteration of spec.md §4.4's five steps. An empty
// mempool still produces a block, by design.
func (m *Miner) tick(ctx context.Context) {
	batch := m.ledger.DrainMempool(m.cfg.DrainCap)
	included := m.ledger.ExecuteBatch(batch)

	candidate := m.composeCandidate(included)

	nonce, hash, ok := searchNonce(ctx, candidate, m.cfg.Difficulty, m.cfg.YieldStride)
	if !ok {
		log.Info("miner: proof-of-work search interrupted by shutdown", "height", candidate.Height)
		return
	}
	candidate.Nonce = nonce
	candidate.Hash = hash

	if err := m.ledger.SealBlock(candidate, m.cfg.BlockReward); err != nil {
		log.Error("miner: failed to seal block", "err", err, "height", candidate.Height)
		return
	}
	log.Info("miner: sealed block", "height", candidate.Height, "hash", candidate.Hash, "txs", len(candidate.Transactions))
	m.gossip.PublishBlock(candidate)
}

func (m *Miner) composeCandidate(included []string) *chaintypes.Block {
	height := m.ledger.GetHeight() + 1
	prevHash := chaintypes.GenesisPrevHash
	if tip, ok := m.ledger.GetLatestBlock(); ok {
		prevHash = tip.Hash
	}
	return &chaintypes.Block{
		Height:       height,
		PrevHash:     prevHash,
		Timestamp:    time.Now().Unix(),
		Miner:        m.cfg.MinerAddress,
		Reward:       m.cfg.BlockReward,
		Transactions: included,
	}
}
