package miner

import (
	"context"

	"github.com/eduledger/node/internal/chaintypes"
)

// searchNonce iterates candidate.Nonce from 0 upward until its block hash
// satisfies difficulty leading hex zeros (spec.md §4.4 step 4). It yields
// to ctx every yieldStride iterations so the RPC surface stays responsive
// under high difficulty (spec.md §5); ok is false if ctx was cancelled
// before a winner was found.
func searchNonce(ctx context.Context, candidate *chaintypes.Block, difficulty, yieldStride int) (nonce uint64, hash string, ok bool) {
	for n := uint64(0); ; n++ {
		if yieldStride > 0 && n%uint64(yieldStride) == 0 {
			select {
			case <-ctx.Done():
				return 0, "", false
			default:
			}
		}
		candidate.Nonce = n
		h := candidate.ComputeHash()
		if chaintypes.SatisfiesDifficulty(h, difficulty) {
			return n, h, true
		}
	}
}
