// Package txpool implements the transaction ingress pipeline from
// spec.md §4.3: hex/JSON decoding, canonical rehash verification, nonce
// and signature checks, and enqueueing into the ledger's mempool.
// Balance is deliberately not checked here — that is deferred to the
// mining engine's executor so an accepted-then-failing transaction
// surfaces as a terminal "failed" status rather than an RPC-time error.
package txpool

import (
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/log"

	"github.com/eduledger/node/internal/chaintypes"
	"github.com/eduledger/node/internal/ledger"
	"github.com/eduledger/node/internal/rpcerr"
)

type Pool struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Pool {
	return &Pool{ledger: l}
}

// Accept runs the full ingress pipeline over a hex-encoded, UTF-8 JSON
// signed transaction and, on success, enqueues it as pending and returns
// its hash. Errors are *rpcerr.Domain with the taxonomy kind from
// spec.md §7.
func (p *Pool) Accept(hexPayload string) (string, error) {
	raw, err := hex.DecodeString(hexPayload)
	if err != nil {
		return "", rpcerr.InvalidEncoding("hex decode failed: " + err.Error())
	}
	return p.AcceptRaw(raw)
}

// AcceptRaw runs the same pipeline as Accept but over already hex-decoded
// JSON bytes, for callers (the gossip adapter) that receive the canonical
// payload directly off the wire.
func (p *Pool) AcceptRaw(raw []byte) (string, error) {
	var tx chaintypes.Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return "", rpcerr.InvalidEncoding("json decode failed: " + err.Error())
	}
	if !tx.From.Valid() || !tx.To.Valid() {
		return "", rpcerr.InvalidEncoding("malformed from/to address")
	}

	if got := tx.RecomputeHash(); got != tx.Hash {
		return "", rpcerr.HashMismatch("submitted hash does not match canonical rehash")
	}

	// A retried identical submission must not re-enqueue: ExecuteBatch has
	// no way to tell a genuine duplicate from a second pending copy of the
	// same hash, and would fail the second copy as a stale nonce even
	// though the first is about to be confirmed.
	if p.ledger.HasTransaction(tx.Hash) {
		return tx.Hash, nil
	}

	if tx.Nonce <= p.ledger.GetNonce(tx.From) {
		return "", rpcerr.StaleNonce("nonce must be strictly greater than the last observed nonce")
	}

	sig, err := tx.SignatureBytes()
	if err != nil || len(sig) != chaintypes.MACSize {
		return "", rpcerr.BadSignature("signature must be a hex-encoded 32-byte MAC")
	}

	p.ledger.EnqueuePending(tx)
	log.Debug("txpool: accepted transaction", "hash", tx.Hash, "from", tx.From, "nonce", tx.Nonce)
	return tx.Hash, nil
}
