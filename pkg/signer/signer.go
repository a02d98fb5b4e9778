// Package signer is the standalone transaction-signing library from
// spec.md §4.7: given a seed and the intended transfer fields, it derives
// the wallet, asserts the seed actually owns the claimed sender address,
// and produces the hex-encoded signed transaction payload ready to pass
// to blockchain_sendTransaction. It imports internal/wallet,
// internal/chaintypes and internal/rpcerr only — never internal/ledger — so it can be
// vendored into a browser-side (wasm) or CLI client independently of the
// node daemon.
package signer

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eduledger/node/internal/chaintypes"
	"github.com/eduledger/node/internal/rpcerr"
	"github.com/eduledger/node/internal/wallet"
)

// ErrAddressMismatch is returned when the seed's derived address does not
// match the caller-supplied from address. It is distinct from
// chaintypes.ErrInvalidAddress (a syntactically malformed address
// string): a caller can errors.Is against either to tell the two
// conditions apart.
var ErrAddressMismatch = errors.New("signer: address mismatch")

// Request is the set of fields a caller supplies to sign a transfer.
type Request struct {
	Seed      string
	From      string
	To        string
	Amount    uint64
	Nonce     uint64
	Timestamp int64
}

// Sign derives the wallet from req.Seed, verifies it owns req.From,
// builds and signs the canonical transaction, and returns the
// hex-encoded JSON payload accepted by blockchain_sendTransaction.
func Sign(req Request) (string, error) {
	w := wallet.Derive(req.Seed)
	if string(w.Address) != req.From {
		cause := rpcerr.AddressMismatch(fmt.Sprintf("seed derives address %s, not %s", w.Address, req.From))
		return "", fmt.Errorf("%w: %w", ErrAddressMismatch, cause)
	}

	to, err := chaintypes.ParseAddress(req.To)
	if err != nil {
		return "", fmt.Errorf("signer: invalid recipient address: %w", err)
	}

	tx := chaintypes.Transaction{
		From:      w.Address,
		To:        to,
		Amount:    req.Amount,
		Nonce:     req.Nonce,
		Timestamp: req.Timestamp,
	}
	tx.Hash = tx.RecomputeHash()
	tx.Signature = wallet.SignHex(w.PrivateKey, tx.CanonicalUnsigned())

	payload, err := json.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("signer: encode signed transaction: %w", err)
	}
	return hex.EncodeToString(payload), nil
}
