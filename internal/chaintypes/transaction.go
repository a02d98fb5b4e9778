package chaintypes

import (
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/crypto"
)

// MACSize is the width, in bytes, of the keyed-hash signature produced by
// the wallet signer. A signature of any other decoded length is rejected
// at ingress as BadSignature.
const MACSize = 32

// unsignedFields mirrors the exact key order spec.md §6 requires for the
// canonical pre-image: from, to, amount, nonce, timestamp, no other keys.
// encoding/json marshals struct fields in declaration order and never
// inserts insignificant whitespace, so this struct alone defines the wire
// format without any hand-rolled serializer.
type unsignedFields struct {
	From      Address `json:"from"`
	To        Address `json:"to"`
	Amount    uint64  `json:"amount"`
	Nonce     uint64  `json:"nonce"`
	Timestamp int64   `json:"timestamp"`
}

// Transaction is the canonical signed form described in spec.md §3: the
// unsigned fields plus a signature and a self-referential hash.
type Transaction struct {
	From      Address `json:"from"`
	To        Address `json:"to"`
	Amount    uint64  `json:"amount"`
	Nonce     uint64  `json:"nonce"`
	Timestamp int64   `json:"timestamp"`
	Signature string  `json:"signature"`
	Hash      string  `json:"hash"`
}

// CanonicalUnsigned returns the deterministic JSON pre-image signed and
// hashed by the wallet.
func (tx *Transaction) CanonicalUnsigned() []byte {
	b, err := json.Marshal(unsignedFields{
		From:      tx.From,
		To:        tx.To,
		Amount:    tx.Amount,
		Nonce:     tx.Nonce,
		Timestamp: tx.Timestamp,
	})
	if err != nil {
		// unsignedFields only contains marshalable scalars; this cannot fail.
		panic(err)
	}
	return b
}

// RecomputeHash returns the hex hash of the transaction's canonical
// unsigned form, for comparison against the submitted Hash field.
func (tx *Transaction) RecomputeHash() string {
	sum := crypto.Keccak256(tx.CanonicalUnsigned())
	return hex.EncodeToString(sum)
}

// SignatureBytes decodes the hex signature field.
func (tx *Transaction) SignatureBytes() ([]byte, error) {
	return hex.DecodeString(tx.Signature)
}
