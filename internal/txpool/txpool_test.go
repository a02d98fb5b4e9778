package txpool

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduledger/node/internal/chaintypes"
	"github.com/eduledger/node/internal/ledger"
	"github.com/eduledger/node/internal/wallet"
)

func signedPayload(t *testing.T, w wallet.Wallet, to chaintypes.Address, amount, nonce uint64) []byte {
	t.Helper()
	tx := chaintypes.Transaction{From: w.Address, To: to, Amount: amount, Nonce: nonce, Timestamp: 1700000000}
	tx.Hash = tx.RecomputeHash()
	tx.Signature = wallet.SignHex(w.PrivateKey, tx.CanonicalUnsigned())
	raw, err := json.Marshal(tx)
	require.NoError(t, err)
	return raw
}

func TestAcceptHappyPath(t *testing.T) {
	l := ledger.New()
	p := New(l)
	w := wallet.Derive("sender seed")
	to := wallet.Derive("recipient seed").Address

	raw := signedPayload(t, w, to, 10, 1)
	hash, err := p.Accept(hex.EncodeToString(raw))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.Equal(t, 1, l.MempoolSize())
}

func TestAcceptRejectsBadHexEncoding(t *testing.T) {
	p := New(ledger.New())
	_, err := p.Accept("not-hex!!")
	require.Error(t, err)
}

func TestAcceptRejectsHashMismatch(t *testing.T) {
	l := ledger.New()
	p := New(l)
	w := wallet.Derive("sender seed")
	to := wallet.Derive("recipient seed").Address

	tx := chaintypes.Transaction{From: w.Address, To: to, Amount: 10, Nonce: 1, Timestamp: 1}
	tx.Hash = tx.RecomputeHash()
	tx.Signature = wallet.SignHex(w.PrivateKey, tx.CanonicalUnsigned())
	tx.Amount = 999 // mutate after hashing/signing
	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	_, err = p.AcceptRaw(raw)
	require.Error(t, err)
}

func TestAcceptRejectsStaleNonce(t *testing.T) {
	l := ledger.New()
	p := New(l)
	w := wallet.Derive("sender seed")
	to := wallet.Derive("recipient seed").Address

	raw := signedPayload(t, w, to, 10, 1)
	_, err := p.AcceptRaw(raw)
	require.NoError(t, err)

	// Fund the sender so the first transaction executes and consumes nonce 1.
	l.Credit(w.Address, 10)
	l.ExecuteBatch(l.DrainMempool(0))

	// A distinct transaction (different amount, so a different hash) reusing
	// the already-consumed nonce must be rejected as stale, not treated as a
	// duplicate resubmission of the first.
	again := chaintypes.Transaction{From: w.Address, To: to, Amount: 20, Nonce: 1, Timestamp: 1700000000}
	again.Hash = again.RecomputeHash()
	again.Signature = wallet.SignHex(w.PrivateKey, again.CanonicalUnsigned())
	rawAgain, err := json.Marshal(again)
	require.NoError(t, err)

	_, err = p.AcceptRaw(rawAgain)
	require.Error(t, err)
}

func TestAcceptRawIsIdempotentForExactResubmission(t *testing.T) {
	l := ledger.New()
	p := New(l)
	w := wallet.Derive("sender seed")
	to := wallet.Derive("recipient seed").Address

	raw := signedPayload(t, w, to, 10, 1)
	first, err := p.AcceptRaw(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, l.MempoolSize())

	// Resubmitting the identical signed payload (a realistic client retry)
	// must not enqueue a second copy of the same hash.
	second, err := p.AcceptRaw(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, l.MempoolSize())
}

func TestAcceptRejectsBadSignatureLength(t *testing.T) {
	l := ledger.New()
	p := New(l)
	w := wallet.Derive("sender seed")
	to := wallet.Derive("recipient seed").Address

	tx := chaintypes.Transaction{From: w.Address, To: to, Amount: 10, Nonce: 1, Timestamp: 1}
	tx.Hash = tx.RecomputeHash()
	tx.Signature = "aabbcc" // too short to be a 32-byte MAC
	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	_, err = p.AcceptRaw(raw)
	require.Error(t, err)
}
