package signer

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduledger/node/internal/chaintypes"
	"github.com/eduledger/node/internal/wallet"
)

func TestSignProducesValidTransaction(t *testing.T) {
	seed := "my secret seed"
	from := wallet.Derive(seed).Address
	to := wallet.Derive("someone else").Address

	payload, err := Sign(Request{
		Seed:      seed,
		From:      string(from),
		To:        string(to),
		Amount:    25,
		Nonce:     1,
		Timestamp: 1700000000,
	})
	require.NoError(t, err)

	raw, err := hex.DecodeString(payload)
	require.NoError(t, err)

	var tx chaintypes.Transaction
	require.NoError(t, json.Unmarshal(raw, &tx))

	assert.Equal(t, from, tx.From)
	assert.Equal(t, to, tx.To)
	assert.Equal(t, tx.RecomputeHash(), tx.Hash)

	w := wallet.Derive(seed)
	sig, err := tx.SignatureBytes()
	require.NoError(t, err)
	assert.True(t, wallet.Verify(w.PrivateKey, tx.CanonicalUnsigned(), sig))
}

func TestSignRejectsAddressMismatch(t *testing.T) {
	to := wallet.Derive("someone else").Address
	_, err := Sign(Request{
		Seed:   "my secret seed",
		From:   "EDUwrong00000000000000000000000000000000",
		To:     string(to),
		Amount: 1,
		Nonce:  1,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAddressMismatch))
	assert.False(t, errors.Is(err, chaintypes.ErrInvalidAddress),
		"address mismatch must be distinguishable from a malformed address string")
}

func TestSignRejectsInvalidRecipient(t *testing.T) {
	seed := "my secret seed"
	from := wallet.Derive(seed).Address
	_, err := Sign(Request{
		Seed: seed,
		From: string(from),
		To:   "not-an-address",
	})
	require.Error(t, err)
}
