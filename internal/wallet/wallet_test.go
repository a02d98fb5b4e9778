package wallet

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIsDeterministic(t *testing.T) {
	a := Derive("correct horse battery staple")
	b := Derive("correct horse battery staple")
	assert.Equal(t, a, b)

	c := Derive("different seed")
	assert.NotEqual(t, a.Address, c.Address)
	assert.NotEqual(t, a.PrivateKey, c.PrivateKey)
}

func TestDeriveAddressFormat(t *testing.T) {
	w := Derive("any seed")
	assert.True(t, w.Address.Valid())
}

func TestSignVerifyRoundTrip(t *testing.T) {
	w := Derive("seed-for-signing")
	msg := []byte(`{"from":"EDUaa","to":"EDUbb","amount":1,"nonce":1,"timestamp":1}`)

	sig := Sign(w.PrivateKey, msg)
	assert.Len(t, sig, 32)
	assert.True(t, Verify(w.PrivateKey, msg, sig))

	tampered := append([]byte{}, msg...)
	tampered[0] = '['
	assert.False(t, Verify(w.PrivateKey, tampered, sig))

	other := Derive("different seed")
	assert.False(t, Verify(other.PrivateKey, msg, sig))
}

func TestSignHexRoundTrip(t *testing.T) {
	w := Derive("hex seed")
	msg := []byte("payload")
	hexSig := SignHex(w.PrivateKey, msg)
	assert.Len(t, hexSig, 64)

	raw, err := hex.DecodeString(hexSig)
	assert.NoError(t, err)
	assert.True(t, Verify(w.PrivateKey, msg, raw))
}
