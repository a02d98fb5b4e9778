// Package wallet implements the deterministic seed-to-address derivation
// and the keyed-hash signing/verification primitive described in
// spec.md §4.2. It has no dependency on the ledger: it is also imported
// directly by pkg/signer for the external web-client signing library.
package wallet

import (
	"crypto/subtle"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/eduledger/node/internal/chaintypes"
)

// Wallet holds the derived key material and address for a seed.
type Wallet struct {
	PrivateKey []byte
	PublicKey  []byte
	Address    chaintypes.Address
}

// Derive rederives the deterministic keypair and address for seed. The
// same seed always yields the same Wallet.
//
//	private_key = H(seed)
//	public_key  = H(private_key)
//	address     = "EDU" + hex(H(public_key)[0..20])
func Derive(seed string) Wallet {
	priv := crypto.Keccak256([]byte(seed))
	pub := crypto.Keccak256(priv)
	addrHash := crypto.Keccak256(pub)

	var suffix [20]byte
	copy(suffix[:], addrHash[:20])

	return Wallet{
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    chaintypes.NewAddress(suffix),
	}
}

// Sign produces the MACSize-byte keyed-hash MAC over unsignedTxBytes under
// privateKey. The construction is H(private_key || message): a single
// Keccak256 call keyed by the private material, standing in for an
// HMAC-family primitive without pulling in crypto/hmac for a construction
// nothing else in this system needs (see DESIGN.md).
func Sign(privateKey, unsignedTxBytes []byte) []byte {
	buf := make([]byte, 0, len(privateKey)+len(unsignedTxBytes))
	buf = append(buf, privateKey...)
	buf = append(buf, unsignedTxBytes...)
	return crypto.Keccak256(buf)
}

// SignHex is Sign with a hex-encoded result, the form transactions carry
// on the wire.
func SignHex(privateKey, unsignedTxBytes []byte) string {
	return hex.EncodeToString(Sign(privateKey, unsignedTxBytes))
}

// Verify recomputes the MAC over unsignedTxBytes under privateKey and
// compares it to signature in constant time. Full third-party verification
// (without the private key) is out of scope for this symmetric scheme —
// see spec.md §4.2 and §9.
func Verify(privateKey, unsignedTxBytes, signature []byte) bool {
	want := Sign(privateKey, unsignedTxBytes)
	return subtle.ConstantTimeCompare(want, signature) == 1
}
