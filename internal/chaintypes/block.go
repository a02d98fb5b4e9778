package chaintypes

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// GenesisPrevHash is the prev_hash carried by the block at height 0.
var GenesisPrevHash = strings.Repeat("0", 64)

// blockPreimage mirrors spec.md §6's required key order for block hashing:
// height, prev_hash, timestamp, nonce, miner, reward, transactions. The
// block's own hash is deliberately absent from this struct.
type blockPreimage struct {
	Height       int64    `json:"height"`
	PrevHash     string   `json:"prev_hash"`
	Timestamp    int64    `json:"timestamp"`
	Nonce        uint64   `json:"nonce"`
	Miner        Address  `json:"miner"`
	Reward       uint64   `json:"reward"`
	Transactions []string `json:"transactions"`
}

// Block is the sealed, append-only record described in spec.md §3.
type Block struct {
	Height       int64    `json:"height"`
	PrevHash     string   `json:"prev_hash"`
	Timestamp    int64    `json:"timestamp"`
	Nonce        uint64   `json:"nonce"`
	Miner        Address  `json:"miner"`
	Reward       uint64   `json:"reward"`
	Transactions []string `json:"transactions"`
	Hash         string   `json:"hash"`
}

func (b *Block) preimage() blockPreimage {
	txs := b.Transactions
	if txs == nil {
		txs = []string{}
	}
	return blockPreimage{
		Height:       b.Height,
		PrevHash:     b.PrevHash,
		Timestamp:    b.Timestamp,
		Nonce:        b.Nonce,
		Miner:        b.Miner,
		Reward:       b.Reward,
		Transactions: txs,
	}
}

// CanonicalBytes returns the deterministic JSON pre-image hashed both for
// proof-of-work search and for the final block hash.
func (b *Block) CanonicalBytes() []byte {
	raw, err := json.Marshal(b.preimage())
	if err != nil {
		panic(err)
	}
	return raw
}

// ComputeHash hashes the block's canonical bytes with the nonce currently
// set on b.
func (b *Block) ComputeHash() string {
	sum := crypto.Keccak256(b.CanonicalBytes())
	return hex.EncodeToString(sum)
}

// SatisfiesDifficulty reports whether hexHash begins with difficulty leading hex
// '0' characters.
func SatisfiesDifficulty(hexHash string, difficulty int) bool {
	if len(hexHash) < difficulty {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if hexHash[i] != '0' {
			return false
		}
	}
	return true
}
