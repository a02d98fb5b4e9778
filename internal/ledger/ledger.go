// Package ledger is the authoritative, in-memory ledger state described in
// spec.md §3 and §4.1: balances, the block sequence, the transaction
// index, the mempool queue and per-sender nonces, behind a single
// reader/writer lock. It is the only component permitted to mutate
// balances or the block sequence.
package ledger

import (
	"fmt"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/eduledger/node/internal/chaintypes"
)

// TxRecord is the transactions-index entry: the transaction itself plus
// its lifecycle status and, for failed transactions, the rejection
// reason.
type TxRecord struct {
	Tx          chaintypes.Transaction
	Status      chaintypes.Status
	ErrorKind   chaintypes.ErrorKind
	BlockHeight *int64
}

// Ledger is the single source of truth for chain state. The zero value is
// not usable; construct with New.
type Ledger struct {
	mu sync.RWMutex

	balances     map[chaintypes.Address]uint64
	blocks       []*chaintypes.Block
	transactions map[string]*TxRecord
	mempool      []string
	nonces       map[chaintypes.Address]uint64
}

func New() *Ledger {
	return &Ledger{
		balances:     make(map[chaintypes.Address]uint64),
		transactions: make(map[string]*TxRecord),
		nonces:       make(map[chaintypes.Address]uint64),
	}
}

// GetBalance returns 0 for unknown addresses.
func (l *Ledger) GetBalance(addr chaintypes.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[addr]
}

// GetHeight returns -1 before genesis.
func (l *Ledger) GetHeight() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.blocks)) - 1
}

// GetNonce returns the nonce of addr's most recently executed transaction,
// 0 if none.
func (l *Ledger) GetNonce(addr chaintypes.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nonces[addr]
}

func (l *Ledger) GetBlockByHeight(h int64) (*chaintypes.Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if h < 0 || h >= int64(len(l.blocks)) {
		return nil, false
	}
	return l.blocks[h], true
}

func (l *Ledger) GetBlockByHash(hash string) (*chaintypes.Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, b := range l.blocks {
		if b.Hash == hash {
			return b, true
		}
	}
	return nil, false
}

func (l *Ledger) GetLatestBlock() (*chaintypes.Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.blocks) == 0 {
		return nil, false
	}
	return l.blocks[len(l.blocks)-1], true
}

func (l *Ledger) GetTransaction(hash string) (TxRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.transactions[hash]
	if !ok {
		return TxRecord{}, false
	}
	return *rec, true
}

// MempoolSize returns the number of transactions currently pending
// inclusion.
func (l *Ledger) MempoolSize() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.mempool)
}

// Credit saturates at math.MaxUint64 rather than wrapping. It is the
// administrative path used by block coinbase rewards and the
// blockchain_creditBalance RPC method; it never fails.
func (l *Ledger) Credit(addr chaintypes.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.creditLocked(addr, amount)
}

func (l *Ledger) creditLocked(addr chaintypes.Address, amount uint64) {
	cur := uint256.NewInt(l.balances[addr])
	add := uint256.NewInt(amount)
	sum, overflow := new(uint256.Int).AddOverflow(cur, add)
	if overflow || !sum.IsUint64() {
		l.balances[addr] = math.MaxUint64
		log.Warn("ledger: balance saturated at max uint64", "address", addr)
		return
	}
	l.balances[addr] = sum.Uint64()
}

// Debit fails without mutation if the balance is insufficient.
func (l *Ledger) Debit(addr chaintypes.Address, amount uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debitLocked(addr, amount)
}

func (l *Ledger) debitLocked(addr chaintypes.Address, amount uint64) bool {
	if l.balances[addr] < amount {
		return false
	}
	l.balances[addr] -= amount
	return true
}

// EnqueuePending records a newly accepted transaction as pending and
// appends its hash to the FIFO mempool. Callers (internal/txpool) are
// responsible for having already validated encoding, hash, nonce and
// signature.
func (l *Ledger) EnqueuePending(tx chaintypes.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transactions[tx.Hash] = &TxRecord{Tx: tx, Status: chaintypes.StatusPending}
	l.mempool = append(l.mempool, tx.Hash)
}

// DrainMempool atomically removes, in FIFO order, all pending transaction
// hashes (or up to cap if cap > 0) from the mempool and returns their
// transactions.
func (l *Ledger) DrainMempool(cap int) []chaintypes.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.mempool)
	if cap > 0 && cap < n {
		n = cap
	}
	hashes := l.mempool[:n]
	l.mempool = l.mempool[n:]

	out := make([]chaintypes.Transaction, 0, n)
	for _, h := range hashes {
		if rec, ok := l.transactions[h]; ok {
			out = append(out, rec.Tx)
		}
	}
	return out
}

// ExecuteBatch applies drained transactions in FIFO order under the
// writer lock (spec.md §4.4 step 2): it re-checks the nonce, attempts the
// debit, and on success credits the recipient and advances the sender's
// nonce. A transaction may spend funds credited earlier in the same
// batch. It returns the hashes that executed successfully, in order —
// these are the candidate block's transaction list.
func (l *Ledger) ExecuteBatch(batch []chaintypes.Transaction) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	included := make([]string, 0, len(batch))
	for _, tx := range batch {
		rec, ok := l.transactions[tx.Hash]
		if !ok {
			// Defensive: the hash came from our own mempool drain.
			rec = &TxRecord{Tx: tx}
			l.transactions[tx.Hash] = rec
		}

		if tx.Nonce <= l.nonces[tx.From] {
			rec.Status = chaintypes.StatusFailed
			rec.ErrorKind = chaintypes.ErrStaleNonce
			continue
		}
		if !l.debitLocked(tx.From, tx.Amount) {
			rec.Status = chaintypes.StatusFailed
			rec.ErrorKind = chaintypes.ErrInsufficientFunds
			continue
		}
		l.creditLocked(tx.To, tx.Amount)
		l.nonces[tx.From] = tx.Nonce
		included = append(included, tx.Hash)
	}
	return included
}

// SealBlock credits the miner's reward, validates and appends candidate,
// and marks every included transaction confirmed at candidate's height,
// all under one writer lock. The balance transfers of the included
// transactions are not part of this critical section: ExecuteBatch has
// already applied them under its own lock, so between ExecuteBatch and
// SealBlock a reader sees the moved balances while those transactions
// are still pending and the block does not exist yet.
func (l *Ledger) SealBlock(candidate *chaintypes.Block, minerReward uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	wantHeight := int64(len(l.blocks))
	if candidate.Height != wantHeight {
		return fmt.Errorf("ledger: candidate height %d does not extend tip at %d", candidate.Height, wantHeight-1)
	}
	wantPrev := chaintypes.GenesisPrevHash
	if len(l.blocks) > 0 {
		wantPrev = l.blocks[len(l.blocks)-1].Hash
	}
	if candidate.PrevHash != wantPrev {
		return fmt.Errorf("ledger: candidate prev_hash mismatch at height %d", candidate.Height)
	}

	l.creditLocked(candidate.Miner, minerReward)
	l.blocks = append(l.blocks, candidate)

	height := candidate.Height
	for _, hash := range candidate.Transactions {
		if rec, ok := l.transactions[hash]; ok {
			rec.Status = chaintypes.StatusConfirmed
			h := height
			rec.BlockHeight = &h
		}
	}
	return nil
}
