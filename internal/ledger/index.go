package ledger

// HasTransaction reports whether hash already exists in the transactions
// index, regardless of status. Used by the gossip adapter to dedupe
// inbound transactions before re-running the ingress pipeline.
func (l *Ledger) HasTransaction(hash string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.transactions[hash]
	return ok
}
