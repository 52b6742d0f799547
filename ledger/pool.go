package ledger

import "sync"

// PoolEntry tracks a dispatched transaction: the intent it carried and the
// signer it came from.
type PoolEntry struct {
	Dispatch Intent
	IPK      string // signer public key hex
	Address  string
}

// TxPool is the bounded set of locally submitted, not-yet-confirmed
// transaction hexes. It guards against redundant local resubmission only;
// the ledger's own idempotence is enforced by nonce binding. When the pool
// is full, inserts are silently dropped.
type TxPool struct {
	mu      sync.Mutex
	max     int
	entries map[string]PoolEntry
}

// NewTxPool returns a pool bounded to max entries.
func NewTxPool(max int) *TxPool {
	return &TxPool{max: max, entries: make(map[string]PoolEntry)}
}

// IsNotFull reports whether the pool can accept another entry.
func (p *TxPool) IsNotFull() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries) < p.max
}

// Contains reports whether txHex is already tracked.
func (p *TxPool) Contains(txHex string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[txHex]
	return ok
}

// Add inserts txHex if absent and the pool has capacity; it reports
// whether the entry was stored. Insert-if-absent-and-not-full is the one
// atomic primitive callers rely on.
func (p *TxPool) Add(txHex string, entry PoolEntry) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) >= p.max {
		return false
	}
	if _, ok := p.entries[txHex]; ok {
		return false
	}
	p.entries[txHex] = entry
	return true
}

// Remove drops txHex from tracking (confirmed or abandoned).
func (p *TxPool) Remove(txHex string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, txHex)
}

// Len reports the current number of tracked transactions.
func (p *TxPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
