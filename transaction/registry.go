package transaction

import (
	"sync"

	"github.com/arnesip/sipkit/sip"
)

// Registry stores live transactions keyed by their sip.TransactionKey and
// matches a retransmitted request or an incoming response to the
// transaction that owns it.
type Registry struct {
	transactions map[sip.TransactionKey]sip.Transaction
	mu           sync.RWMutex
}

func newRegistry() *Registry {
	return &Registry{
		transactions: make(map[sip.TransactionKey]sip.Transaction),
	}
}

func (r *Registry) put(key sip.TransactionKey, tx sip.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[key] = tx
}

func (r *Registry) get(key sip.TransactionKey) (sip.Transaction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.transactions[key]
	return tx, ok
}

func (r *Registry) drop(key sip.TransactionKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.transactions[key]
	delete(r.transactions, key)
	return exists
}

func (r *Registry) all() []sip.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]sip.Transaction, 0, len(r.transactions))
	for _, tx := range r.transactions {
		all = append(all, tx)
	}
	return all
}

// terminateAll terminates and drops every transaction currently
// registered. Used by the Layer on Close.
func (r *Registry) terminateAll() {
	r.mu.Lock()
	all := make([]sip.Transaction, 0, len(r.transactions))
	for _, tx := range r.transactions {
		all = append(all, tx)
	}
	r.transactions = make(map[sip.TransactionKey]sip.Transaction)
	r.mu.Unlock()

	for _, tx := range all {
		tx.Terminate()
	}
}
