// Package ledger holds account credit balances.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Entry is one balance movement.
type Entry struct {
	Account string    `json:"account"`
	Delta   int       `json:"delta"`
	Balance int       `json:"balance"`
	Reason  string    `json:"reason"`
	At      time.Time `json:"at"`
}

// Memory is an in-memory ledger. Accounts seen for the first time start with
// the configured initial balance.
type Memory struct {
	mu       sync.Mutex
	initial  int
	balances map[string]int
	journal  map[string][]Entry
}

func NewMemory(initialCredits int) *Memory {
	if initialCredits < 0 {
		initialCredits = 0
	}
	return &Memory{
		initial:  initialCredits,
		balances: make(map[string]int),
		journal:  make(map[string][]Entry),
	}
}

// balance must be called with mu held.
func (m *Memory) balance(account string) int {
	b, ok := m.balances[account]
	if !ok {
		b = m.initial
		m.balances[account] = b
	}
	return b
}

// record must be called with mu held.
func (m *Memory) record(account string, delta int, reason string) int {
	b := m.balance(account) + delta
	m.balances[account] = b
	m.journal[account] = append(m.journal[account], Entry{
		Account: account,
		Delta:   delta,
		Balance: b,
		Reason:  reason,
		At:      time.Now(),
	})
	return b
}

func (m *Memory) Balance(account string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance(account)
}

// Credit adds n credits to the account and returns the new balance.
func (m *Memory) Credit(account string, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(account, n, "credit"), nil
}

// Deduct removes n credits. The balance is left untouched when it is lower
// than n.
func (m *Memory) Deduct(account string, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if b := m.balance(account); b < n {
		return b, fmt.Errorf("account %s has %d credits, %d required: %w", account, b, n, ErrInsufficientCredits)
	}
	return m.record(account, -n, "deduct"), nil
}

// Refund returns n previously deducted credits.
func (m *Memory) Refund(account string, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(account, n, "refund"), nil
}

// History returns a copy of the account's movements, oldest first.
func (m *Memory) History(account string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.journal[account]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
