// Package dialog implements the per-identity conversational intake: an
// explicit step enum, a session store, and a total transition function that
// accumulates a transaction record answer by answer.
package dialog

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talabot/talabot/internal/domain"
)

// Step is the current position of a session in the intake dialog.
type Step int

const (
	StepName Step = iota
	StepItemKind
	StepGoldPrice
	StepCoinType
	StepCurrencyType
	StepUnitPrice
	StepAmount // total amount for gold, quantity for coin/currency
	StepNote
)

// String returns the step name for logs.
func (s Step) String() string {
	switch s {
	case StepName:
		return "name"
	case StepItemKind:
		return "itemKind"
	case StepGoldPrice:
		return "goldPrice"
	case StepCoinType:
		return "coinType"
	case StepCurrencyType:
		return "currencyType"
	case StepUnitPrice:
		return "unitPrice"
	case StepAmount:
		return "amount"
	case StepNote:
		return "note"
	}
	return "unknown"
}

// Session is the ephemeral state of one in-progress dialog. Exactly one
// session may exist per identity; it is created on "record purchase/sale"
// and destroyed when the final answer is accepted or the dialog is
// abandoned.
type Session struct {
	Identity  domain.Identity
	Direction domain.Direction
	Step      Step
	Kind      domain.ItemKind

	Counterparty string
	Subtype      string
	UnitPrice    decimal.Decimal
	Quantity     decimal.Decimal
	TotalAmount  decimal.Decimal
	Note         string

	StartedAt time.Time
}

// Store owns the identity → session mapping with an explicit lifecycle.
type Store interface {
	// Get returns the active session for an identity, if any.
	Get(id domain.Identity) (*Session, bool)

	// Put creates or replaces the session for its identity.
	Put(sess *Session)

	// Delete removes the session for an identity.
	Delete(id domain.Identity)

	// Len returns the number of active sessions.
	Len() int
}

// MemoryStore is the in-memory Store implementation. One slot per identity;
// writes for the same identity are serialized by the dialog itself, the
// mutex only guards the map across identities.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[domain.Identity]*Session
}

// NewMemoryStore creates an empty session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[domain.Identity]*Session)}
}

func (s *MemoryStore) Get(id domain.Identity) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *MemoryStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Identity] = sess
}

func (s *MemoryStore) Delete(id domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
