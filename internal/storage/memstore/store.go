// Package memstore implements repository.Store in process memory. It backs
// the "memory" storage driver and serves as the store of service tests.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type outboxMsg struct {
	id           uuid.UUID
	topic        string
	headers      map[string]string
	payload      []byte
	partitionKey *string
	processed    bool
	err          *string
}

type state struct {
	products  map[uuid.UUID]model.Product
	sales     map[uuid.UUID]model.Sale
	users     map[uuid.UUID]model.User
	roles     map[model.Role]struct{}
	userRoles map[uuid.UUID]map[model.Role]struct{}
	outbox    []outboxMsg
}

func newState() *state {
	return &state{
		products:  map[uuid.UUID]model.Product{},
		sales:     map[uuid.UUID]model.Sale{},
		users:     map[uuid.UUID]model.User{},
		roles:     map[model.Role]struct{}{},
		userRoles: map[uuid.UUID]map[model.Role]struct{}{},
	}
}

// clone copies the maps of the state. Stored values are never mutated in
// place, so entries can be shared between the copies.
func (s *state) clone() *state {
	userRoles := make(map[uuid.UUID]map[model.Role]struct{}, len(s.userRoles))
	for id, roles := range s.userRoles {
		userRoles[id] = maps.Clone(roles)
	}

	return &state{
		products:  maps.Clone(s.products),
		sales:     maps.Clone(s.sales),
		users:     maps.Clone(s.users),
		roles:     maps.Clone(s.roles),
		userRoles: userRoles,
		outbox:    slices.Clone(s.outbox),
	}
}

// Store is a repository.Store kept in memory. Transactions are serialized:
// a transaction holds the store lock until it commits or rolls back.
type Store struct {
	mu *sync.Mutex
	st **state
	// inTx is true for the store handed to a transaction function, whose
	// goroutine already holds mu.
	inTx bool
}

func New() *Store {
	st := newState()
	return &Store{
		mu: &sync.Mutex{},
		st: &st,
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) state() *state {
	return *s.st
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepository{s: s}
}

func (s *Store) Sales() repository.SaleRepository {
	return &saleRepository{s: s}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{s: s}
}

func (s *Store) OutboxMsgs() repository.OutboxMsgRepository {
	return &outboxMsgRepository{s: s}
}

// WithTx runs txFunc against the store and restores the previous state when
// txFunc fails. Nested calls behave like savepoints.
func (s *Store) WithTx(_ context.Context, txFunc func(repository.Store) error) error {
	unlock := s.lock()
	defer unlock()

	snapshot := s.state().clone()

	tx := &Store{mu: s.mu, st: s.st, inTx: true}
	if err := txFunc(tx); err != nil {
		*s.st = snapshot
		return err
	}

	return nil
}
