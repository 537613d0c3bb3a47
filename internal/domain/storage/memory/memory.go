// Package memory is an in-process storage.Backend. Transactions run one at a
// time against a copy of the state that replaces the live state on commit, so
// a failed unit of work leaves nothing behind.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"snackspot/internal/domain/auditlogs"
	"snackspot/internal/domain/categories"
	"snackspot/internal/domain/refreshtokens"
	"snackspot/internal/domain/reviews"
	"snackspot/internal/domain/snacks"
	"snackspot/internal/domain/storage"
	"snackspot/internal/domain/stores"
	"snackspot/internal/domain/users"

	"github.com/google/uuid"
)

type storeRow struct {
	stores.Store
	deleted bool
}

type snackRow struct {
	snacks.Snack
	deleted bool
}

type state struct {
	seq        int64
	users      map[int64]users.User
	categories map[int64]categories.Category
	stores     map[int64]storeRow
	snacks     map[int64]snackRow
	reviews    map[int64]reviews.Review
	tokens     map[uuid.UUID]refreshtokens.Token
	audit      []auditlogs.Entry
	failures   map[string]error
}

func newState() *state {
	return &state{
		users:      make(map[int64]users.User),
		categories: make(map[int64]categories.Category),
		stores:     make(map[int64]storeRow),
		snacks:     make(map[int64]snackRow),
		reviews:    make(map[int64]reviews.Review),
		tokens:     make(map[uuid.UUID]refreshtokens.Token),
		failures:   make(map[string]error),
	}
}

func (s *state) clone() *state {
	return &state{
		seq:        s.seq,
		users:      maps.Clone(s.users),
		categories: maps.Clone(s.categories),
		stores:     maps.Clone(s.stores),
		snacks:     maps.Clone(s.snacks),
		reviews:    maps.Clone(s.reviews),
		tokens:     maps.Clone(s.tokens),
		audit:      append([]auditlogs.Entry(nil), s.audit...),
		failures:   s.failures,
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// fail returns and clears an injected failure for op.
func (s *state) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

type Backend struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   *state
	Now  func() time.Time
}

var _ storage.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{st: newState(), Now: time.Now}
}

// FailNext makes the next call of op ("snacks.SetRating", "reviews.Create", ...)
// return err.
func (b *Backend) FailNext(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.st.failures[op] = err
}

func (b *Backend) Read() storage.Repos {
	return repos(&view{b: b})
}

func (b *Backend) WithTx(ctx context.Context, fn func(tx storage.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.txMu.Lock()
	defer b.txMu.Unlock()

	b.mu.Lock()
	work := b.st.clone()
	b.mu.Unlock()

	if err := fn(repos(&view{b: b, st: work})); err != nil {
		return err
	}

	b.mu.Lock()
	b.st = work
	b.mu.Unlock()
	return nil
}

// view routes repository calls either to the live state (under lock) or to a
// transaction's private copy.
type view struct {
	b  *Backend
	st *state
}

func (v *view) do(fn func(st *state) error) error {
	if v.st != nil {
		return fn(v.st)
	}
	v.b.mu.Lock()
	defer v.b.mu.Unlock()
	return fn(v.b.st)
}

func (v *view) now() time.Time {
	return v.b.Now().UTC()
}

func repos(v *view) storage.Repos {
	return storage.Repos{
		Users:         &userRepo{v},
		Categories:    &categoryRepo{v},
		Stores:        &storeRepo{v},
		Snacks:        &snackRepo{v},
		Reviews:       &reviewRepo{v},
		RefreshTokens: &tokenRepo{v},
		AuditLogs:     &auditRepo{v},
	}
}
