package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"snackspot/internal/domain/stores"
	"snackspot/internal/domain/storage/memory"
	"snackspot/internal/domain/users"

	"github.com/stretchr/testify/require"
)

// fixture is a memory backend with one category and a clock that advances
// a second per call, so creation order is observable.
type fixture struct {
	backend  *memory.Backend
	svc      *Service
	category int64
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend: memory.New(),
		clock:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	f.backend.Now = func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	f.category = f.backend.AddCategory("Pies").ID
	f.backend.AddCategory("Lollies")
	f.svc = New(f.backend, nil)
	return f
}

func (f *fixture) user(t *testing.T, name string) int64 {
	t.Helper()
	u := &users.User{Username: name, Email: fmt.Sprintf("%s@example.com", name)}
	require.NoError(t, f.backend.Read().Users.Create(context.Background(), u))
	return u.ID
}

func (f *fixture) store(t *testing.T, owner int64, lat, lng float64) *stores.Store {
	t.Helper()
	st, err := f.svc.CreateStore(context.Background(), owner, StoreInput{
		Name:      fmt.Sprintf("Dairy %.4f,%.4f", lat, lng),
		Latitude:  lat,
		Longitude: lng,
	})
	require.NoError(t, err)
	return st
}

func (f *fixture) snack(t *testing.T, owner, storeID int64, name string) int64 {
	t.Helper()
	l, err := f.svc.CreateSnack(context.Background(), owner, CreateSnackInput{
		Name:       name,
		CategoryID: f.category,
		StoreID:    storeID,
	})
	require.NoError(t, err)
	return l.ID
}

func (f *fixture) review(t *testing.T, userID, snackID int64, r int) int64 {
	t.Helper()
	rv, err := f.svc.CreateReview(context.Background(), userID, CreateReviewInput{SnackID: snackID, Rating: r})
	require.NoError(t, err)
	return rv.ID
}
