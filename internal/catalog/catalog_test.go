package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"snackspot/internal/domain/categories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (s *countingStore) List(ctx context.Context) ([]categories.Category, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return []categories.Category{{ID: 1, Name: "Chips"}, {ID: 2, Name: "Lollies"}}, nil
}

func (s *countingStore) GetByID(ctx context.Context, id int64) (*categories.Category, error) {
	return nil, errors.New("not used")
}

func TestConcurrentCallersShareOneLoad(t *testing.T) {
	store := &countingStore{release: make(chan struct{})}
	c := New(store)

	var wg sync.WaitGroup
	results := make([][]categories.Category, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			list, err := c.List(context.Background())
			assert.NoError(t, err)
			results[i] = list
		}(i)
	}

	// Let the goroutines pile up behind the in-flight load.
	time.Sleep(20 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.Equal(t, int32(1), store.calls.Load())
	for _, list := range results {
		assert.Len(t, list, 2)
	}
}

func TestGetAndInvalidate(t *testing.T) {
	store := &countingStore{}
	c := New(store)

	cat, err := c.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Lollies", cat.Name)

	_, err = c.Get(context.Background(), 99)
	assert.ErrorIs(t, err, categories.ErrNotFound)
	assert.Equal(t, int32(1), store.calls.Load())

	c.Invalidate()
	_, err = c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.calls.Load())
}

func TestFailedLoadIsRetried(t *testing.T) {
	store := &countingStore{err: errors.New("db down")}
	c := New(store)

	_, err := c.List(context.Background())
	assert.Error(t, err)

	store.err = nil
	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int32(2), store.calls.Load())
}
