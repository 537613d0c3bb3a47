package stores

import (
	"context"
	"errors"
	"time"

	"snackspot/internal/geo"
	"snackspot/internal/params"
)

var ErrNotFound = errors.New("store not found")

// Store is a physical shop that hosts snacks.
type Store struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) Point() geo.Point {
	return geo.Point{Lat: s.Latitude, Lng: s.Longitude}
}

// NearbyStore is a Store annotated with its distance from a search center.
type NearbyStore struct {
	Store
	DistanceMeters float64 `json:"distance_meters"`
}

type Storage interface {
	Create(ctx context.Context, store *Store) error
	GetByID(ctx context.Context, id int64) (*Store, error)
	// GetForUpdate loads a live store and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*Store, error)
	Update(ctx context.Context, store *Store) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, p params.Pagination) ([]Store, int, error)
	InBounds(ctx context.Context, box geo.BoundingBox) ([]Store, error)
}
