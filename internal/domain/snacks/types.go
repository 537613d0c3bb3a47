package snacks

import (
	"context"
	"errors"
	"time"

	"snackspot/internal/geo"
	"snackspot/internal/rating"
)

var (
	ErrNotFound          = errors.New("snack not found")
	ErrInvalidDataSource = errors.New("unknown snack data source")
)

type DataSource string

const (
	SourceUser    DataSource = "user"
	SourceScraped DataSource = "scraped"
	SourceSeeded  DataSource = "seeded"
)

func (d DataSource) Valid() bool {
	switch d {
	case SourceUser, SourceScraped, SourceSeeded:
		return true
	}
	return false
}

// Snack is the persisted row. AverageRating and TotalRatings are derived from
// reviews and only written through SetRating.
type Snack struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Description   *string      `json:"description,omitempty"`
	CategoryID    int64        `json:"category_id"`
	Image         []byte       `json:"image,omitempty"`
	CreatedBy     int64        `json:"created_by"`
	StoreID       int64        `json:"store_id"`
	AverageRating rating.Score `json:"average_rating"`
	TotalRatings  int          `json:"total_ratings"`
	CreatedAt     time.Time    `json:"created_at"`
	DataSource    DataSource   `json:"data_source"`
}

// Listing is a snack joined with its category, store and owner.
type Listing struct {
	Snack
	CategoryName   string   `json:"category_name"`
	StoreName      string   `json:"store_name"`
	StoreAddress   *string  `json:"store_address,omitempty"`
	StoreLatitude  float64  `json:"store_latitude"`
	StoreLongitude float64  `json:"store_longitude"`
	OwnerUsername  string   `json:"owner_username"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

func (l *Listing) StorePoint() geo.Point {
	return geo.Point{Lat: l.StoreLatitude, Lng: l.StoreLongitude}
}

type Filter struct {
	CategoryID *int64
	Search     string
	// Box restricts results to snacks whose store lies inside it. When set,
	// pagination is left to the caller.
	Box    *geo.BoundingBox
	Limit  int
	Offset int
}

type Store interface {
	Create(ctx context.Context, snack *Snack) error
	GetByID(ctx context.Context, id int64) (*Listing, error)
	// GetForUpdate loads a live snack and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*Snack, error)
	Update(ctx context.Context, snack *Snack) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, filter Filter) ([]Listing, int, error)
	CountByStore(ctx context.Context, storeID int64) (int, error)
	SetRating(ctx context.Context, id int64, summary rating.Summary) error
}
