package service

import (
	"context"
	"errors"
	"sort"

	"snackspot/internal/apperr"
	"snackspot/internal/domain/categories"
	"snackspot/internal/domain/reviews"
	"snackspot/internal/domain/snacks"
	"snackspot/internal/domain/stores"
	"snackspot/internal/geo"
	"snackspot/internal/params"
)

type NearbyQuery struct {
	Center     geo.Point
	Radius     float64
	CategoryID *int64
	Search     string
	Page       params.Pagination
}

type SnackQuery struct {
	CategoryID *int64
	Search     string
	Page       params.Pagination
}

// SnackDetail is a listing together with its visible reviews.
type SnackDetail struct {
	snacks.Listing
	Reviews []reviews.Review `json:"reviews"`
}

func validateArea(center geo.Point, radius float64) error {
	if err := center.Validate(); err != nil {
		return apperr.Validationf("%s", err.Error())
	}
	if err := geo.ValidateRadius(radius, MaxRadiusMeters); err != nil {
		return apperr.Validationf("%s", err.Error())
	}
	return nil
}

func (s *Service) checkCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.categories.Get(ctx, *id); err != nil {
		if errors.Is(err, categories.ErrNotFound) {
			return apperr.Validationf("category %d does not exist", *id)
		}
		return apperr.Wrap(err, "load categories")
	}
	return nil
}

// Nearby returns the live snacks whose store lies within q.Radius meters of
// q.Center, nearest first. Equal distances put the newest snack first, then
// the higher id. Invalid input fails before any query runs.
func (s *Service) Nearby(ctx context.Context, q NearbyQuery) ([]snacks.Listing, params.Pagination, error) {
	page := q.Page
	if err := validateArea(q.Center, q.Radius); err != nil {
		return nil, page, err
	}
	search, err := cleanSearch(q.Search)
	if err != nil {
		return nil, page, err
	}
	if err := s.checkCategory(ctx, q.CategoryID); err != nil {
		return nil, page, err
	}

	box := geo.Bounds(q.Center, q.Radius)
	candidates, _, err := s.backend.Read().Snacks.List(ctx, snacks.Filter{
		CategoryID: q.CategoryID,
		Search:     search,
		Box:        &box,
	})
	if err != nil {
		return nil, page, apperr.Wrap(err, "search snacks")
	}
	s.metrics.NearbyCandidates(len(candidates))

	found := make([]snacks.Listing, 0, len(candidates))
	for _, l := range candidates {
		d := geo.Distance(q.Center, l.StorePoint())
		if d > q.Radius {
			continue
		}
		l.DistanceMeters = &d
		found = append(found, l)
	}
	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if *a.DistanceMeters != *b.DistanceMeters {
			return *a.DistanceMeters < *b.DistanceMeters
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	page.ComputeMeta(len(found))
	return window(found, page), page, nil
}

// ListSnacks returns live snacks newest first.
func (s *Service) ListSnacks(ctx context.Context, q SnackQuery) ([]snacks.Listing, params.Pagination, error) {
	page := q.Page
	search, err := cleanSearch(q.Search)
	if err != nil {
		return nil, page, err
	}
	if err := s.checkCategory(ctx, q.CategoryID); err != nil {
		return nil, page, err
	}

	list, total, err := s.backend.Read().Snacks.List(ctx, snacks.Filter{
		CategoryID: q.CategoryID,
		Search:     search,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, page, apperr.Wrap(err, "list snacks")
	}
	if list == nil {
		list = []snacks.Listing{}
	}
	page.ComputeMeta(total)
	return list, page, nil
}

// GetSnack returns a live snack with its visible reviews.
func (s *Service) GetSnack(ctx context.Context, id int64) (*SnackDetail, error) {
	repos := s.backend.Read()
	l, err := repos.Snacks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, snacks.ErrNotFound) {
			return nil, apperr.NotFoundf("snack %d not found", id)
		}
		return nil, apperr.Wrap(err, "load snack")
	}
	list, err := repos.Reviews.ListBySnack(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, "list reviews")
	}
	return &SnackDetail{Listing: *l, Reviews: list}, nil
}

// NearbyStores returns live stores within radius of center, nearest first.
func (s *Service) NearbyStores(ctx context.Context, center geo.Point, radius float64, page params.Pagination) ([]stores.NearbyStore, params.Pagination, error) {
	if err := validateArea(center, radius); err != nil {
		return nil, page, err
	}
	candidates, err := s.backend.Read().Stores.InBounds(ctx, geo.Bounds(center, radius))
	if err != nil {
		return nil, page, apperr.Wrap(err, "search stores")
	}

	found := make([]stores.NearbyStore, 0, len(candidates))
	for _, st := range candidates {
		d := geo.Distance(center, st.Point())
		if d <= radius {
			found = append(found, stores.NearbyStore{Store: st, DistanceMeters: d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].DistanceMeters != found[j].DistanceMeters {
			return found[i].DistanceMeters < found[j].DistanceMeters
		}
		return found[i].ID < found[j].ID
	})

	page.ComputeMeta(len(found))
	return window(found, page), page, nil
}

func window[T any](items []T, p params.Pagination) []T {
	if p.Offset < 0 || p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if p.Limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
