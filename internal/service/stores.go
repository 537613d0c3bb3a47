package service

import (
	"context"
	"errors"

	"snackspot/internal/apperr"
	"snackspot/internal/domain/auditlogs"
	"snackspot/internal/domain/storage"
	"snackspot/internal/domain/stores"
	"snackspot/internal/geo"
	"snackspot/internal/params"
)

type StoreInput struct {
	Name      string
	Address   *string
	Latitude  float64
	Longitude float64
}

type UpdateStoreInput struct {
	Name      *string
	Address   *string
	Latitude  *float64
	Longitude *float64
}

func (s *Service) ListStores(ctx context.Context, page params.Pagination) ([]stores.Store, params.Pagination, error) {
	list, total, err := s.backend.Read().Stores.List(ctx, page)
	if err != nil {
		return nil, page, apperr.Wrap(err, "list stores")
	}
	if list == nil {
		list = []stores.Store{}
	}
	page.ComputeMeta(total)
	return list, page, nil
}

func (s *Service) GetStore(ctx context.Context, id int64) (*stores.Store, error) {
	st, err := s.backend.Read().Stores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return nil, apperr.NotFoundf("store %d not found", id)
		}
		return nil, apperr.Wrap(err, "load store")
	}
	return st, nil
}

func validPoint(lat, lng float64) error {
	if err := (geo.Point{Lat: lat, Lng: lng}).Validate(); err != nil {
		return apperr.Validationf("%s", err.Error())
	}
	return nil
}

func (s *Service) CreateStore(ctx context.Context, userID int64, in StoreInput) (*stores.Store, error) {
	name, err := cleanName("name", in.Name)
	if err != nil {
		return nil, err
	}
	addr, err := cleanText("address", in.Address)
	if err != nil {
		return nil, err
	}
	if err := validPoint(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}

	st := &stores.Store{
		Name:      name,
		Address:   addr,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		CreatedBy: userID,
	}
	err = s.backend.WithTx(ctx, func(tx storage.Repos) error {
		if err := tx.Stores.Create(ctx, st); err != nil {
			return apperr.Wrap(err, "create store")
		}
		return audit(ctx, tx, userID, auditlogs.ActionCreate, entityStore, st.ID, map[string]any{"name": st.Name})
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func lockOwnedStore(ctx context.Context, tx storage.Repos, id, userID int64) (*stores.Store, error) {
	st, err := tx.Stores.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return nil, apperr.NotFoundf("store %d not found", id)
		}
		return nil, apperr.Wrap(err, "load store")
	}
	if err := requireOwner(entityStore, st.CreatedBy, userID); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) UpdateStore(ctx context.Context, userID, id int64, in UpdateStoreInput) (*stores.Store, error) {
	changes := map[string]any{}
	var name string
	if in.Name != nil {
		n, err := cleanName("name", *in.Name)
		if err != nil {
			return nil, err
		}
		name = n
		changes["name"] = n
	}
	var addr *string
	if in.Address != nil {
		a, err := cleanText("address", in.Address)
		if err != nil {
			return nil, err
		}
		addr = a
		changes["address"] = a
	}

	var out *stores.Store
	err := s.backend.WithTx(ctx, func(tx storage.Repos) error {
		st, err := lockOwnedStore(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			st.Name = name
		}
		if in.Address != nil {
			st.Address = addr
		}
		if in.Latitude != nil {
			st.Latitude = *in.Latitude
			changes["latitude"] = *in.Latitude
		}
		if in.Longitude != nil {
			st.Longitude = *in.Longitude
			changes["longitude"] = *in.Longitude
		}
		if err := validPoint(st.Latitude, st.Longitude); err != nil {
			return err
		}
		if err := tx.Stores.Update(ctx, st); err != nil {
			return apperr.Wrap(err, "update store")
		}
		out = st
		return audit(ctx, tx, userID, auditlogs.ActionUpdate, entityStore, id, changes)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteStore soft-deletes a store owned by userID. A store still hosting
// live snacks cannot be deleted.
func (s *Service) DeleteStore(ctx context.Context, userID, id int64) error {
	return s.backend.WithTx(ctx, func(tx storage.Repos) error {
		if _, err := lockOwnedStore(ctx, tx, id, userID); err != nil {
			return err
		}
		n, err := tx.Snacks.CountByStore(ctx, id)
		if err != nil {
			return apperr.Wrap(err, "count store snacks")
		}
		if n > 0 {
			return apperr.Conflictf("store %d still has %d snacks", id, n)
		}
		if err := tx.Stores.SoftDelete(ctx, id); err != nil {
			return apperr.Wrap(err, "delete store")
		}
		return audit(ctx, tx, userID, auditlogs.ActionDelete, entityStore, id, nil)
	})
}
