package service

import (
	"context"
	"errors"

	"snackspot/internal/apperr"
	"snackspot/internal/domain/auditlogs"
	"snackspot/internal/domain/snacks"
	"snackspot/internal/domain/storage"
	"snackspot/internal/domain/stores"
)

type CreateSnackInput struct {
	Name        string
	Description *string
	CategoryID  int64
	StoreID     int64
	Image       []byte
}

// UpdateSnackInput changes only the non-nil fields. A non-nil empty Image
// removes the picture.
type UpdateSnackInput struct {
	Name        *string
	Description *string
	CategoryID  *int64
	StoreID     *int64
	Image       *[]byte
}

func (s *Service) checkStore(ctx context.Context, tx storage.Repos, id int64) error {
	if _, err := tx.Stores.GetByID(ctx, id); err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return apperr.Validationf("store %d does not exist", id)
		}
		return apperr.Wrap(err, "load store")
	}
	return nil
}

func checkImage(img []byte) error {
	if len(img) > maxImageBytes {
		return apperr.Validationf("image must be at most %d bytes", maxImageBytes)
	}
	return nil
}

// CreateSnack adds a user-sourced snack owned by userID and grants the
// creation experience points.
func (s *Service) CreateSnack(ctx context.Context, userID int64, in CreateSnackInput) (*snacks.Listing, error) {
	name, err := cleanName("name", in.Name)
	if err != nil {
		return nil, err
	}
	desc, err := cleanText("description", in.Description)
	if err != nil {
		return nil, err
	}
	if err := checkImage(in.Image); err != nil {
		return nil, err
	}
	if in.CategoryID <= 0 {
		return nil, apperr.Validationf("category_id is required")
	}
	if in.StoreID <= 0 {
		return nil, apperr.Validationf("store_id is required")
	}
	if err := s.checkCategory(ctx, &in.CategoryID); err != nil {
		return nil, err
	}

	snack := &snacks.Snack{
		Name:        name,
		Description: desc,
		CategoryID:  in.CategoryID,
		StoreID:     in.StoreID,
		Image:       in.Image,
		CreatedBy:   userID,
		DataSource:  snacks.SourceUser,
	}
	err = s.backend.WithTx(ctx, func(tx storage.Repos) error {
		if err := s.checkStore(ctx, tx, in.StoreID); err != nil {
			return err
		}
		if err := tx.Snacks.Create(ctx, snack); err != nil {
			return apperr.Wrap(err, "create snack")
		}
		if err := tx.Users.AddExperience(ctx, userID, snackCreateXP); err != nil {
			return apperr.Wrap(err, "grant experience")
		}
		return audit(ctx, tx, userID, auditlogs.ActionCreate, entitySnack, snack.ID, map[string]any{
			"name":     snack.Name,
			"store_id": snack.StoreID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadListing(ctx, snack.ID)
}

func (s *Service) loadListing(ctx context.Context, id int64) (*snacks.Listing, error) {
	l, err := s.backend.Read().Snacks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, snacks.ErrNotFound) {
			return nil, apperr.NotFoundf("snack %d not found", id)
		}
		return nil, apperr.Wrap(err, "load snack")
	}
	return l, nil
}

// lockOwnedSnack loads and locks a live snack, enforcing ownership.
func lockOwnedSnack(ctx context.Context, tx storage.Repos, id, userID int64) (*snacks.Snack, error) {
	snack, err := tx.Snacks.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, snacks.ErrNotFound) {
			return nil, apperr.NotFoundf("snack %d not found", id)
		}
		return nil, apperr.Wrap(err, "load snack")
	}
	if err := requireOwner(entitySnack, snack.CreatedBy, userID); err != nil {
		return nil, err
	}
	return snack, nil
}

// UpdateSnack applies in to a snack owned by userID.
func (s *Service) UpdateSnack(ctx context.Context, userID, id int64, in UpdateSnackInput) (*snacks.Listing, error) {
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
	var desc *string
	if in.Description != nil {
		d, err := cleanText("description", in.Description)
		if err != nil {
			return nil, err
		}
		desc = d
		changes["description"] = d
	}
	if in.Image != nil {
		if err := checkImage(*in.Image); err != nil {
			return nil, err
		}
		changes["image"] = len(*in.Image) > 0
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
		changes["category_id"] = *in.CategoryID
	}
	if in.StoreID != nil {
		changes["store_id"] = *in.StoreID
	}

	err := s.backend.WithTx(ctx, func(tx storage.Repos) error {
		snack, err := lockOwnedSnack(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			snack.Name = name
		}
		if in.Description != nil {
			snack.Description = desc
		}
		if in.Image != nil {
			snack.Image = *in.Image
			if len(snack.Image) == 0 {
				snack.Image = nil
			}
		}
		if in.CategoryID != nil {
			snack.CategoryID = *in.CategoryID
		}
		if in.StoreID != nil && *in.StoreID != snack.StoreID {
			if err := s.checkStore(ctx, tx, *in.StoreID); err != nil {
				return err
			}
			snack.StoreID = *in.StoreID
		}
		if err := tx.Snacks.Update(ctx, snack); err != nil {
			return apperr.Wrap(err, "update snack")
		}
		return audit(ctx, tx, userID, auditlogs.ActionUpdate, entitySnack, id, changes)
	})
	if err != nil {
		return nil, err
	}
	return s.loadListing(ctx, id)
}

// DeleteSnack soft-deletes a snack owned by userID and removes its reviews.
func (s *Service) DeleteSnack(ctx context.Context, userID, id int64) error {
	return s.backend.WithTx(ctx, func(tx storage.Repos) error {
		if _, err := lockOwnedSnack(ctx, tx, id, userID); err != nil {
			return err
		}
		removed, err := tx.Reviews.DeleteBySnack(ctx, id)
		if err != nil {
			return apperr.Wrap(err, "delete snack reviews")
		}
		if err := tx.Snacks.SoftDelete(ctx, id); err != nil {
			return apperr.Wrap(err, "delete snack")
		}
		return audit(ctx, tx, userID, auditlogs.ActionDelete, entitySnack, id, map[string]any{
			"reviews_deleted": removed,
		})
	})
}
