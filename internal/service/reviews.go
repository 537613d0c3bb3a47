package service

import (
	"context"
	"errors"

	"snackspot/internal/apperr"
	"snackspot/internal/domain/auditlogs"
	"snackspot/internal/domain/reviews"
	"snackspot/internal/domain/snacks"
	"snackspot/internal/domain/storage"
	"snackspot/internal/rating"
)

type CreateReviewInput struct {
	SnackID int64
	Rating  int
	Comment *string
}

type UpdateReviewInput struct {
	Rating  *int
	Comment *string
}

func checkRating(r int) error {
	if err := rating.Validate(r); err != nil {
		return apperr.Validationf("%s", err.Error())
	}
	return nil
}

// recompute rebuilds a snack's aggregate from every visible review. The
// caller must hold the snack row lock.
func recompute(ctx context.Context, tx storage.Repos, snackID int64) (rating.Summary, error) {
	ratings, err := tx.Reviews.VisibleRatings(ctx, snackID)
	if err != nil {
		return rating.Summary{}, apperr.Wrap(err, "load ratings")
	}
	summary := rating.Mean(ratings)
	if err := tx.Snacks.SetRating(ctx, snackID, summary); err != nil {
		return rating.Summary{}, apperr.Wrap(err, "store rating aggregate")
	}
	return summary, nil
}

func (s *Service) ListReviews(ctx context.Context, snackID int64) ([]reviews.Review, error) {
	repos := s.backend.Read()
	if _, err := repos.Snacks.GetByID(ctx, snackID); err != nil {
		if errors.Is(err, snacks.ErrNotFound) {
			return nil, apperr.NotFoundf("snack %d not found", snackID)
		}
		return nil, apperr.Wrap(err, "load snack")
	}
	list, err := repos.Reviews.ListBySnack(ctx, snackID)
	if err != nil {
		return nil, apperr.Wrap(err, "list reviews")
	}
	return list, nil
}

func (s *Service) GetReview(ctx context.Context, id int64) (*reviews.Review, error) {
	rv, err := s.backend.Read().Reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reviews.ErrNotFound) {
			return nil, apperr.NotFoundf("review %d not found", id)
		}
		return nil, apperr.Wrap(err, "load review")
	}
	if rv.IsHidden {
		return nil, apperr.NotFoundf("review %d not found", id)
	}
	return rv, nil
}

// CreateReview records userID's review of a snack and recomputes the snack's
// aggregate in the same transaction. A second review by the same user is a
// conflict and changes nothing.
func (s *Service) CreateReview(ctx context.Context, userID int64, in CreateReviewInput) (*reviews.Review, error) {
	if in.SnackID <= 0 {
		return nil, apperr.Validationf("snack_id is required")
	}
	if err := checkRating(in.Rating); err != nil {
		return nil, err
	}
	comment, err := cleanText("comment", in.Comment)
	if err != nil {
		return nil, err
	}

	rv := &reviews.Review{
		SnackID: in.SnackID,
		UserID:  userID,
		Rating:  in.Rating,
		Comment: comment,
	}
	err = s.backend.WithTx(ctx, func(tx storage.Repos) error {
		if _, err := tx.Snacks.GetForUpdate(ctx, in.SnackID); err != nil {
			if errors.Is(err, snacks.ErrNotFound) {
				return apperr.Validationf("snack %d does not exist", in.SnackID)
			}
			return apperr.Wrap(err, "load snack")
		}

		exists, err := tx.Reviews.HasReview(ctx, in.SnackID, userID)
		if err != nil {
			return apperr.Wrap(err, "check existing review")
		}
		if exists {
			return apperr.Conflictf("you have already reviewed this snack")
		}
		if err := tx.Reviews.Create(ctx, rv); err != nil {
			if errors.Is(err, reviews.ErrDuplicate) {
				return apperr.Conflictf("you have already reviewed this snack")
			}
			return apperr.Wrap(err, "create review")
		}

		if _, err := recompute(ctx, tx, in.SnackID); err != nil {
			return err
		}
		if err := tx.Users.AddExperience(ctx, userID, reviewCreateXP); err != nil {
			return apperr.Wrap(err, "grant experience")
		}
		return audit(ctx, tx, userID, auditlogs.ActionCreate, entityReview, rv.ID, map[string]any{
			"snack_id": rv.SnackID,
			"rating":   rv.Rating,
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RatingRecomputed("create")
	return s.GetReview(ctx, rv.ID)
}

// lockOwnedReview loads a review owned by userID and locks its snack.
func lockOwnedReview(ctx context.Context, tx storage.Repos, id, userID int64) (*reviews.Review, error) {
	rv, err := tx.Reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reviews.ErrNotFound) {
			return nil, apperr.NotFoundf("review %d not found", id)
		}
		return nil, apperr.Wrap(err, "load review")
	}
	if err := requireOwner(entityReview, rv.UserID, userID); err != nil {
		return nil, err
	}
	if _, err := tx.Snacks.GetForUpdate(ctx, rv.SnackID); err != nil {
		if errors.Is(err, snacks.ErrNotFound) {
			return nil, apperr.NotFoundf("review %d not found", id)
		}
		return nil, apperr.Wrap(err, "load snack")
	}
	return rv, nil
}

// UpdateReview changes the rating or comment of userID's review and
// recomputes the aggregate.
func (s *Service) UpdateReview(ctx context.Context, userID, id int64, in UpdateReviewInput) (*reviews.Review, error) {
	if in.Rating != nil {
		if err := checkRating(*in.Rating); err != nil {
			return nil, err
		}
	}
	var comment *string
	if in.Comment != nil {
		c, err := cleanText("comment", in.Comment)
		if err != nil {
			return nil, err
		}
		comment = c
	}

	err := s.backend.WithTx(ctx, func(tx storage.Repos) error {
		rv, err := lockOwnedReview(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		changes := map[string]any{}
		if in.Rating != nil {
			changes["rating"] = map[string]int{"from": rv.Rating, "to": *in.Rating}
			rv.Rating = *in.Rating
		}
		if in.Comment != nil {
			rv.Comment = comment
			changes["comment"] = comment
		}
		if err := tx.Reviews.Update(ctx, rv); err != nil {
			return apperr.Wrap(err, "update review")
		}
		if _, err := recompute(ctx, tx, rv.SnackID); err != nil {
			return err
		}
		return audit(ctx, tx, userID, auditlogs.ActionUpdate, entityReview, id, changes)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RatingRecomputed("update")
	return s.GetReview(ctx, id)
}

// DeleteReview removes userID's review and recomputes the aggregate over the
// remaining ones.
func (s *Service) DeleteReview(ctx context.Context, userID, id int64) error {
	err := s.backend.WithTx(ctx, func(tx storage.Repos) error {
		rv, err := lockOwnedReview(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if err := tx.Reviews.Delete(ctx, id); err != nil {
			return apperr.Wrap(err, "delete review")
		}
		if _, err := recompute(ctx, tx, rv.SnackID); err != nil {
			return err
		}
		return audit(ctx, tx, userID, auditlogs.ActionDelete, entityReview, id, map[string]any{
			"snack_id": rv.SnackID,
		})
	})
	if err != nil {
		return err
	}
	s.metrics.RatingRecomputed("delete")
	return nil
}

// RecomputeRating rebuilds one snack's aggregate from its reviews.
func (s *Service) RecomputeRating(ctx context.Context, snackID int64) (rating.Summary, error) {
	var summary rating.Summary
	err := s.backend.WithTx(ctx, func(tx storage.Repos) error {
		if _, err := tx.Snacks.GetForUpdate(ctx, snackID); err != nil {
			if errors.Is(err, snacks.ErrNotFound) {
				return apperr.NotFoundf("snack %d not found", snackID)
			}
			return apperr.Wrap(err, "load snack")
		}
		var err error
		summary, err = recompute(ctx, tx, snackID)
		return err
	})
	if err != nil {
		return rating.Summary{}, err
	}
	s.metrics.RatingRecomputed("manual")
	return summary, nil
}
