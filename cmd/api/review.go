package main

import (
	"net/http"

	"snackspot/internal/service"
)

type createReviewPayload struct {
	SnackID int64   `json:"snack_id" validate:"required,gt=0"`
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// createReviewHandler godoc
//
//	@Summary		Review a snack
//	@Description	One review per user and snack. The snack's average rating is recomputed in the same transaction.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	createReviewPayload	true	"Review"
//	@Failure		409		{object}	error	"Already reviewed"
//	@Security		ApiKeyAuth
//	@Router			/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload createReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	review, err := app.service.CreateReview(r.Context(), user.ID, service.CreateReviewInput{
		SnackID: payload.SnackID,
		Rating:  payload.Rating,
		Comment: payload.Comment,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusCreated, review)
}

func (app *application) listSnackReviewsHandler(w http.ResponseWriter, r *http.Request) {
	snackID, err := pathID(r, "snackID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	list, err := app.service.ListReviews(r.Context(), snackID)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, list)
}

func (app *application) getReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.service.GetReview(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, review)
}

type updateReviewPayload struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

func (app *application) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload updateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	review, err := app.service.UpdateReview(r.Context(), user.ID, id, service.UpdateReviewInput{
		Rating:  payload.Rating,
		Comment: payload.Comment,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, review)
}

func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if err := app.service.DeleteReview(r.Context(), user.ID, id); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
