package main

import (
	"errors"
	"net/http"
	"net/url"

	"snackspot/internal/geo"
	"snackspot/internal/params"
	"snackspot/internal/service"

	"github.com/go-chi/chi/v5"
)

type listResponse struct {
	Items      any               `json:"items"`
	Pagination params.Pagination `json:"pagination"`
}

// categoryParam accepts both ?categoryId and ?category_id.
func categoryParam(q url.Values) (*int64, error) {
	if q.Get("categoryId") != "" {
		return params.OptionalID(q, "categoryId")
	}
	return params.OptionalID(q, "category_id")
}

// areaParams reads ?lat, ?lng and ?radius. ok is false when no location was
// given at all.
func areaParams(q url.Values) (center geo.Point, radius float64, ok bool, err error) {
	lat, err := params.OptionalFloat(q, "lat")
	if err != nil {
		return center, 0, false, err
	}
	lng, err := params.OptionalFloat(q, "lng")
	if err != nil {
		return center, 0, false, err
	}
	rad, err := params.OptionalFloat(q, "radius")
	if err != nil {
		return center, 0, false, err
	}
	if lat == nil && lng == nil {
		return center, 0, false, nil
	}
	if lat == nil || lng == nil {
		return center, 0, false, errors.New("lat and lng must be given together")
	}
	radius = service.DefaultRadiusMeters
	if rad != nil {
		radius = *rad
	}
	return geo.Point{Lat: *lat, Lng: *lng}, radius, true, nil
}

// listSnacksHandler godoc
//
//	@Summary		List snacks
//	@Description	Without lat/lng returns snacks newest first. With lat/lng returns snacks whose store lies within radius meters (default 5000, max 50000), nearest first.
//	@Tags			snacks
//	@Produce		json
//	@Param			lat			query	number	false	"Latitude"
//	@Param			lng			query	number	false	"Longitude"
//	@Param			radius		query	number	false	"Radius in meters"
//	@Param			categoryId	query	int		false	"Category ID"
//	@Param			search		query	string	false	"Case-insensitive name search"
//	@Router			/snacks [get]
func (app *application) listSnacksHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := params.ParsePagination(q)

	categoryID, err := categoryParam(q)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	center, radius, nearby, err := areaParams(q)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if nearby {
		list, meta, err := app.service.Nearby(r.Context(), service.NearbyQuery{
			Center:     center,
			Radius:     radius,
			CategoryID: categoryID,
			Search:     q.Get("search"),
			Page:       page,
		})
		if err != nil {
			app.errorResponse(w, r, err)
			return
		}
		app.jsonResponse(w, http.StatusOK, listResponse{Items: list, Pagination: meta})
		return
	}

	list, meta, err := app.service.ListSnacks(r.Context(), service.SnackQuery{
		CategoryID: categoryID,
		Search:     q.Get("search"),
		Page:       page,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, listResponse{Items: list, Pagination: meta})
}

func pathID(r *http.Request, key string) (int64, error) {
	id, err := params.ParseID(chi.URLParam(r, key))
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return id, nil
}

func (app *application) getSnackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "snackID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	detail, err := app.service.GetSnack(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, detail)
}

type createSnackPayload struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	StoreID     int64   `json:"store_id" validate:"required,gt=0"`
	Image       []byte  `json:"image"`
}

// createSnackHandler godoc
//
//	@Summary		Add a snack
//	@Tags			snacks
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	createSnackPayload	true	"Snack"
//	@Security		ApiKeyAuth
//	@Router			/snacks [post]
func (app *application) createSnackHandler(w http.ResponseWriter, r *http.Request) {
	var payload createSnackPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	snack, err := app.service.CreateSnack(r.Context(), user.ID, service.CreateSnackInput{
		Name:        payload.Name,
		Description: payload.Description,
		CategoryID:  payload.CategoryID,
		StoreID:     payload.StoreID,
		Image:       payload.Image,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("snack created", "snack_id", snack.ID, "user_id", user.ID)
	app.jsonResponse(w, http.StatusCreated, snack)
}

type updateSnackPayload struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
	StoreID     *int64  `json:"store_id" validate:"omitempty,gt=0"`
	Image       *[]byte `json:"image"`
}

func (app *application) updateSnackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "snackID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload updateSnackPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	snack, err := app.service.UpdateSnack(r.Context(), user.ID, id, service.UpdateSnackInput{
		Name:        payload.Name,
		Description: payload.Description,
		CategoryID:  payload.CategoryID,
		StoreID:     payload.StoreID,
		Image:       payload.Image,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, snack)
}

func (app *application) deleteSnackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "snackID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if err := app.service.DeleteSnack(r.Context(), user.ID, id); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("snack deleted", "snack_id", id, "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// recomputeRatingHandler rebuilds a snack's rating aggregate. Admin only.
func (app *application) recomputeRatingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "snackID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	summary, err := app.service.RecomputeRating(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("rating recomputed", "snack_id", id, "average", summary.Average.String(), "total", summary.Total)
	app.jsonResponse(w, http.StatusOK, summary)
}
