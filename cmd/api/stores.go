package main

import (
	"errors"
	"net/http"

	"snackspot/internal/params"
	"snackspot/internal/service"
)

func (app *application) listStoresHandler(w http.ResponseWriter, r *http.Request) {
	list, meta, err := app.service.ListStores(r.Context(), params.ParsePagination(r.URL.Query()))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, listResponse{Items: list, Pagination: meta})
}

// nearbyStoresHandler godoc
//
//	@Summary		Stores near a point
//	@Tags			stores
//	@Produce		json
//	@Param			lat		query	number	true	"Latitude"
//	@Param			lng		query	number	true	"Longitude"
//	@Param			radius	query	number	false	"Radius in meters"
//	@Router			/stores/nearby [get]
func (app *application) nearbyStoresHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	center, radius, ok, err := areaParams(q)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if !ok {
		app.badRequestResponse(w, r, errors.New("lat and lng are required"))
		return
	}

	list, meta, err := app.service.NearbyStores(r.Context(), center, radius, params.ParsePagination(q))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, listResponse{Items: list, Pagination: meta})
}

func (app *application) getStoreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "storeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	store, err := app.service.GetStore(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, store)
}

type createStorePayload struct {
	Name      string   `json:"name" validate:"required,max=100"`
	Address   *string  `json:"address" validate:"omitempty,max=1000"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

func (app *application) createStoreHandler(w http.ResponseWriter, r *http.Request) {
	var payload createStorePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	store, err := app.service.CreateStore(r.Context(), user.ID, service.StoreInput{
		Name:      payload.Name,
		Address:   payload.Address,
		Latitude:  *payload.Latitude,
		Longitude: *payload.Longitude,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("store created", "store_id", store.ID, "user_id", user.ID)
	app.jsonResponse(w, http.StatusCreated, store)
}

type updateStorePayload struct {
	Name      *string  `json:"name" validate:"omitempty,max=100"`
	Address   *string  `json:"address" validate:"omitempty,max=1000"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

func (app *application) updateStoreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "storeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload updateStorePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	store, err := app.service.UpdateStore(r.Context(), user.ID, id, service.UpdateStoreInput{
		Name:      payload.Name,
		Address:   payload.Address,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, store)
}

func (app *application) deleteStoreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "storeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if err := app.service.DeleteStore(r.Context(), user.ID, id); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
