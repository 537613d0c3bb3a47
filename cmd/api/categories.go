package main

import "net/http"

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.service.Categories().List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, list)
}
