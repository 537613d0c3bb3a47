package main

import "net/http"

// getCurrentUserHandler godoc
//
//	@Summary		Current user profile
//	@Description	Returns the caller's profile including level and experience points.
//	@Tags			users
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Router			/users/me [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, getUserFromContext(r)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// logoutHandler revokes every refresh token of the caller.
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if err := app.accounts.Logout(r.Context(), user.ID); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("user logged out", "user_id", user.ID)
	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
