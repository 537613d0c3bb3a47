package main

import (
	"net/http"

	"snackspot/internal/domain/users"
	"snackspot/internal/service"
)

type RegisterUserPayload struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// registerUserHandler godoc
//
//	@Summary		Registers a user
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RegisterUserPayload	true	"User credentials"
//	@Success		201		{object}	users.User			"User registered"
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error				"Email or username taken"
//	@Router			/authentication/user [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.accounts.Register(r.Context(), service.RegisterInput{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("user registered", "user_id", user.ID)
	if err := app.jsonResponse(w, http.StatusCreated, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateUserTokenPayload struct {
	Email    string `json:"email" validate:"required_without=Username,omitempty,email,max=255"`
	Username string `json:"username" validate:"required_without=Email,omitempty,max=30"`
	Password string `json:"password" validate:"required,max=72"`
}

type tokenResponse struct {
	User *users.User `json:"user"`
	service.Tokens
}

// createTokenHandler godoc
//
//	@Summary		Login to get Token
//	@Description	Exchanges an email or username and password for an access and refresh token.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	CreateUserTokenPayload	true	"User credentials"
//	@Failure		401		{object}	error
//	@Router			/authentication/token [post]
func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	identifier := payload.Email
	if identifier == "" {
		identifier = payload.Username
	}

	user, tokens, err := app.accounts.Login(r.Context(), identifier, payload.Password)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, tokenResponse{User: user, Tokens: tokens}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type refreshTokenPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// refreshTokenHandler rotates a refresh token into a new token pair.
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload refreshTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	tokens, err := app.accounts.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, tokens)
}
