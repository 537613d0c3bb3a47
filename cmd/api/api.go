package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"time"

	"snackspot/internal/config"
	"snackspot/internal/metrics"
	"snackspot/internal/ratelimiter"
	"snackspot/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config      *config.Config
	logger      *zap.SugaredLogger
	service     *service.Service
	accounts    *service.Accounts
	metrics     *metrics.Metrics
	rateLimiter ratelimiter.Limiter
	authLimiter ratelimiter.Limiter
	// ping checks the database; nil means there is none to check.
	ping func(ctx context.Context) error
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.securityHeaders)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(app.RateLimiterMiddleware)
	r.Use(app.sanitizeQuery)
	r.Use(app.instrument)

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.BasicAuthMiddleware())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
			if app.metrics != nil {
				r.Method(http.MethodGet, "/metrics", app.metrics.Handler())
			}
		})

		r.Route("/authentication", func(r chi.Router) {
			r.Use(app.limit("auth", app.authLimiter))
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Get("/categories", app.listCategoriesHandler)

		r.Route("/snacks", func(r chi.Router) {
			r.Get("/", app.listSnacksHandler)
			r.Get("/{snackID}", app.getSnackHandler)
			r.With(app.BasicAuthMiddleware()).Post("/{snackID}/recompute-rating", app.recomputeRatingHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Post("/", app.createSnackHandler)
				r.Put("/{snackID}", app.updateSnackHandler)
				r.Delete("/{snackID}", app.deleteSnackHandler)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/snack/{snackID}", app.listSnackReviewsHandler)
			r.Get("/{reviewID}", app.getReviewHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Post("/", app.createReviewHandler)
				r.Put("/{reviewID}", app.updateReviewHandler)
				r.Delete("/{reviewID}", app.deleteReviewHandler)
			})
		})

		r.Route("/stores", func(r chi.Router) {
			r.Get("/", app.listStoresHandler)
			r.Get("/nearby", app.nearbyStoresHandler)
			r.Get("/{storeID}", app.getStoreHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Post("/", app.createStoreHandler)
				r.Put("/{storeID}", app.updateStoreHandler)
				r.Delete("/{storeID}", app.deleteStoreHandler)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getCurrentUserHandler)
			r.Post("/logout", app.logoutHandler)
		})
	})
	return r
}

// run serves mux until ctx is cancelled, then shuts down gracefully. A clean
// shutdown returns nil.
func (app *application) run(ctx context.Context, mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error, 1)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("shutting down server", "reason", context.Cause(ctx).Error())

		shutdown <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.Infow("server has started", "addr", app.config.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.Addr, "env", app.config.Env)

	return nil
}
