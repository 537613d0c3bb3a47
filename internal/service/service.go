// Package service holds the business rules of snack discovery: nearby
// search, rating aggregation and ownership-gated mutation. Every mutation
// runs in one storage transaction together with its audit record.
package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"snackspot/internal/apperr"
	"snackspot/internal/catalog"
	"snackspot/internal/domain/auditlogs"
	"snackspot/internal/domain/storage"
	"snackspot/internal/metrics"
	"snackspot/internal/sanitize"
)

const (
	// MaxRadiusMeters caps nearby searches.
	MaxRadiusMeters = 50_000
	// DefaultRadiusMeters applies when a nearby search gives no radius.
	DefaultRadiusMeters = 5_000

	maxNameLength  = 100
	maxTextLength  = 1000
	maxImageBytes  = 512 << 10
	snackCreateXP  = 10
	reviewCreateXP = 5
	entitySnack    = "snack"
	entityStore    = "store"
	entityReview   = "review"
)

type Service struct {
	backend    storage.Backend
	categories *catalog.Cache
	metrics    *metrics.Metrics
}

// New builds the service. m may be nil.
func New(backend storage.Backend, m *metrics.Metrics) *Service {
	return &Service{
		backend:    backend,
		categories: catalog.New(backend.Read().Categories),
		metrics:    m,
	}
}

// Categories exposes the shared category cache.
func (s *Service) Categories() *catalog.Cache {
	return s.categories
}

// requireOwner returns a Forbidden error unless callerID owns the resource.
func requireOwner(entity string, ownerID, callerID int64) error {
	if ownerID != callerID {
		return apperr.Forbiddenf("you can only modify your own %s", entity)
	}
	return nil
}

func audit(ctx context.Context, tx storage.Repos, userID int64, action, entity string, id int64, details map[string]any) error {
	uid := userID
	err := tx.AuditLogs.Record(ctx, &auditlogs.Entry{
		UserID:   &uid,
		Action:   action,
		Entity:   entity,
		EntityID: id,
		Details:  details,
	})
	if err != nil {
		return apperr.Wrap(err, "record audit log")
	}
	return nil
}

// cleanName trims and checks a required display name.
func cleanName(field, v string) (string, error) {
	v, err := sanitize.Text(v)
	if err != nil {
		return "", apperr.Validationf("%s contains disallowed content", field)
	}
	if v == "" {
		return "", apperr.Validationf("%s is required", field)
	}
	if utf8.RuneCountInString(v) > maxNameLength {
		return "", apperr.Validationf("%s must be at most %d characters", field, maxNameLength)
	}
	return v, nil
}

// cleanText trims optional free text; blank becomes nil.
func cleanText(field string, v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	t, err := sanitize.Text(*v)
	if err != nil {
		return nil, apperr.Validationf("%s contains disallowed content", field)
	}
	if t == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(t) > maxTextLength {
		return nil, apperr.Validationf("%s must be at most %d characters", field, maxTextLength)
	}
	return &t, nil
}

func cleanSearch(v string) (string, error) {
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) > maxNameLength {
		return "", apperr.Validationf("search must be at most %d characters", maxNameLength)
	}
	return v, nil
}
