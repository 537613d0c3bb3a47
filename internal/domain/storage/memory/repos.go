package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"snackspot/internal/domain/auditlogs"
	"snackspot/internal/domain/categories"
	"snackspot/internal/domain/refreshtokens"
	"snackspot/internal/domain/reviews"
	"snackspot/internal/domain/snacks"
	"snackspot/internal/domain/stores"
	"snackspot/internal/domain/users"
	"snackspot/internal/geo"
	"snackspot/internal/params"
	"snackspot/internal/rating"

	"github.com/google/uuid"
)

type userRepo struct{ v *view }

func (r *userRepo) Create(_ context.Context, user *users.User) error {
	return r.v.do(func(st *state) error {
		if err := st.fail("users.Create"); err != nil {
			return err
		}
		for _, u := range st.users {
			if strings.EqualFold(u.Email, user.Email) {
				return users.ErrDuplicateEmail
			}
			if strings.EqualFold(u.Username, user.Username) {
				return users.ErrDuplicateUsername
			}
		}
		now := r.v.now()
		user.ID = st.nextID()
		user.Level = 1
		user.ExperiencePoints = 0
		user.CreatedAt = now
		user.UpdatedAt = now
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) find(match func(users.User) bool) (*users.User, error) {
	var out *users.User
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				u := u
				out = &u
				return nil
			}
		}
		return users.ErrNotFound
	})
	return out, err
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*users.User, error) {
	return r.find(func(u users.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	return r.find(func(u users.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	return r.find(func(u users.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *userRepo) AddExperience(_ context.Context, userID int64, points int) error {
	return r.v.do(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return users.ErrNotFound
		}
		u.ExperiencePoints += points
		u.Level = users.LevelFor(u.ExperiencePoints)
		u.UpdatedAt = r.v.now()
		st.users[userID] = u
		return nil
	})
}

type categoryRepo struct{ v *view }

// AddCategory seeds a category; the API has no write path for them.
func (b *Backend) AddCategory(name string) categories.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.Now().UTC()
	c := categories.Category{ID: b.st.nextID(), Name: name, CreatedAt: now, UpdatedAt: now}
	b.st.categories[c.ID] = c
	return c
}

func (r *categoryRepo) List(_ context.Context) ([]categories.Category, error) {
	var out []categories.Category
	err := r.v.do(func(st *state) error {
		if err := st.fail("categories.List"); err != nil {
			return err
		}
		for _, c := range st.categories {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *categoryRepo) GetByID(_ context.Context, id int64) (*categories.Category, error) {
	var out *categories.Category
	err := r.v.do(func(st *state) error {
		c, ok := st.categories[id]
		if !ok {
			return categories.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

type storeRepo struct{ v *view }

func (r *storeRepo) Create(_ context.Context, s *stores.Store) error {
	return r.v.do(func(st *state) error {
		if err := st.fail("stores.Create"); err != nil {
			return err
		}
		s.ID = st.nextID()
		s.CreatedAt = r.v.now()
		st.stores[s.ID] = storeRow{Store: *s}
		return nil
	})
}

func (r *storeRepo) GetByID(_ context.Context, id int64) (*stores.Store, error) {
	var out *stores.Store
	err := r.v.do(func(st *state) error {
		row, ok := st.stores[id]
		if !ok || row.deleted {
			return stores.ErrNotFound
		}
		s := row.Store
		out = &s
		return nil
	})
	return out, err
}

func (r *storeRepo) GetForUpdate(ctx context.Context, id int64) (*stores.Store, error) {
	return r.GetByID(ctx, id)
}

func (r *storeRepo) Update(_ context.Context, s *stores.Store) error {
	return r.v.do(func(st *state) error {
		if err := st.fail("stores.Update"); err != nil {
			return err
		}
		row, ok := st.stores[s.ID]
		if !ok || row.deleted {
			return stores.ErrNotFound
		}
		row.Name = s.Name
		row.Address = s.Address
		row.Latitude = s.Latitude
		row.Longitude = s.Longitude
		st.stores[s.ID] = row
		return nil
	})
}

func (r *storeRepo) SoftDelete(_ context.Context, id int64) error {
	return r.v.do(func(st *state) error {
		row, ok := st.stores[id]
		if !ok || row.deleted {
			return stores.ErrNotFound
		}
		row.deleted = true
		st.stores[id] = row
		return nil
	})
}

func (r *storeRepo) live(box *geo.BoundingBox) []stores.Store {
	var out []stores.Store
	_ = r.v.do(func(st *state) error {
		for _, row := range st.stores {
			if row.deleted {
				continue
			}
			if box != nil && !box.Contains(row.Point()) {
				continue
			}
			out = append(out, row.Store)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *storeRepo) List(_ context.Context, p params.Pagination) ([]stores.Store, int, error) {
	all := r.live(nil)
	return page(all, p.Offset, p.Limit), len(all), nil
}

func (r *storeRepo) InBounds(_ context.Context, box geo.BoundingBox) ([]stores.Store, error) {
	return r.live(&box), nil
}

type snackRepo struct{ v *view }

func (r *snackRepo) Create(_ context.Context, s *snacks.Snack) error {
	return r.v.do(func(st *state) error {
		if err := st.fail("snacks.Create"); err != nil {
			return err
		}
		if s.DataSource == "" {
			s.DataSource = snacks.SourceUser
		}
		if !s.DataSource.Valid() {
			return snacks.ErrInvalidDataSource
		}
		s.ID = st.nextID()
		s.CreatedAt = r.v.now()
		s.AverageRating = 0
		s.TotalRatings = 0
		st.snacks[s.ID] = snackRow{Snack: *s}
		return nil
	})
}

func listing(st *state, row snackRow) (snacks.Listing, bool) {
	store, ok := st.stores[row.StoreID]
	if !ok || store.deleted {
		return snacks.Listing{}, false
	}
	l := snacks.Listing{
		Snack:          row.Snack,
		CategoryName:   st.categories[row.CategoryID].Name,
		StoreName:      store.Name,
		StoreAddress:   store.Address,
		StoreLatitude:  store.Latitude,
		StoreLongitude: store.Longitude,
		OwnerUsername:  st.users[row.CreatedBy].Username,
	}
	return l, true
}

func (r *snackRepo) GetByID(_ context.Context, id int64) (*snacks.Listing, error) {
	var out *snacks.Listing
	err := r.v.do(func(st *state) error {
		row, ok := st.snacks[id]
		if !ok || row.deleted {
			return snacks.ErrNotFound
		}
		l, _ := listing(st, row)
		out = &l
		return nil
	})
	return out, err
}

func (r *snackRepo) GetForUpdate(_ context.Context, id int64) (*snacks.Snack, error) {
	var out *snacks.Snack
	err := r.v.do(func(st *state) error {
		row, ok := st.snacks[id]
		if !ok || row.deleted {
			return snacks.ErrNotFound
		}
		s := row.Snack
		out = &s
		return nil
	})
	return out, err
}

func (r *snackRepo) Update(_ context.Context, s *snacks.Snack) error {
	return r.v.do(func(st *state) error {
		if err := st.fail("snacks.Update"); err != nil {
			return err
		}
		row, ok := st.snacks[s.ID]
		if !ok || row.deleted {
			return snacks.ErrNotFound
		}
		row.Name = s.Name
		row.Description = s.Description
		row.CategoryID = s.CategoryID
		row.StoreID = s.StoreID
		row.Image = s.Image
		st.snacks[s.ID] = row
		return nil
	})
}

func (r *snackRepo) SoftDelete(_ context.Context, id int64) error {
	return r.v.do(func(st *state) error {
		row, ok := st.snacks[id]
		if !ok || row.deleted {
			return snacks.ErrNotFound
		}
		row.deleted = true
		st.snacks[id] = row
		return nil
	})
}

func (r *snackRepo) List(_ context.Context, f snacks.Filter) ([]snacks.Listing, int, error) {
	var out []snacks.Listing
	search := strings.ToLower(strings.TrimSpace(f.Search))
	err := r.v.do(func(st *state) error {
		if err := st.fail("snacks.List"); err != nil {
			return err
		}
		for _, row := range st.snacks {
			if row.deleted {
				continue
			}
			if f.CategoryID != nil && row.CategoryID != *f.CategoryID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(row.Name), search) {
				continue
			}
			l, ok := listing(st, row)
			if !ok {
				continue
			}
			if f.Box != nil && !f.Box.Contains(l.StorePoint()) {
				continue
			}
			out = append(out, l)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	total := len(out)
	if f.Box == nil {
		out = page(out, f.Offset, f.Limit)
	}
	return out, total, nil
}

func (r *snackRepo) CountByStore(_ context.Context, storeID int64) (int, error) {
	n := 0
	err := r.v.do(func(st *state) error {
		for _, row := range st.snacks {
			if row.StoreID == storeID && !row.deleted {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *snackRepo) SetRating(_ context.Context, id int64, summary rating.Summary) error {
	return r.v.do(func(st *state) error {
		if err := st.fail("snacks.SetRating"); err != nil {
			return err
		}
		row, ok := st.snacks[id]
		if !ok {
			return snacks.ErrNotFound
		}
		row.AverageRating = summary.Average
		row.TotalRatings = summary.Total
		st.snacks[id] = row
		return nil
	})
}

type reviewRepo struct{ v *view }

func (r *reviewRepo) Create(_ context.Context, rv *reviews.Review) error {
	return r.v.do(func(st *state) error {
		if err := st.fail("reviews.Create"); err != nil {
			return err
		}
		for _, existing := range st.reviews {
			if existing.SnackID == rv.SnackID && existing.UserID == rv.UserID {
				return reviews.ErrDuplicate
			}
		}
		now := r.v.now()
		rv.ID = st.nextID()
		rv.CreatedAt = now
		rv.UpdatedAt = now
		st.reviews[rv.ID] = *rv
		return nil
	})
}

func (r *reviewRepo) GetByID(_ context.Context, id int64) (*reviews.Review, error) {
	var out *reviews.Review
	err := r.v.do(func(st *state) error {
		rv, ok := st.reviews[id]
		if !ok {
			return reviews.ErrNotFound
		}
		rv.Username = st.users[rv.UserID].Username
		out = &rv
		return nil
	})
	return out, err
}

func (r *reviewRepo) HasReview(_ context.Context, snackID, userID int64) (bool, error) {
	found := false
	err := r.v.do(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.SnackID == snackID && rv.UserID == userID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *reviewRepo) Update(_ context.Context, rv *reviews.Review) error {
	return r.v.do(func(st *state) error {
		if err := st.fail("reviews.Update"); err != nil {
			return err
		}
		existing, ok := st.reviews[rv.ID]
		if !ok {
			return reviews.ErrNotFound
		}
		existing.Rating = rv.Rating
		existing.Comment = rv.Comment
		existing.UpdatedAt = r.v.now()
		rv.UpdatedAt = existing.UpdatedAt
		st.reviews[rv.ID] = existing
		return nil
	})
}

func (r *reviewRepo) Delete(_ context.Context, id int64) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.reviews[id]; !ok {
			return reviews.ErrNotFound
		}
		delete(st.reviews, id)
		return nil
	})
}

func (r *reviewRepo) DeleteBySnack(_ context.Context, snackID int64) (int64, error) {
	var n int64
	err := r.v.do(func(st *state) error {
		for id, rv := range st.reviews {
			if rv.SnackID == snackID {
				delete(st.reviews, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *reviewRepo) ListBySnack(_ context.Context, snackID int64) ([]reviews.Review, error) {
	out := []reviews.Review{}
	err := r.v.do(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.SnackID == snackID && !rv.IsHidden {
				rv.Username = st.users[rv.UserID].Username
				out = append(out, rv)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r *reviewRepo) VisibleRatings(_ context.Context, snackID int64) ([]int, error) {
	var out []int
	err := r.v.do(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.SnackID == snackID && !rv.IsHidden {
				out = append(out, rv.Rating)
			}
		}
		return nil
	})
	return out, err
}

// HideReview flags a review as hidden, the way moderation does in SQL.
func (b *Backend) HideReview(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rv, ok := b.st.reviews[id]; ok {
		rv.IsHidden = true
		b.st.reviews[id] = rv
	}
}

type tokenRepo struct{ v *view }

func (r *tokenRepo) Create(_ context.Context, t *refreshtokens.Token) error {
	return r.v.do(func(st *state) error {
		t.CreatedAt = r.v.now()
		st.tokens[t.ID] = *t
		return nil
	})
}

func (r *tokenRepo) GetByID(_ context.Context, id uuid.UUID) (*refreshtokens.Token, error) {
	var out *refreshtokens.Token
	err := r.v.do(func(st *state) error {
		t, ok := st.tokens[id]
		if !ok {
			return refreshtokens.ErrNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *tokenRepo) Revoke(_ context.Context, id uuid.UUID) error {
	return r.v.do(func(st *state) error {
		t, ok := st.tokens[id]
		if !ok || t.RevokedAt != nil {
			return refreshtokens.ErrNotFound
		}
		now := r.v.now()
		t.RevokedAt = &now
		st.tokens[id] = t
		return nil
	})
}

func (r *tokenRepo) RevokeAllForUser(_ context.Context, userID int64) error {
	return r.v.do(func(st *state) error {
		now := r.v.now()
		for id, t := range st.tokens {
			if t.UserID == userID && t.RevokedAt == nil {
				t.RevokedAt = &now
				st.tokens[id] = t
			}
		}
		return nil
	})
}

func (r *tokenRepo) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.v.do(func(st *state) error {
		if err := st.fail("refreshtokens.PurgeExpired"); err != nil {
			return err
		}
		for id, t := range st.tokens {
			if t.ExpiresAt.Before(cutoff) {
				delete(st.tokens, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

type auditRepo struct{ v *view }

func (r *auditRepo) Record(_ context.Context, e *auditlogs.Entry) error {
	return r.v.do(func(st *state) error {
		if err := st.fail("auditlogs.Record"); err != nil {
			return err
		}
		e.ID = st.nextID()
		e.CreatedAt = r.v.now()
		st.audit = append(st.audit, *e)
		return nil
	})
}

func (r *auditRepo) ListByEntity(_ context.Context, entity string, entityID int64) ([]auditlogs.Entry, error) {
	var out []auditlogs.Entry
	err := r.v.do(func(st *state) error {
		for _, e := range st.audit {
			if e.Entity == entity && e.EntityID == entityID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
