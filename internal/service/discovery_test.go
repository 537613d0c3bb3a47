package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"snackspot/internal/apperr"
	"snackspot/internal/geo"
	"snackspot/internal/params"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auckland = geo.Point{Lat: -36.8485, Lng: 174.7633}

func TestNearbyIncludesSameSpotExcludesFiftyKm(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")

	here := f.store(t, owner, auckland.Lat, auckland.Lng)
	// 0.45 degrees of latitude is roughly 50 km.
	far := f.store(t, owner, auckland.Lat-0.45, auckland.Lng)
	near := f.snack(t, owner, here.ID, "Mince and cheese pie")
	f.snack(t, owner, far.ID, "Hokey pokey ice cream")

	got, page, err := f.svc.Nearby(context.Background(), NearbyQuery{
		Center: auckland,
		Radius: 10_000,
		Page:   params.NewPagination(1, 20),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, near, got[0].ID)
	require.NotNil(t, got[0].DistanceMeters)
	assert.InDelta(t, 0, *got[0].DistanceMeters, 1e-6)
	assert.Equal(t, 1, page.Total)
}

func TestNearbyResultsLieWithinRadius(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 60; i++ {
		lat := auckland.Lat + (rng.Float64()-0.5)*0.4
		lng := auckland.Lng + (rng.Float64()-0.5)*0.4
		st := f.store(t, owner, lat, lng)
		f.snack(t, owner, st.ID, "Snack")
	}

	for _, radius := range []float64{500, 2_000, 7_500, 15_000} {
		got, _, err := f.svc.Nearby(context.Background(), NearbyQuery{
			Center: auckland,
			Radius: radius,
			Page:   params.NewPagination(1, params.MaxLimit),
		})
		require.NoError(t, err)

		prev := -1.0
		for _, l := range got {
			d := geo.Distance(auckland, l.StorePoint())
			assert.LessOrEqual(t, d, radius)
			assert.GreaterOrEqual(t, d, prev, "ordered by distance")
			prev = d
		}
	}
}

func TestNearbyTiesPreferNewest(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	st := f.store(t, owner, auckland.Lat, auckland.Lng)

	older := f.snack(t, owner, st.ID, "Older")
	newer := f.snack(t, owner, st.ID, "Newer")

	got, _, err := f.svc.Nearby(context.Background(), NearbyQuery{
		Center: auckland, Radius: 1000, Page: params.NewPagination(1, 10),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer, got[0].ID)
	assert.Equal(t, older, got[1].ID)
}

func TestNearbyFilters(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	st := f.store(t, owner, auckland.Lat, auckland.Lng)

	pie := f.snack(t, owner, st.ID, "Steak Pie")
	f.snack(t, owner, st.ID, "Jaffas")

	got, _, err := f.svc.Nearby(context.Background(), NearbyQuery{
		Center: auckland, Radius: 1000, Search: "PIE", Page: params.NewPagination(1, 10),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pie, got[0].ID)

	other := f.category + 1
	got, _, err = f.svc.Nearby(context.Background(), NearbyQuery{
		Center: auckland, Radius: 1000, CategoryID: &other, Page: params.NewPagination(1, 10),
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNearbyRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	missing := int64(999)

	cases := []NearbyQuery{
		{Center: geo.Point{Lat: 91, Lng: 0}, Radius: 10},
		{Center: geo.Point{Lat: -91, Lng: 0}, Radius: 10},
		{Center: geo.Point{Lat: 0, Lng: 180.5}, Radius: 10},
		{Center: auckland, Radius: 0},
		{Center: auckland, Radius: -5},
		{Center: auckland, Radius: MaxRadiusMeters + 1},
		{Center: auckland, Radius: 10, CategoryID: &missing},
	}
	for _, q := range cases {
		// A failing List would surface as Internal; validation must win first.
		f.backend.FailNext("snacks.List", assert.AnError)
		_, _, err := f.svc.Nearby(context.Background(), q)
		assert.ErrorIs(t, err, apperr.ErrValidation, "%+v", q)
	}
}

func TestNearbyPaginates(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	for i := 0; i < 5; i++ {
		st := f.store(t, owner, auckland.Lat+float64(i)*0.001, auckland.Lng)
		f.snack(t, owner, st.ID, "Snack")
	}

	got, page, err := f.svc.Nearby(context.Background(), NearbyQuery{
		Center: auckland, Radius: 5000, Page: params.NewPagination(2, 2),
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.Less(t, *got[0].DistanceMeters, *got[1].DistanceMeters)
}

func TestListSnacksNewestFirst(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	st := f.store(t, owner, auckland.Lat, auckland.Lng)
	first := f.snack(t, owner, st.ID, "First")
	second := f.snack(t, owner, st.ID, "Second")

	got, page, err := f.svc.ListSnacks(context.Background(), SnackQuery{Page: params.NewPagination(1, 10)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second, got[0].ID)
	assert.Equal(t, first, got[1].ID)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "owner", got[0].OwnerUsername)
	assert.Equal(t, "Pies", got[0].CategoryName)
}

func TestGetSnackIncludesReviews(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	critic := f.user(t, "critic")
	st := f.store(t, owner, auckland.Lat, auckland.Lng)
	id := f.snack(t, owner, st.ID, "Pineapple lumps")
	f.review(t, critic, id, 4)

	detail, err := f.svc.GetSnack(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "critic", detail.Reviews[0].Username)
	assert.Equal(t, "4.00", detail.AverageRating.String())

	_, err = f.svc.GetSnack(context.Background(), 424242)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestNearbyStores(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	nearStore := f.store(t, owner, auckland.Lat, auckland.Lng)
	f.store(t, owner, auckland.Lat+0.5, auckland.Lng)

	got, page, err := f.svc.NearbyStores(context.Background(), auckland, 10_000, params.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, nearStore.ID, got[0].ID)
	assert.Equal(t, 1, page.Total)

	_, _, err = f.svc.NearbyStores(context.Background(), geo.Point{Lat: 100}, 10, params.NewPagination(1, 10))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// manyCandidates is larger than any page or batch size.
const manyCandidates = 1200

func TestNearbyConsidersEveryCandidateInBox(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")

	here := f.store(t, owner, auckland.Lat, auckland.Lng)
	oldest := f.snack(t, owner, here.ID, "Original sausage roll")

	// Roughly 2 km north.
	busy := f.store(t, owner, auckland.Lat+0.018, auckland.Lng)
	for i := 0; i < manyCandidates; i++ {
		f.snack(t, owner, busy.ID, fmt.Sprintf("Sausage roll %d", i))
	}

	got, page, err := f.svc.Nearby(context.Background(), NearbyQuery{
		Center: auckland,
		Radius: 10_000,
		Page:   params.NewPagination(1, params.MaxLimit),
	})
	require.NoError(t, err)
	require.Len(t, got, params.MaxLimit)
	assert.Equal(t, oldest, got[0].ID)
	assert.Equal(t, manyCandidates+1, page.Total)
	assert.True(t, page.HasNext)

	last := params.NewPagination(page.TotalPages, params.MaxLimit)
	got, page, err = f.svc.Nearby(context.Background(), NearbyQuery{Center: auckland, Radius: 10_000, Page: last})
	require.NoError(t, err)
	assert.Len(t, got, (manyCandidates+1)%params.MaxLimit)
	assert.False(t, page.HasNext)
}

func TestNearbyStoresConsidersEveryCandidateInBox(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")

	oldest := f.store(t, owner, auckland.Lat, auckland.Lng)
	for i := 0; i < manyCandidates; i++ {
		f.store(t, owner, auckland.Lat+0.01+float64(i)*1e-5, auckland.Lng)
	}

	got, page, err := f.svc.NearbyStores(context.Background(), auckland, 10_000, params.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, oldest.ID, got[0].ID)
	assert.Equal(t, manyCandidates+1, page.Total)
}

func TestNearbyPageFarPastTheEnd(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	here := f.store(t, owner, auckland.Lat, auckland.Lng)
	f.snack(t, owner, here.ID, "Pie")

	for _, p := range []params.Pagination{
		params.NewPagination(92233720368547760, params.MaxLimit),
		{Page: 2, Limit: 10, Offset: -10},
	} {
		got, page, err := f.svc.Nearby(context.Background(), NearbyQuery{Center: auckland, Radius: 1000, Page: p})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, 1, page.Total)
		assert.False(t, page.HasNext)
	}

	list, page, err := f.svc.ListSnacks(context.Background(), SnackQuery{Page: params.Pagination{Page: 2, Limit: 10, Offset: -10}})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 1, page.Total)
}
