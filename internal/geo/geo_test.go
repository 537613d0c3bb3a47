package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aucklandCBD = Point{Lat: -36.8485, Lng: 174.7633}

func TestDistanceSamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Distance(aucklandCBD, aucklandCBD))
}

func TestDistanceKnownPairs(t *testing.T) {
	// Auckland CBD to Wellington CBD is about 493 km.
	wellington := Point{Lat: -41.2865, Lng: 174.7762}
	d := Distance(aucklandCBD, wellington)
	assert.InDelta(t, 493_500, d, 1_500)

	// Symmetric.
	assert.Equal(t, d, Distance(wellington, aucklandCBD))

	// One degree of latitude along a meridian.
	d = Distance(Point{Lat: 0, Lng: 0}, Point{Lat: 1, Lng: 0})
	assert.InDelta(t, 111_195, d, 1)
}

func TestWithinRadiusExamples(t *testing.T) {
	// 50 km due north of the CBD.
	north := Point{Lat: aucklandCBD.Lat + 50_000/111_195.0, Lng: aucklandCBD.Lng}

	assert.True(t, Within(aucklandCBD, aucklandCBD, 10_000))
	assert.False(t, Within(aucklandCBD, north, 10_000))
	assert.True(t, Within(aucklandCBD, north, 50_100))
}

func TestPointValidate(t *testing.T) {
	cases := []struct {
		name string
		p    Point
		err  error
	}{
		{"auckland", aucklandCBD, nil},
		{"north pole", Point{Lat: 90, Lng: 0}, nil},
		{"dateline", Point{Lat: 0, Lng: -180}, nil},
		{"lat too high", Point{Lat: 90.0001, Lng: 0}, ErrLatitudeRange},
		{"lat too low", Point{Lat: -91, Lng: 0}, ErrLatitudeRange},
		{"lng too high", Point{Lat: 0, Lng: 180.5}, ErrLongitudeRange},
		{"lat NaN", Point{Lat: math.NaN(), Lng: 0}, ErrLatitudeRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.err, tc.p.Validate())
		})
	}
}

func TestValidateRadius(t *testing.T) {
	assert.NoError(t, ValidateRadius(10_000, 50_000))
	assert.NoError(t, ValidateRadius(1e9, 0))
	assert.ErrorIs(t, ValidateRadius(0, 0), ErrRadius)
	assert.ErrorIs(t, ValidateRadius(-5, 0), ErrRadius)
	assert.ErrorIs(t, ValidateRadius(math.Inf(1), 0), ErrRadius)
	assert.Error(t, ValidateRadius(60_000, 50_000))
}

func TestBoundsContainsEveryPointInRadius(t *testing.T) {
	const radius = 10_000.0
	box := Bounds(aucklandCBD, radius)
	require.False(t, box.Wraps())

	for bearing := 0.0; bearing < 360; bearing += 15 {
		p := destination(aucklandCBD, bearing, radius*0.999)
		assert.True(t, box.Contains(p), "bearing %v: %+v outside %+v", bearing, p, box)
	}
	assert.False(t, box.Contains(Point{Lat: -36.0, Lng: 174.7633}))
}

func TestBoundsAcrossAntimeridian(t *testing.T) {
	chathamsEast := Point{Lat: -44.0, Lng: 179.95}
	box := Bounds(chathamsEast, 20_000)
	require.True(t, box.Wraps())

	assert.True(t, box.Contains(Point{Lat: -44.0, Lng: -179.95}))
	assert.True(t, box.Contains(Point{Lat: -44.0, Lng: 179.9}))
	assert.False(t, box.Contains(Point{Lat: -44.0, Lng: 0}))
}

func TestBoundsNearPole(t *testing.T) {
	box := Bounds(Point{Lat: 89.99, Lng: 10}, 5_000)
	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
	assert.Equal(t, 90.0, box.MaxLat)
}

// destination walks distance meters from p on the initial bearing (degrees).
func destination(p Point, bearing, distance float64) Point {
	ang := distance / EarthRadiusMeters
	br := toRadians(bearing)
	lat1 := toRadians(p.Lat)
	lng1 := toRadians(p.Lng)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ang) + math.Cos(lat1)*math.Sin(ang)*math.Cos(br))
	lng2 := lng1 + math.Atan2(math.Sin(br)*math.Sin(ang)*math.Cos(lat1), math.Cos(ang)-math.Sin(lat1)*math.Sin(lat2))
	return Point{Lat: toDegrees(lat2), Lng: toDegrees(lng2)}
}
