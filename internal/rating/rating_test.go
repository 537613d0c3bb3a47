package rating

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	cases := []struct {
		name    string
		ratings []int
		want    Summary
	}{
		{"empty", nil, Summary{Average: 0, Total: 0}},
		{"single", []int{4}, Summary{Average: 400, Total: 1}},
		{"three four five", []int{3, 4, 5}, Summary{Average: 400, Total: 3}},
		{"three four", []int{3, 4}, Summary{Average: 350, Total: 2}},
		{"repeating third rounds down", []int{1, 1, 2}, Summary{Average: 133, Total: 3}},
		{"two thirds rounds up", []int{1, 2, 2}, Summary{Average: 167, Total: 3}},
		{"half cent rounds up", []int{1, 1, 1, 1, 1, 1, 1, 2}, Summary{Average: 113, Total: 8}},
		{"all fives", []int{5, 5, 5, 5}, Summary{Average: 500, Total: 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Mean(tc.ratings))
		})
	}
}

func TestMeanIsOrderIndependent(t *testing.T) {
	a := Mean([]int{5, 1, 3, 3, 2, 4, 4})
	b := Mean([]int{4, 4, 3, 3, 2, 1, 5})
	assert.Equal(t, a, b)
}

func TestValidate(t *testing.T) {
	for r := MinRating; r <= MaxRating; r++ {
		assert.NoError(t, Validate(r))
	}
	assert.ErrorIs(t, Validate(0), ErrOutOfRange)
	assert.ErrorIs(t, Validate(6), ErrOutOfRange)
	assert.ErrorIs(t, Validate(-1), ErrOutOfRange)
}

func TestScoreString(t *testing.T) {
	assert.Equal(t, "4.00", Score(400).String())
	assert.Equal(t, "3.50", Score(350).String())
	assert.Equal(t, "0.00", Score(0).String())
	assert.Equal(t, "1.07", Score(107).String())
	assert.InDelta(t, 3.5, Score(350).Float64(), 1e-9)
}

func TestScoreJSON(t *testing.T) {
	body, err := json.Marshal(Summary{Average: 350, Total: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"average_rating":3.50,"total_ratings":2}`, string(body))
	assert.Contains(t, string(body), `"average_rating":3.50,`)

	body, err = json.Marshal(Score(400))
	require.NoError(t, err)
	assert.Equal(t, "4.00", string(body))

	var s Summary
	require.NoError(t, json.Unmarshal([]byte(`{"average_rating":4.5,"total_ratings":2}`), &s))
	assert.Equal(t, Score(450), s.Average)

	require.NoError(t, json.Unmarshal([]byte(`{"average_rating":"4.25"}`), &s))
	assert.Equal(t, Score(425), s.Average)
}

func TestParseScore(t *testing.T) {
	s, err := ParseScore("3.5")
	require.NoError(t, err)
	assert.Equal(t, Score(350), s)

	s, err = ParseScore("5")
	require.NoError(t, err)
	assert.Equal(t, Score(500), s)

	_, err = ParseScore("3.555")
	assert.Error(t, err)
	_, err = ParseScore("")
	assert.Error(t, err)
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []Score{0, 100, 133, 350, 500} {
		got, err := FromNumeric(s.Numeric())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	// postgres may send 4.5 as 45e-1.
	got, err := FromNumeric(pgtype.Numeric{Int: big.NewInt(45), Exp: -1, Valid: true})
	require.NoError(t, err)
	assert.Equal(t, Score(450), got)

	got, err = FromNumeric(pgtype.Numeric{Int: big.NewInt(4), Exp: 0, Valid: true})
	require.NoError(t, err)
	assert.Equal(t, Score(400), got)

	got, err = FromNumeric(pgtype.Numeric{})
	require.NoError(t, err)
	assert.Equal(t, Score(0), got)

	_, err = FromNumeric(pgtype.Numeric{NaN: true, Valid: true})
	assert.Error(t, err)
}
