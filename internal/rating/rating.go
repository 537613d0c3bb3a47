// Package rating computes a snack's aggregate score from its review ratings.
//
// Scores are fixed-point with two decimal places, stored as hundredths, so a
// recomputation over the same ratings always yields the same value and the
// NUMERIC(3,2) column round-trips exactly.
package rating

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	MinRating = 1
	MaxRating = 5
)

var ErrOutOfRange = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)

// Validate checks that r is an integer star rating in [MinRating, MaxRating].
func Validate(r int) error {
	if r < MinRating || r > MaxRating {
		return ErrOutOfRange
	}
	return nil
}

// Score is an average rating in hundredths: 350 means 3.50.
type Score int64

// Summary is the derived aggregate kept on a snack.
type Summary struct {
	Average Score `json:"average_rating"`
	Total   int   `json:"total_ratings"`
}

// Mean returns the exact arithmetic mean of ratings rounded half-up to two
// decimal places. An empty slice yields a zero summary.
func Mean(ratings []int) Summary {
	if len(ratings) == 0 {
		return Summary{}
	}
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	n := int64(len(ratings))
	// round(sum*100/n) with half-up, all ratings are positive.
	avg := (sum*200 + n) / (2 * n)
	return Summary{Average: Score(avg), Total: len(ratings)}
}

func (s Score) Float64() float64 {
	return float64(s) / 100
}

// String renders the score with exactly two decimals, e.g. "4.00".
func (s Score) String() string {
	sign := ""
	v := int64(s)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON writes a JSON number with exactly two decimals, e.g. 4.00.
func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Score) UnmarshalJSON(b []byte) error {
	parsed, err := ParseScore(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseScore parses a decimal string with at most two fractional digits.
func ParseScore(v string) (Score, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("empty score")
	}
	neg := strings.HasPrefix(v, "-")
	v = strings.TrimPrefix(v, "-")

	whole, frac, _ := strings.Cut(v, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("score %q has more than two decimals", v)
	}
	frac += strings.Repeat("0", 2-len(frac))

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", v, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", v, err)
	}
	out := w*100 + f
	if neg {
		out = -out
	}
	return Score(out), nil
}

// FromNumeric converts a scanned NUMERIC value to a Score. NULL becomes zero.
func FromNumeric(n pgtype.Numeric) (Score, error) {
	if !n.Valid {
		return 0, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return 0, errors.New("score is not a finite number")
	}
	// value = Int * 10^Exp, we want value * 100.
	v := new(big.Int).Set(n.Int)
	shift := int64(n.Exp) + 2
	ten := big.NewInt(10)
	if shift >= 0 {
		v.Mul(v, new(big.Int).Exp(ten, big.NewInt(shift), nil))
	} else {
		v.Quo(v, new(big.Int).Exp(ten, big.NewInt(-shift), nil))
	}
	if !v.IsInt64() {
		return 0, errors.New("score out of range")
	}
	return Score(v.Int64()), nil
}

// Numeric converts s to a pgtype.Numeric suitable for a NUMERIC(3,2) column.
func (s Score) Numeric() pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(int64(s)), Exp: -2, Valid: true}
}
