package dbx

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert review: %w", &pgconn.PgError{Code: "23505", ConstraintName: "reviews_snack_id_user_id_key"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "reviews_snack_id_user_id_key"))
	assert.False(t, IsUniqueViolation(err, "users_email_key"))
	assert.False(t, IsForeignKeyViolation(err, ""))
	assert.False(t, IsUniqueViolation(fmt.Errorf("boom"), ""))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% pie`, EscapeLike("100% pie"))
	assert.Equal(t, `a\_b\\c`, EscapeLike(`a_b\c`))
	assert.Equal(t, "mince", EscapeLike("mince"))
}
