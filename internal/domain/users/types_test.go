package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordSetAndCompare(t *testing.T) {
	var u User
	require.NoError(t, u.Password.Set("pavlova-2024"))

	assert.NoError(t, u.Password.Compare("pavlova-2024"))
	assert.Error(t, u.Password.Compare("lamington"))
	assert.NotEmpty(t, u.Password.Hash())

	var loaded User
	loaded.Password.SetHash(u.Password.Hash())
	assert.NoError(t, loaded.Password.Compare("pavlova-2024"))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, 1, LevelFor(0))
	assert.Equal(t, 1, LevelFor(99))
	assert.Equal(t, 2, LevelFor(100))
	assert.Equal(t, 4, LevelFor(315))
	assert.Equal(t, 1, LevelFor(-10))
}
