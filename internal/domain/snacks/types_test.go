package snacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataSourceValid(t *testing.T) {
	for _, d := range []DataSource{SourceUser, SourceScraped, SourceSeeded} {
		assert.True(t, d.Valid(), d)
	}
	assert.False(t, DataSource("").Valid())
	assert.False(t, DataSource("imported").Valid())
}
