package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillCascadeFirstFallbackWins(t *testing.T) {
	dest := []*time.Time{nil, day(2024, 1, 1), nil, nil}
	first := []*time.Time{day(2024, 2, 2), day(2024, 2, 3), nil, nil}
	second := []*time.Time{day(2024, 3, 3), day(2024, 3, 4), day(2024, 3, 5), nil}

	filled := FillCascade(dest, first, second)

	assert.Equal(t, 2, filled)
	assert.Equal(t, *day(2024, 2, 2), *dest[0], "first fallback beats later ones")
	assert.Equal(t, *day(2024, 1, 1), *dest[1], "existing values are kept")
	assert.Equal(t, *day(2024, 3, 5), *dest[2], "second fallback used when first is missing")
	assert.Nil(t, dest[3])
}

func TestFillCascadeSkipsAbsentSources(t *testing.T) {
	dest := make([]*time.Time, 2)
	src := []*time.Time{day(2024, 5, 1), nil}
	assert.Equal(t, 1, FillCascade(dest, nil, src))
	require.NotNil(t, dest[0])

	// filled values are copies
	*src[0] = time.Time{}
	assert.Equal(t, 2024, dest[0].Year())
}
