package mainwindow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepOptionRoundTrip(t *testing.T) {
	for _, minutes := range []int{1, 30, 60} {
		parsed, ok := parseSleepOption(sleepOption(minutes))
		require.True(t, ok)
		assert.Equal(t, minutes, parsed)
	}
	_, ok := parseSleepOption("soon")
	assert.False(t, ok)
}
