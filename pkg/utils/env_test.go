package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetenvHelpers(t *testing.T) {
	t.Setenv("UTILS_TEST_BOOL", "yes")
	t.Setenv("UTILS_TEST_INT", "42")
	t.Setenv("UTILS_TEST_DURATION", "15m")
	t.Setenv("UTILS_TEST_LIST", " a , ,b ")

	b, err := GetenvBool("UTILS_TEST_BOOL", false)
	require.NoError(t, err)
	assert.True(t, b)

	n, err := GetenvInt("UTILS_TEST_INT", 0)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	d, err := GetenvDuration("UTILS_TEST_DURATION", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	assert.Equal(t, []string{"a", "b"}, GetenvList("UTILS_TEST_LIST", nil))
	assert.Equal(t, "fallback", Getenv("UTILS_TEST_MISSING", "fallback"))
}

func TestGetenvHelpers_InvalidValues(t *testing.T) {
	t.Setenv("UTILS_TEST_BOOL", "maybe")
	t.Setenv("UTILS_TEST_DURATION", "soon")

	_, err := GetenvBool("UTILS_TEST_BOOL", false)
	assert.Error(t, err)
	_, err = GetenvDuration("UTILS_TEST_DURATION", time.Hour)
	assert.Error(t, err)
}
