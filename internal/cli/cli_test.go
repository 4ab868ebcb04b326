package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	from, to, err := parseWindow("2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 999999999, time.UTC), *to)

	from, to, err = parseWindow("2026-01-01T10:00:00+02:00", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC), *from)
	assert.Nil(t, to)

	_, _, err = parseWindow("yesterday", "")
	require.Error(t, err)
	_, _, err = parseWindow("", "31/01/2026")
	require.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"quote", "summary", "top", "status", "export", "run", "migrate", "simulate-alert", "hscode", "version"} {
		assert.True(t, names[want], want)
	}
}
