package campusfeed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fixedClock returns a clock pinned to an RFC3339 instant. Panics on a
// bad literal so fixtures fail loudly at setup.
func fixedClock(rfc3339 string) func() time.Time {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func mustTime(t *testing.T, rfc3339 string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, rfc3339)
	require.NoError(t, err)
	return parsed
}
