package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("valid calendar date", func(t *testing.T) {
		d, err := ParseDate("2026-10-31")
		require.NoError(t, err)
		assert.Equal(t, "2026-10-31", d.String())
	})

	t.Run("rejects time-of-day and wrong layouts", func(t *testing.T) {
		_, err := ParseDate("2026-10-31T12:00:00Z")
		assert.Error(t, err)
		_, err = ParseDate("31/10/2026")
		assert.Error(t, err)
	})
}

func TestDateJSON(t *testing.T) {
	t.Run("marshals as bare date string", func(t *testing.T) {
		raw, err := json.Marshal(NewDate(2026, time.September, 5))
		require.NoError(t, err)
		assert.Equal(t, `"2026-09-05"`, string(raw))
	})

	t.Run("null leaves the zero value", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("invalid date string is rejected", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"next friday"`), &d))
	})
}
