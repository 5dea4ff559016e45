package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasblanco/caja/internal/period"
)

func TestKeyRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   period.Period
		key  string
	}{
		{name: "Plain", in: period.Period{Year: 2024, Month: time.March}, key: "2024-03"},
		{name: "December", in: period.Period{Year: 2023, Month: time.December}, key: "2023-12"},
		{name: "SingleDigitMonth", in: period.Period{Year: 2025, Month: time.January}, key: "2025-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.in.Key())

			parsed, err := period.Parse(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.in, parsed)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, key := range []string{"", "2024", "2024-13", "03-2024", "2024-3"} {
		_, err := period.Parse(key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestBounds(t *testing.T) {
	p := period.Period{Year: 2024, Month: time.February}

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), p.Start())
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), p.End())

	assert.True(t, p.Contains(time.Date(2024, 2, 15, 12, 30, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestOrdering(t *testing.T) {
	jan := period.Period{Year: 2024, Month: time.January}
	dec := period.Period{Year: 2023, Month: time.December}

	assert.True(t, dec.Before(jan))
	assert.False(t, jan.Before(dec))
	assert.Equal(t, jan, dec.Next())
	assert.Equal(t, dec, jan.Prev())
}
