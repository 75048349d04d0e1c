package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseCarrier_Known verifies case-insensitive resolution of the closed set.
func TestParseCarrier_Known(t *testing.T) {
	cases := map[string]Carrier{
		"usps":   CarrierUSPS,
		"USPS":   CarrierUSPS,
		" Usps ": CarrierUSPS,
		"fedex":  CarrierFedEx,
		"UPS":    CarrierUPS,
		"dhl":    CarrierDHL,
	}

	for name, want := range cases {
		got, err := ParseCarrier(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

// TestParseCarrier_Unknown verifies that names outside the set are rejected.
func TestParseCarrier_Unknown(t *testing.T) {
	for _, name := range []string{"", "track", "usps2", "__construct", "Fedex Ground"} {
		_, err := ParseCarrier(name)
		assert.ErrorIs(t, err, ErrCarrierNotSupported, name)
	}
}

// TestCarriers verifies that every known carrier round-trips through ParseCarrier.
func TestCarriers(t *testing.T) {
	carriers := Carriers()
	assert.Len(t, carriers, len(knownCarriers))

	for _, c := range carriers {
		got, err := ParseCarrier(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}
