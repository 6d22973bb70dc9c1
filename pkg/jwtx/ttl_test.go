package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", jwtx.DefaultTokenTTL},
		{"1d", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"2 days", 48 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"12h", 12 * time.Hour},
		{"30m", 30 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"3600", time.Hour},
		{" 1D ", 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := jwtx.ParseTTL(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseTTL_Invalid(t *testing.T) {
	for _, in := range []string{"soon", "0", "-5m", "1y", "d1"} {
		t.Run(in, func(t *testing.T) {
			_, err := jwtx.ParseTTL(in)
			require.Error(t, err)
		})
	}
}
