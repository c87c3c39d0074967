package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cloudclip/auth-service/token"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		name     string
		ttl      string
		expected time.Duration
		wantErr  bool
	}{
		{name: "integer seconds", ttl: "604800", expected: 7 * 24 * time.Hour},
		{name: "negative integer seconds", ttl: "-1", expected: -time.Second},
		{name: "seconds unit", ttl: "45s", expected: 45 * time.Second},
		{name: "minutes unit", ttl: "90m", expected: 90 * time.Minute},
		{name: "hours unit", ttl: "12h", expected: 12 * time.Hour},
		{name: "days unit", ttl: "7d", expected: 7 * 24 * time.Hour},
		{name: "empty", ttl: "", wantErr: true},
		{name: "unknown unit", ttl: "10x", wantErr: true},
		{name: "fractional", ttl: "5.5d", wantErr: true},
		{name: "negative compact", ttl: "-1s", wantErr: true},
		{name: "unit only", ttl: "d", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := token.ParseTTL(tc.ttl)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, d)
		})
	}
}
