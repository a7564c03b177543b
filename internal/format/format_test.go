package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.12345, "0.1235"},
		{1, "1.0000"},
		{0, "0.0000"},
		{0.8, "0.8000"},
		{-0.5, "-0.5000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "0.8", FormatScore(0.8))
	assert.Equal(t, "0.9", FormatScore(0.9))
	assert.Equal(t, "1", FormatScore(1))
	assert.Equal(t, "0.12345", FormatScore(0.12345))
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "05/03/2024 14:30:00", FormatDateTime(ts, time.UTC))
	assert.Equal(t, "05/03/2024 14:30:00", FormatDateTime(ts, nil))

	hcm, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err == nil {
		assert.Equal(t, "05/03/2024 21:30:00", FormatDateTime(ts, hcm))
	}

	assert.Equal(t, "", FormatDateTime(time.Time{}, time.UTC))
}

func TestFormatDateTime_FixedZone(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	ts := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)
	require.Equal(t, "01/01/2025 03:00:00", FormatDateTime(ts, loc))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "hello", n: 10, want: "hello"},
		{name: "exact", in: "hello", n: 5, want: "hello"},
		{name: "long", in: "hello world", n: 6, want: "hello…"},
		{name: "multibyte", in: "Xin chào các bạn", n: 9, want: "Xin chào…"},
		{name: "disabled", in: "hello", n: 0, want: "hello"},
		{name: "one", in: "hello", n: 1, want: "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}
