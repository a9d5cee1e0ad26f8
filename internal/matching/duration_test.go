package matching_test

import (
	"testing"

	"github.com/alejandrodnm/spotjournal/internal/matching"
	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{-10, "0 seconds"},
		{0, "0 seconds"},
		{499, "0 seconds"},
		{500, "1 seconds"},
		{1_000, "1 seconds"},
		{59_999, "60 seconds"},
		{60_000, "1 minutes"},
		{89_999, "1 minutes"},
		{90_000, "2 minutes"},
		{3_599_999, "60 minutes"},
		{3_600_000, "1 hours"},
		{5_400_000, "2 hours"},
		{86_399_999, "24 hours"},
		{86_400_000, "1 days"},
		{10 * 86_400_000, "10 days"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, matching.FormatDuration(c.ms), "ms=%d", c.ms)
	}
}
