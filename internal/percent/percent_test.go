package percent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	cases := []struct {
		part, whole, want float64
	}{
		{5, 10, 50},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 0, 0},
		{3, 0, 0},
		{4, 4, 100},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Of(c.part, c.whole), "%v/%v", c.part, c.whole)
	}
}
