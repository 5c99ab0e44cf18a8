package tour

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Masai Mara Adventure":       "masai-mara-adventure",
		"  Diani Beach & Wasini!  ":  "diani-beach-wasini",
		"Mt. Kenya: 5-Day Trek":      "mt-kenya-5-day-trek",
		"UPPER case":                 "upper-case",
		"trailing punctuation...":    "trailing-punctuation",
		"many   spaces    collapsed": "many-spaces-collapsed",
	}
	for input, want := range cases {
		require.Equal(t, want, Slugify(input), "input %q", input)
	}
}
