package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Loft Renovation":        "loft-renovation",
		"MYLG! Studio HQ":        "mylg-studio-hq",
		"  spaced   out  ":       "spaced-out",
		"Unit #42 (Penthouse)":   "unit-42-penthouse",
		"already-a-slug":         "already-a-slug",
		"123 Numbers First":      "123-numbers-first",
		"!!!":                    "",
		"Ümlauts & Çedillas":     "mlauts-edillas",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}
