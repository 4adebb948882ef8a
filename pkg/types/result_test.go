package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchResult_BuildDisplayText(t *testing.T) {
	r := SearchResult{
		WordLeft: "Haus", GenderLeft: "(n)", QualifierLeft: "[Gebäude]", OtherLeft: "Häuser",
		WordRight: "hus", GenderRight: "(n)", OtherRight: "hus, huset",
	}

	r.BuildDisplayText(true)
	assert.Equal(t, "Haus (n) [Gebäude] Häuser - hus (n) hus, huset", r.DisplayText)

	r.BuildDisplayText(false)
	assert.Equal(t, "Haus (n) Häuser - hus (n) hus, huset", r.DisplayText)

	empty := SearchResult{WordLeft: "cat", WordRight: "Katze"}
	empty.BuildDisplayText(true)
	assert.Equal(t, "cat - Katze", empty.DisplayText)
}
