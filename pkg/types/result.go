package types

import "strings"

// Tier is the relevance class of a search hit. Lower values rank first.
type Tier int

const (
	TierWord     Tier = iota // left or right word equals the query
	TierDirect               // left or right word starts with the query
	TierIndirect             // left or right word contains the query
	TierOther                // matched by the index only
)

// Tiers lists all tiers in ranking order
var Tiers = []Tier{TierWord, TierDirect, TierIndirect, TierOther}

func (t Tier) String() string {
	switch t {
	case TierWord:
		return "word"
	case TierDirect:
		return "direct"
	case TierIndirect:
		return "indirect"
	case TierOther:
		return "other"
	default:
		return "unknown"
	}
}

// SearchResult is a display-ready projection of a matched entry.
// It is built per query and never persisted.
type SearchResult struct {
	Index int64

	WordLeft      string
	GenderLeft    string
	QualifierLeft string
	OtherLeft     string

	WordRight      string
	GenderRight    string
	QualifierRight string
	OtherRight     string

	Category string
	Grade    string // only set by rich stores

	DisplayText string
	Tier        Tier
}

// BuildDisplayText sets DisplayText from the left and right sides with
// runs of whitespace collapsed. Qualifiers are left out when
// withQualifiers is false.
func (r *SearchResult) BuildDisplayText(withQualifiers bool) {
	left := []string{r.WordLeft, r.GenderLeft}
	right := []string{r.WordRight, r.GenderRight}
	if withQualifiers {
		left = append(left, r.QualifierLeft)
		right = append(right, r.QualifierRight)
	}
	parts := append(append(left, r.OtherLeft, "-"), append(right, r.OtherRight)...)
	r.DisplayText = strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
