package fuzzy

import "testing"

import "github.com/stretchr/testify/assert"

func TestRatio_Identical(t *testing.T) {
	// Given two identical strings
	// When scored
	// Then the ratio is 100
	assert.Equal(t, 100, Ratio("implement search", "implement search"))
}

func TestRatio_Empty(t *testing.T) {
	assert.Equal(t, 100, Ratio("", ""))
}

func TestRatio_Typo(t *testing.T) {
	// "Implment serach" vs "Implement search" should score well below 100
	// but still reasonably high.
	r := Ratio("implment serach", "implement search")
	assert.Greater(t, r, 60)
	assert.Less(t, r, 100)
}

func TestPartialRatio_SubstringMatch(t *testing.T) {
	// Given a short query fully contained in a longer field
	// Then the partial ratio is 100 regardless of surrounding text.
	assert.Equal(t, 100, PartialRatio("search", "implement a search engine today"))
}

func TestPartialRatio_ExactVsTypoOrdering(t *testing.T) {
	exact := PartialRatioFold("implement search", "Implement search")
	typo := PartialRatioFold("implement search", "Implment serach")
	assert.Equal(t, 100, exact)
	assert.Greater(t, exact, typo)
}

func TestPartialRatio_ShorterEmpty(t *testing.T) {
	assert.Equal(t, 0, PartialRatio("", "anything"))
	assert.Equal(t, 100, PartialRatio("", ""))
}
