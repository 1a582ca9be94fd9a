package shoutout

import (
	"daily-shoutout/internal/types"
	"regexp"
	"unicode/utf16"
)

const (
	humanEntityID = "Q5"

	minExtractLength = 20
)

var biographyPattern = regexp.MustCompile(`(?i)\b(born|died|American|British|French|politician|artist|player)\b`)

// IsHuman reports whether the entity is an instance of human
func IsHuman(e *types.Entity) bool {
	if e == nil {
		return false
	}
	for _, id := range e.InstanceOf {
		if id == humanEntityID {
			return true
		}
	}
	return false
}

// LooksLikeBiography checks the page has enough material to be shown
func LooksLikeBiography(p *types.Page) bool {
	if p == nil || p.Thumbnail == nil || p.Thumbnail.Source == "" {
		return false
	}
	// length is measured in UTF-16 code units
	if len(utf16.Encode([]rune(p.Extract))) <= minExtractLength {
		return false
	}
	return biographyPattern.MatchString(p.Extract)
}
