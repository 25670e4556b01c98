package domain

import (
	"errors"
	"regexp"
)

const MaxNameLen = 20

var (
	tagPattern     = regexp.MustCompile(`</?[^>]+(>|$)`)
	nameCharFilter = regexp.MustCompile(`[^\w\s-]`)
	roomIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9]{4,10}$`)
)

// SanitizeName strips HTML-like tags, truncates to MaxNameLen characters
// and drops every rune that is not a word character, whitespace or hyphen.
// It never fails; the worst case is an empty string.
func SanitizeName(raw string) string {
	clean := tagPattern.ReplaceAllString(raw, "")
	if runes := []rune(clean); len(runes) > MaxNameLen {
		clean = string(runes[:MaxNameLen])
	}
	return nameCharFilter.ReplaceAllString(clean, "")
}

// ValidRoomID reports whether raw is 4-10 alphanumeric characters.
func ValidRoomID(raw string) bool {
	return roomIDPattern.MatchString(raw)
}

// ErrInvalidRoomID is the one validation error surfaced to clients.
var ErrInvalidRoomID = errors.New("invalid room id")
