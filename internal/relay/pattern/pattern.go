package pattern

import (
	"errors"
	"strconv"
	"strings"
)

// ErrForbiddenCharacter is matched by every *ForbiddenError.
var ErrForbiddenCharacter = errors.New("forbidden character")

const (
	// Wildcard matches zero or more characters.
	Wildcard = "*"

	// Separator joins a channel and an event type into a single key.
	Separator = ":"

	// DefaultForbidden is the default set of characters that may not
	// appear in a channel or event-type name.
	DefaultForbidden = Wildcard + Separator
)

// Matches reports whether candidate matches pattern.
func Matches(candidate, pattern string) bool {
	if !HasWildcard(pattern) {
		return candidate == pattern
	}

	segments := strings.Split(pattern, Wildcard)
	first := segments[0]
	last := segments[len(segments)-1]

	if !strings.HasPrefix(candidate, first) {
		return false
	}
	pos := len(first)

	// Leftmost placement of each inner segment leaves the most room for
	// the ones after it, so a single forward scan is sufficient.
	for _, seg := range segments[1 : len(segments)-1] {
		if seg == "" {
			continue
		}
		idx := strings.Index(candidate[pos:], seg)
		if idx < 0 {
			return false
		}
		pos += idx + len(seg)
	}

	// The trailing segment must not overlap anything matched so far.
	if len(candidate)-len(last) < pos {
		return false
	}
	return strings.HasSuffix(candidate, last)
}

// HasWildcard returns true if s contains the wildcard character.
func HasWildcard(s string) bool {
	return strings.Contains(s, Wildcard)
}

// Key joins a channel and an event type with the separator.
//
// Example: Key("orders", "created") -> "orders:created"
func Key(channel, eventType string) string {
	return channel + Separator + eventType
}

// ValidateName checks that name contains none of the characters in
// forbidden. The first offending character, in name order, is reported.
func ValidateName(field, name, forbidden string) error {
	if forbidden == "" {
		return nil
	}
	for _, r := range name {
		if strings.ContainsRune(forbidden, r) {
			return &ForbiddenError{Field: field, Name: name, Char: r}
		}
	}
	return nil
}

// ForbiddenError reports a forbidden character in a channel or event-type name.
type ForbiddenError struct {
	// Field is the name being validated (e.g. "channel").
	Field string

	// Name is the rejected value.
	Name string

	// Char is the first forbidden character found.
	Char rune
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	return "forbidden character '" + string(e.Char) + "' in " + e.Field + " " + strconv.Quote(e.Name)
}

// Is allows errors.Is to match ForbiddenError with ErrForbiddenCharacter.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbiddenCharacter
}
