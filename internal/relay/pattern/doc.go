// Package pattern provides the glob-style matcher used to resolve channel
// and event-type lookups against registered keys.
//
// # Syntax
//
// A pattern is a plain string in which every "*" matches zero or more
// characters. There is no single-character wildcard and no escaping:
//
//	channelA*          - matches channelA, channelA123, channelAbc
//	*eventX            - matches eventX, fooeventX
//	ABC*def*XYZ*123*   - matches ABCdefXYZ123end
//	exact              - matches only "exact"
//
// Matching is existential: the pattern's literal segments must occur in
// the candidate in order and without overlap, anchored at the start when
// the pattern does not begin with "*" and at the end when it does not end
// with "*". A pattern with no "*" matches by equality, so the empty pattern
// matches only the empty string.
//
// # Names
//
// Channel and event-type names are validated with ValidateName. The
// wildcard and the key separator are forbidden by default so that a
// registered name can never be mistaken for a pattern.
package pattern
