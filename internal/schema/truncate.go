package schema

const ellipsis = "..."

// closers maps an opening bracket to its closer.
var closers = map[rune]string{
	'{': "}",
	'[': "]",
	'(': ")",
	'<': ">",
}

// Truncate shortens s to at most n characters.
// A truncated string ends with "..." followed by the matching closer when
// s opens with a bracket, brace, paren or angle bracket, so
// Truncate("[1, 2, 3, 4, 5]", 10) yields "[1, 2,...]".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	end := ellipsis
	if closer, ok := closers[runes[0]]; ok {
		end += closer
	}

	keep := n - len(end)
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + end
}
