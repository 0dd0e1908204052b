package dialogue

import "strings"

// Detect checks model output for a completion token. When the token is
// present it returns true plus the trimmed text after the token's first
// occurrence; otherwise false plus the input unchanged. The search is
// case-sensitive: the token is a literal sentinel the system prompt spells
// out verbatim, and matching anything looser would fire on prose that merely
// mentions it.
//
// An empty token never matches, so a misconfigured kind fails safe.
func Detect(text, token string) (bool, string) {
	if token == "" {
		return false, text
	}
	idx := strings.Index(text, token)
	if idx < 0 {
		return false, text
	}
	return true, strings.TrimSpace(text[idx+len(token):])
}
