package token

import "strings"

// ParseTokenFromAuthorization returns the second space-separated field of an
// Authorization header value ("Bearer abc.def.ghi" -> "abc.def.ghi").
//
// The split is deliberately naive: the scheme is not checked, nothing is
// trimmed, and repeated spaces produce empty fields. An empty header or one
// without a second field yields "".
func ParseTokenFromAuthorization(authorization string) string {
	if authorization == "" {
		return ""
	}

	parts := strings.Split(authorization, " ")
	if len(parts) < 2 {
		return ""
	}

	return parts[1]
}
