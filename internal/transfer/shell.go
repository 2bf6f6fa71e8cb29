package transfer

import "strings"

// shellQuote wraps s in single quotes for the remote shell, escaping
// embedded single quotes. Remote paths pass through a shell on the far
// side, so spaces and metacharacters must never split or expand.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
