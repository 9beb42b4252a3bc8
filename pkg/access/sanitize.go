package access

import "strings"

// SanitizeReturnTo returns a redirect target that cannot point off-site.
// Anything other than a same-origin absolute path collapses to "/": empty
// values, relative paths, full URLs, and the protocol-relative forms "//"
// and "/\" that browsers interpret as off-site.
func SanitizeReturnTo(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") {
		return "/"
	}
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, `/\`) {
		return "/"
	}
	return path
}
