package validator

import "strings"

// IsRepository reports whether name has the "owner/repo" form.
func IsRepository(name string) bool {
	_, _, ok := SplitRepository(name)
	return ok
}

// SplitRepository splits "owner/repo" into its parts.
func SplitRepository(name string) (owner, repo string, ok bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
