package lookup

import "regexp"

var (
	uuidPattern     = regexp.MustCompile(`(?i)^[0-9a-f]{8}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{12}$`)
	usernamePattern = regexp.MustCompile(`^\w{3,16}$`)
)

// ValidUUID reports whether s is a UUID with or without dashes, in any case.
func ValidUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// ValidUsername reports whether s has the shape of a Minecraft name:
// 3 to 16 letters, digits or underscores.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}
