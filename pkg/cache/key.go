package cache

import "strings"

// NormalizeID strips dashes from a UUID and lower-cases it, so that every
// textual form of the same UUID maps to one cache key.
//
// Example:
//
//	NormalizeID("069A79F4-44E9-4726-A5BE-FCA90E38AAF5") // "069a79f444e94726a5befca90e38aaf5"
func NormalizeID(id string) string {
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}

// IdentityKey returns the key of the IdentityRecord for name.
func IdentityKey(name string) string {
	return strings.ToLower(name)
}

// SnapshotKey returns the key of the SnapshotRecord for id.
func SnapshotKey(id string) string {
	return NormalizeID(id)
}
