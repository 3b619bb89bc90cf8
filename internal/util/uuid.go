package util

import "github.com/google/uuid"

const abbreviatedUUIDPrefixLength = 8

// IsValidUUID reports whether s is a UUID in any of the standard encodings.
func IsValidUUID(s string) bool {
	return uuid.Validate(s) == nil
}

// AbbreviateUUID shortens UUIDs for table cells. Other IDs are returned as is.
func AbbreviateUUID(id string) string {
	if len(id) <= abbreviatedUUIDPrefixLength || !IsValidUUID(id) {
		return id
	}
	return id[:abbreviatedUUIDPrefixLength] + "…"
}
