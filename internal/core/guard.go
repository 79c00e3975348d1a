package core

import "strings"

// AdminID is the reserved administrator identity. It is seeded at startup
// and can never be deleted.
const AdminID = "ADMIN"

// NormalizeID canonicalizes a user id. All ids are stored upper-cased, so
// lookups and duplicate checks are case-insensitive.
func NormalizeID(id string) string {
	return strings.ToUpper(id)
}

// Authorize reports whether requester may act on a resource owned by owner.
// The requester must be an already authenticated identity; an empty
// requester is never permitted.
func Authorize(requester, owner string) bool {
	if requester == "" {
		return false
	}
	return requester == owner || requester == AdminID
}

// RequireAdmin gates administrative operations. Only the literal ADMIN
// identity passes; ownership grants nothing here.
func RequireAdmin(requester string) error {
	if requester != AdminID {
		return ErrUnauthorized
	}
	return nil
}

// ValidateNewID rejects ids that would pollute the identity namespace.
// Spaces and single quotes are disallowed.
func ValidateNewID(id string) error {
	if id == "" || strings.ContainsAny(id, " '") {
		return ErrValidation
	}
	return nil
}
