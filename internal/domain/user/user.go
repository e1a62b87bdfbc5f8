package user

import "github.com/geocoder89/bistro/internal/store"

const (
	EmailField = "email"
	RoleField  = "role"

	RoleAdmin = "admin"
)

// ExistsMessage is reported when registering an email that is already taken.
const ExistsMessage = "User already existing"

// IsAdmin reports whether a user document carries the admin role.
func IsAdmin(u store.Document) bool {
	role, _ := u[RoleField].(string)
	return role == RoleAdmin
}

// ForRegistration prepares a client-supplied profile for insertion. The
// role is dropped so that only a promotion can make an admin.
func ForRegistration(body store.Document) store.Document {
	u := store.Clone(body)
	delete(u, RoleField)
	delete(u, store.IDField)
	return u
}
