// Package identity models the acting identity behind a request: a Supabase
// user, or an anonymous client-local identity. Like toggling and reply
// creation take one of these instead of branching on "is there a user id"
// at every call site.
package identity

// Kind discriminates the identity variants.
type Kind int

const (
	// KindAnonymous is a client-local identity with no backend user.
	KindAnonymous Kind = iota
	// KindAuthenticated is a backend-known user.
	KindAuthenticated
)

// ActingIdentity is either Authenticated(userID) or Anonymous(localID).
// The zero value is an anonymous identity with an empty local ID.
type ActingIdentity struct {
	kind Kind
	id   string
}

// Authenticated returns the identity of a signed-in user.
func Authenticated(userID string) ActingIdentity {
	return ActingIdentity{kind: KindAuthenticated, id: userID}
}

// Anonymous returns an ephemeral client-local identity.
func Anonymous(localID string) ActingIdentity {
	return ActingIdentity{kind: KindAnonymous, id: localID}
}

// Kind returns the identity variant.
func (a ActingIdentity) Kind() Kind { return a.kind }

// IsAuthenticated reports whether a backend user is acting.
func (a ActingIdentity) IsAuthenticated() bool { return a.kind == KindAuthenticated }

// UserID returns the backend user id, or "" for anonymous identities.
func (a ActingIdentity) UserID() string {
	if a.kind == KindAuthenticated {
		return a.id
	}
	return ""
}

// LocalID returns the client-local id, or "" for authenticated identities.
func (a ActingIdentity) LocalID() string {
	if a.kind == KindAnonymous {
		return a.id
	}
	return ""
}
