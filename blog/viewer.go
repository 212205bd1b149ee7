package blog

// Viewer is the identity every read and write operation is evaluated
// against. The zero value is the anonymous viewer.
type Viewer struct {
	UserID  string
	IsStaff bool
}

// Anonymous returns the viewer used for unauthenticated requests.
func Anonymous() Viewer {
	return Viewer{}
}

func (v Viewer) IsAnonymous() bool {
	return v.UserID == ""
}

// Is reports whether the viewer is the authenticated user with the given id.
func (v Viewer) Is(userID string) bool {
	return !v.IsAnonymous() && v.UserID == userID
}
