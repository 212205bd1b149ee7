package blog

import "fmt"

// ValidationError reports malformed input on a write operation, naming the
// violated field.
type ValidationError struct {
	Field  string
	Reason string
}

func (err ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", err.Field, err.Reason)
}

// ForbiddenError reports that the actor lacks ownership or staff rights for
// the attempted action.
type ForbiddenError struct {
	UserID string
	Action string
}

func (err ForbiddenError) Error() string {
	if err.UserID == "" {
		return fmt.Sprintf("anonymous viewer may not %s", err.Action)
	}

	return fmt.Sprintf("user %q may not %s", err.UserID, err.Action)
}
