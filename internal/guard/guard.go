// Package guard decides whether a screen may be shown to the current session.
package guard

import "github.com/sangamsetu/casedesk/internal/models"

type State int

const (
	// Loading means the session has not been restored from storage yet.
	Loading State = iota
	Unauthenticated
	Authorized
	// Forbidden means the user is signed in but lacks the role the screen requires.
	Forbidden
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authorized:
		return "authorized"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Evaluate derives the guard state from the restored session. sess is nil when there is no valid session.
// An empty allowedRoles admits every signed in user, and ADMIN is admitted regardless of allowedRoles.
func Evaluate(rehydrated bool, sess *models.Session, allowedRoles []models.Role) State {
	switch {
	case !rehydrated:
		return Loading
	case sess == nil || sess.Token == "":
		return Unauthenticated
	case len(allowedRoles) == 0 || models.HasAnyRole(&sess.User, allowedRoles):
		return Authorized
	default:
		return Forbidden
	}
}
