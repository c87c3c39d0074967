package auth

// Policy is the anti-forgery posture of an endpoint, chosen once per
// endpoint rather than decided ad hoc by catching a failure and
// retrying without the check.
type Policy int

const (
	// PolicyBearerOnly verifies the bearer token only. For endpoints
	// that must work before a guard token exists, e.g. guard refresh.
	PolicyBearerOnly Policy = iota

	// PolicyStrict verifies bearer and, for non-GET methods, the guard
	// token within its normal max age.
	PolicyStrict

	// PolicyGraceWindow is PolicyStrict except that an expired guard
	// token still bound to the right session is accepted for as long
	// as the bearer token itself lives. Use only where forcing a guard
	// refresh mid-flow would lose user work.
	PolicyGraceWindow
)

func (p Policy) String() string {
	switch p {
	case PolicyBearerOnly:
		return "bearer-only"
	case PolicyStrict:
		return "strict"
	case PolicyGraceWindow:
		return "grace-window"
	default:
		return "unknown"
	}
}
