package identity

import "errors"

// Kind classifies service failures for the request layer.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingField
	KindUsernameTaken
	KindEmailTaken
	KindPolicyViolation
	KindInvalidCredentials
	KindAccountDeactivated
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

// Sentinels matched with errors.Is against any *Error of the same kind.
// The self-modification guards are Forbidden errors with their own sentinels.
var (
	ErrInternal                  = errors.New("internal error")
	ErrMissingField              = errors.New("missing field")
	ErrUsernameTaken             = errors.New("username taken")
	ErrEmailTaken                = errors.New("email taken")
	ErrPolicyViolation           = errors.New("password policy violation")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrAccountDeactivated        = errors.New("account deactivated")
	ErrUnauthenticated           = errors.New("unauthenticated")
	ErrForbidden                 = errors.New("forbidden")
	ErrSelfDemotionForbidden     = errors.New("self demotion forbidden")
	ErrSelfDeactivationForbidden = errors.New("self deactivation forbidden")
	ErrNotFound                  = errors.New("not found")
)

var kindSentinels = map[Kind]error{
	KindInternal:           ErrInternal,
	KindMissingField:       ErrMissingField,
	KindUsernameTaken:      ErrUsernameTaken,
	KindEmailTaken:         ErrEmailTaken,
	KindPolicyViolation:    ErrPolicyViolation,
	KindInvalidCredentials: ErrInvalidCredentials,
	KindAccountDeactivated: ErrAccountDeactivated,
	KindUnauthenticated:    ErrUnauthenticated,
	KindForbidden:          ErrForbidden,
	KindNotFound:           ErrNotFound,
}

// Error is returned by every Service operation. Message is safe to show to
// the caller; Err holds the cause and is never exposed for KindInternal.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the Kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the caller-facing message for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return msgInternal
}

const (
	msgInternal                  = "An unexpected error occurred. Please try again later."
	msgRegisterMissing           = "Username, email, and password are required"
	msgLoginMissing              = "User ID and password are required"
	msgChangeRoleMissing         = "User ID and new role are required"
	msgToggleStatusMissing       = "User ID is required"
	msgUsernameTaken             = "Username already exists"
	msgEmailTaken                = "Email already exists"
	msgInvalidCredentials        = "Invalid credentials"
	msgAccountDeactivated        = "Account is deactivated. Please contact administrator."
	msgNotAuthenticated          = "Authentication credentials were not provided."
	msgInvalidToken              = "Invalid token."
	msgInactiveToken             = "User inactive or deleted."
	msgForbidden                 = "You do not have permission to perform this action."
	msgSelfDemotionForbidden     = "Cannot change your own admin role"
	msgSelfDeactivationForbidden = "Cannot deactivate your own account"
	msgNotFound                  = "User not found"
)

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: msgInternal, Err: err}
}
