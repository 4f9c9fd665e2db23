/*
Package errs provides custom error types and application-level error code constants.

These codes identify specific business or system errors both inside the server
and in responses to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates the request rate exceeded the configured limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Match and Room Business Logic Errors
const (
	// ErrRoomNotFound indicates that the referenced room does not exist.
	ErrRoomNotFound = 2101

	// ErrRoomIsFull indicates that the room already has two distinct participants.
	ErrRoomIsFull = 2102

	// ErrRoomNotActive indicates an operation that requires a game in progress.
	ErrRoomNotActive = 2103
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrAlreadyLoggedIn indicates the caller already holds a valid session.
	ErrAlreadyLoggedIn = 3001

	// ErrInvalidGamingName indicates a gaming name that fails validation.
	ErrInvalidGamingName = 3002

	// ErrInvalidPassword indicates a password that fails validation.
	ErrInvalidPassword = 3003

	// ErrUserAlreadyExists indicates the gaming name or email is already taken.
	ErrUserAlreadyExists = 3004

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = 3005

	// ErrUserNotFound indicates the referenced account does not exist.
	ErrUserNotFound = 3006

	// ErrUnauthorized indicates a request without a valid identity token.
	ErrUnauthorized = 3007
)

// 4xxx: Economy Errors
const (
	// ErrInsufficientCoins indicates the user cannot afford the purchase.
	ErrInsufficientCoins = 4001

	// ErrAvatarAlreadyOwned indicates the avatar is already unlocked.
	ErrAvatarAlreadyOwned = 4002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrStorageFailed indicates a failure talking to the object storage backend.
	ErrStorageFailed = 5001
)
