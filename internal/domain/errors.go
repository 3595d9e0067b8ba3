package domain

// Error is a domain-level error with a stable code. Handlers map codes to
// transport responses; engine callers compare against the sentinel values
// below.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Domain errors
var (
	ErrNotFound              = &Error{Code: "NotFound", Message: "stock record not found"}
	ErrVariantExists         = &Error{Code: "VariantExists", Message: "variant already has a stock record"}
	ErrInvalidQuantity       = &Error{Code: "InvalidQuantity", Message: "quantity must be a positive integer"}
	ErrInvalidTransaction    = &Error{Code: "InvalidTransaction", Message: "unknown transaction type"}
	ErrInsufficientStock     = &Error{Code: "InsufficientStock", Message: "insufficient stock on hand"}
	ErrInsufficientAvailable = &Error{Code: "InsufficientAvailable", Message: "insufficient available stock"}
	ErrOverRelease           = &Error{Code: "OverRelease", Message: "release exceeds reserved quantity"}
	ErrInvalidAdjustment     = &Error{Code: "InvalidAdjustment", Message: "adjustment would drive stock negative"}
	ErrConcurrencyConflict   = &Error{Code: "ConcurrencyConflict", Message: "concurrent modification, retries exhausted"}
)
