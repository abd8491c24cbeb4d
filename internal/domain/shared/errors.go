package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrOfferExpired        = NewDomainError("OFFER_EXPIRED", "Dispatch offer has expired")
	ErrOfferSuperseded     = NewDomainError("OFFER_SUPERSEDED", "Dispatch offer was superseded by a newer attempt")
	ErrAlreadyAssigned     = NewDomainError("ALREADY_ASSIGNED", "Order is already assigned to another partner")
	ErrPartnerOffline      = NewDomainError("PARTNER_OFFLINE", "Partner is offline")
)
