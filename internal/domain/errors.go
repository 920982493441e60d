package domain

import (
	"errors"
	"fmt"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Error codes returned to the calling backend.
const (
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeOverflow            = "OVERFLOW"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidSolution     = "INVALID_SOLUTION"
	CodeRateLimited         = "RATE_LIMITED"
	CodeNotVerified         = "NOT_VERIFIED"
	CodeAlreadyMinted       = "ALREADY_MINTED"
	CodeAlreadyClaimed      = "ALREADY_CLAIMED"
	CodeEventInactive       = "EVENT_INACTIVE"
	CodeEventPaused         = "EVENT_PAUSED"
	CodeInvalidTimeWindow   = "INVALID_TIME_WINDOW"
	CodeAlreadyInitialized  = "ALREADY_INITIALIZED"
	CodeNotInitialized      = "NOT_INITIALIZED"
	CodeLeaderboard         = "LEADERBOARD_UNAVAILABLE"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, Status: 403}
}

func ErrInvalidAmount(msg string) *AppError {
	return &AppError{Code: CodeInvalidAmount, Message: msg, Status: 400}
}

func ErrOverflow(msg string) *AppError {
	return &AppError{Code: CodeOverflow, Message: msg, Status: 422}
}

func ErrInsufficientBalance() *AppError {
	return &AppError{Code: CodeInsufficientBalance, Message: "insufficient balance", Status: 400}
}

func ErrInvalidSolution(msg string) *AppError {
	return &AppError{Code: CodeInvalidSolution, Message: msg, Status: 400}
}

func ErrRateLimited(retryAfter uint64) *AppError {
	return &AppError{Code: CodeRateLimited, Message: fmt.Sprintf("too many attempts, retry in %ds", retryAfter), Status: 429}
}

func ErrNotVerified(msg string) *AppError {
	return &AppError{Code: CodeNotVerified, Message: msg, Status: 409}
}

func ErrAlreadyMinted(msg string) *AppError {
	return &AppError{Code: CodeAlreadyMinted, Message: msg, Status: 409}
}

func ErrAlreadyClaimed() *AppError {
	return &AppError{Code: CodeAlreadyClaimed, Message: "event reward already claimed", Status: 409}
}

func ErrEventInactive(eventID uint64) *AppError {
	return &AppError{Code: CodeEventInactive, Message: fmt.Sprintf("event %d is not active", eventID), Status: 409}
}

func ErrEventPaused(msg string) *AppError {
	return &AppError{Code: CodeEventPaused, Message: msg, Status: 423}
}

func ErrInvalidTimeWindow(start, end uint64) *AppError {
	return &AppError{Code: CodeInvalidTimeWindow, Message: fmt.Sprintf("start %d is after end %d", start, end), Status: 400}
}

func ErrAlreadyInitialized() *AppError {
	return &AppError{Code: CodeAlreadyInitialized, Message: "platform already initialized", Status: 409}
}

func ErrNotInitialized() *AppError {
	return &AppError{Code: CodeNotInitialized, Message: "platform not initialized", Status: 503}
}

func ErrLeaderboardUnavailable(cause error) *AppError {
	return &AppError{Code: CodeLeaderboard, Message: "leaderboard submission failed", Status: 502, Cause: cause}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Status: 500, Cause: cause}
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
