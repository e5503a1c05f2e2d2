package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrSettingsNotConfigured = errors.New("email settings not configured")
	ErrInvalidSettings       = errors.New("invalid email settings")
	ErrLoanFetchFailed       = errors.New("loan candidate fetch failed")
	ErrStateUpdateFailed     = errors.New("loan reminder state update failed")
	ErrAuditWriteFailed      = errors.New("audit log write failed")
	ErrRenderFailed          = errors.New("email render failed")
	ErrSendFailed            = errors.New("email send failed")
	ErrSendTimeout           = errors.New("email send timed out")
	ErrInvalidRecipient      = errors.New("invalid recipient address")
	ErrFutureRunDate         = errors.New("run date is in the future")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeSettingsLoadFailed = "SETTINGS_LOAD_FAILED"
	ErrCodeInvalidSettings    = "INVALID_SETTINGS"
	ErrCodeLoanFetchFailed    = "LOAN_FETCH_FAILED"
	ErrCodeStateUpdateFailed  = "STATE_UPDATE_FAILED"
	ErrCodeAuditWriteFailed   = "AUDIT_WRITE_FAILED"
	ErrCodeRenderFailed       = "RENDER_FAILED"
	ErrCodeSendFailed         = "SEND_FAILED"
	ErrCodeSendTimeout        = "SEND_TIMEOUT"
	ErrCodeInvalidRecipient   = "INVALID_RECIPIENT"
	ErrCodeFutureRunDate      = "FUTURE_RUN_DATE"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeCacheError         = "CACHE_ERROR"
)

// CodeOf returns the code of the first BusinessError in err's chain
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func WrapSettingsLoadFailed(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeSettingsLoadFailed,
		"could not load email settings",
		err,
	)
}

func WrapInvalidSettings(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidSettings,
		"email settings failed validation",
		errors.Join(ErrInvalidSettings, err),
	)
}

func WrapLoanFetchFailed(set string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanFetchFailed,
		fmt.Sprintf("fetching %s candidates failed", set),
		errors.Join(ErrLoanFetchFailed, err),
	)
}

func WrapStateUpdateFailed(loanID uuid.UUID, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeStateUpdateFailed,
		fmt.Sprintf("reminder sent but state of loan %s was not updated", loanID),
		errors.Join(ErrStateUpdateFailed, err),
	)
}

func WrapAuditWriteFailed(loanID uuid.UUID, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeAuditWriteFailed,
		fmt.Sprintf("audit entry for loan %s was not persisted", loanID),
		errors.Join(ErrAuditWriteFailed, err),
	)
}

func WrapRenderFailed(emailType string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeRenderFailed,
		fmt.Sprintf("rendering %s email failed", emailType),
		errors.Join(ErrRenderFailed, err),
	)
}

func WrapSendFailed(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeSendFailed,
		"email transport rejected the message",
		errors.Join(ErrSendFailed, err),
	)
}

func WrapSendTimeout(timeout time.Duration) *BusinessError {
	return NewBusinessError(
		ErrCodeSendTimeout,
		fmt.Sprintf("email send did not complete within %s", timeout),
		ErrSendTimeout,
	)
}

func WrapInvalidRecipient(address string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRecipient,
		fmt.Sprintf("recipient address %q is not valid", address),
		ErrInvalidRecipient,
	)
}

func WrapFutureRunDate(date, current string) *BusinessError {
	return NewBusinessError(
		ErrCodeFutureRunDate,
		fmt.Sprintf("cannot run reminders for %s, current date is %s", date, current),
		ErrFutureRunDate,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
