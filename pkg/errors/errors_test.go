package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBusinessError(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      *BusinessError
		code     string
		sentinel error
	}{
		{"settings load", WrapSettingsLoadFailed(cause), ErrCodeSettingsLoadFailed, cause},
		{"invalid settings", WrapInvalidSettings(cause), ErrCodeInvalidSettings, ErrInvalidSettings},
		{"loan fetch", WrapLoanFetchFailed("overdue", cause), ErrCodeLoanFetchFailed, ErrLoanFetchFailed},
		{"state update", WrapStateUpdateFailed(uuid.New(), cause), ErrCodeStateUpdateFailed, ErrStateUpdateFailed},
		{"audit write", WrapAuditWriteFailed(uuid.New(), cause), ErrCodeAuditWriteFailed, ErrAuditWriteFailed},
		{"render", WrapRenderFailed("due_soon", cause), ErrCodeRenderFailed, ErrRenderFailed},
		{"send", WrapSendFailed(cause), ErrCodeSendFailed, ErrSendFailed},
		{"send timeout", WrapSendTimeout(30 * time.Second), ErrCodeSendTimeout, ErrSendTimeout},
		{"invalid recipient", WrapInvalidRecipient("nope"), ErrCodeInvalidRecipient, ErrInvalidRecipient},
		{"future run date", WrapFutureRunDate("2024-05-21", "2024-05-20"), ErrCodeFutureRunDate, ErrFutureRunDate},
		{"database", WrapDatabaseError(cause), ErrCodeDatabaseError, cause},
		{"cache", WrapCacheError(cause), ErrCodeCacheError, cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Contains(t, tt.err.Error(), tt.code)

			wrapped := fmt.Errorf("run: %w", tt.err)
			assert.Equal(t, tt.code, CodeOf(wrapped))
		})
	}
}

func TestBusinessError_KeepsCause(t *testing.T) {
	cause := errors.New("550 mailbox unavailable")
	err := WrapSendFailed(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "550 mailbox unavailable")
	assert.Equal(t, "SEND_TIMEOUT: email send did not complete within 30s (email send timed out)", WrapSendTimeout(30*time.Second).Error())
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Empty(t, CodeOf(errors.New("plain")))
	assert.Empty(t, CodeOf(nil))
}
