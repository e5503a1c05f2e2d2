package mailer

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/reminder-engine/internal/domain"
	customError "github.com/segyhp/reminder-engine/pkg/errors"
)

var addressValidator = validator.New()

// Transport delivers a rendered message. Send must honor ctx cancellation
// and deadline.
type Transport interface {
	// Ready reports whether settings carry what this transport needs to send
	Ready(settings *domain.ReminderSettings) bool
	Send(ctx context.Context, settings *domain.ReminderSettings, msg *Message) error
}

// ValidateRecipient rejects addresses the transport should never try
func ValidateRecipient(address string) error {
	address = strings.TrimSpace(address)
	if err := addressValidator.Var(address, "required,email"); err != nil {
		return customError.WrapInvalidRecipient(address)
	}
	return nil
}
