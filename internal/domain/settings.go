package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var settingsValidator = validator.New()

// ReminderSettings is the single email_settings row. It is loaded fresh
// for every run and never cached.
type ReminderSettings struct {
	SMTPHost            string `json:"smtp_host" db:"smtp_host" validate:"omitempty,hostname_rfc1123"`
	SMTPPort            int    `json:"smtp_port" db:"smtp_port" validate:"omitempty,gt=0,lte=65535"`
	SMTPUsername        string `json:"smtp_username" db:"smtp_username"`
	SMTPPassword        string `json:"-" db:"smtp_password"`
	FromEmail           string `json:"from_email" db:"from_email" validate:"omitempty,email"`
	FromName            string `json:"from_name" db:"from_name"`
	ReminderDaysBefore  int    `json:"reminder_days_before" db:"reminder_days_before" validate:"gte=1"`
	MaxOverdueReminders int    `json:"max_overdue_reminders" db:"max_overdue_reminders" validate:"gte=1"`
}

// HasSMTPCredentials reports whether both SMTP username and password are set.
func (s *ReminderSettings) HasSMTPCredentials() bool {
	return strings.TrimSpace(s.SMTPUsername) != "" && s.SMTPPassword != ""
}

// Sender formats the From header value.
func (s *ReminderSettings) Sender() string {
	if s.FromName == "" {
		return s.FromEmail
	}
	return fmt.Sprintf("%s <%s>", s.FromName, s.FromEmail)
}

// Validate checks the cadence fields and the shape of the SMTP fields.
func (s *ReminderSettings) Validate() error {
	return settingsValidator.Struct(s)
}
