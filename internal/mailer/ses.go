package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/segyhp/reminder-engine/internal/domain"
)

const charsetUTF8 = "UTF-8"

// SESAPI is the slice of the SES client the transport uses
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESTransport sends through Amazon SES. SMTP fields of the settings are
// ignored; only the sender identity is used.
type SESTransport struct {
	client SESAPI
}

func NewSESTransport(client SESAPI) *SESTransport {
	return &SESTransport{client: client}
}

// NewSESTransportFromRegion loads the default AWS credential chain
func NewSESTransportFromRegion(ctx context.Context, region string) (*SESTransport, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSESTransport(ses.NewFromConfig(cfg)), nil
}

func (t *SESTransport) Ready(settings *domain.ReminderSettings) bool {
	return settings.FromEmail != ""
}

func (t *SESTransport) Send(ctx context.Context, settings *domain.ReminderSettings, msg *Message) error {
	if err := ValidateRecipient(msg.To); err != nil {
		return err
	}

	input := &ses.SendEmailInput{
		Source: aws.String(settings.Sender()),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charsetUTF8)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(charsetUTF8)},
				Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String(charsetUTF8)},
			},
		},
	}

	if _, err := t.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
