package outreach

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESMailer delivers email through Amazon SES.
type SESMailer struct {
	client *sesv2.Client
}

// NewSESMailer creates an SES-backed mailer.
func NewSESMailer(ctx context.Context, region string) (*SESMailer, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESMailer{client: sesv2.NewFromConfig(cfg)}, nil
}

// Send submits one message to SES.
func (m *SESMailer) Send(ctx context.Context, email Email) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(email.From),
		Destination: &sestypes.Destination{
			ToAddresses: []string{email.To},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(email.Subject)},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: aws.String(email.HTML)},
				},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send to %s: %w", email.To, err)
	}
	return nil
}

var _ Mailer = (*SESMailer)(nil)
