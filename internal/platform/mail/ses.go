package mail

import (
	"context"
	"fmt"
	"time"

	perr "newsletter/internal/platform/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the slice of the SES v2 client used here
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport sends through Amazon SES v2
type SESTransport struct {
	client  sesAPI
	sender  string
	timeout time.Duration
}

// NewSES loads AWS config, static keys win over the default chain when both are set
func NewSES(ctx context.Context, c Config) (*SESTransport, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.SESRegion)}
	if c.SESAccessKey != "" && c.SESSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.SESAccessKey, c.SESSecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail: load aws config: %w", err)
	}
	return newSES(sesv2.NewFromConfig(cfg), c.Sender, c.Timeout), nil
}

func newSES(client sesAPI, sender string, timeout time.Duration) *SESTransport {
	return &SESTransport{client: client, sender: sender, timeout: timeout}
}

func utf8(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

// Send submits msg as a simple SES message
func (t *SESTransport) Send(ctx context.Context, msg Message) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(t.sender),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: utf8(msg.Subject),
				Body:    &types.Body{Html: utf8(msg.HTML)},
			},
		},
	}
	if msg.Text != "" {
		in.Content.Simple.Body.Text = utf8(msg.Text)
	}

	if _, err := t.client.SendEmail(ctx, in); err != nil {
		return perr.Gatewayf(err, "ses send failed")
	}
	return nil
}
