package emailutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/property"
	"github.com/sirupsen/logrus"
)

// SendEmailAPI is the SES v2 call used by SESSender
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig holds the region, sender and optional static keys.
// Without keys the default AWS credential chain is used.
type SESConfig struct {
	Region          string
	Sender          string
	AccessKeyID     string
	SecretAccessKey string
}

// SESConfigFromProperties reads the ses.* keys
func SESConfigFromProperties(store *property.Store) SESConfig {
	return SESConfig{
		Region:          store.Get("ses.region"),
		Sender:          store.Get("ses.sender"),
		AccessKeyID:     store.Get("ses.access_key_id"),
		SecretAccessKey: store.Get("ses.secret_access_key"),
	}
}

// SESSender sends raw MIME messages through AWS SES
type SESSender struct {
	sender string
	client SendEmailAPI
}

// NewSESSender loads the AWS configuration for cfg
func NewSESSender(ctx context.Context, cfg SESConfig) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "awsconfig.loaddefaultconfig")
	}
	return NewSESSenderWithClient(cfg.Sender, sesv2.NewFromConfig(awsCfg)), nil
}

// NewSESSenderWithClient uses client. sender is the From for messages without one.
func NewSESSenderWithClient(sender string, client SendEmailAPI) *SESSender {
	return &SESSender{sender: sender, client: client}
}

// Name of the sender
func (s *SESSender) Name() string { return "ses" }

// Send delivers msg to every To, Cc and Bcc address
func (s *SESSender) Send(ctx context.Context, msg *Message) error {
	if msg == nil {
		return ErrNilMessage
	}
	rcpts, err := msg.Recipients()
	if err != nil {
		return errors.Wrap(err, "recipients")
	}
	if len(rcpts) == 0 {
		return ErrNoRecipients
	}
	if msg.From == "" {
		msg.From = s.sender
	}
	raw, err := msg.Bytes()
	if err != nil {
		return errors.Wrap(err, "msg.bytes")
	}
	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: rcpts,
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	}
	if msg.From != "" {
		input.FromEmailAddress = aws.String(msg.From)
	}
	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return errors.Wrap(err, "ses.sendemail")
	}
	id := ""
	if out != nil {
		id = aws.ToString(out.MessageId)
	}
	logrus.Infof("emailutil: ses: sent %q to %d recipients: %s", msg.Subject, len(rcpts), id)
	return nil
}
