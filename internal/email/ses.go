package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// SESAPI is the subset of the SES client used by SESSender.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender delivers email through Amazon SES.
type SESSender struct {
	api              SESAPI
	from             string
	configurationSet string
	logger           *zap.Logger
}

// NewSESSender loads the default AWS credential chain for region.
func NewSESSender(ctx context.Context, region, from, configurationSet string, logger *zap.Logger) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSESSenderWithAPI(ses.NewFromConfig(cfg), from, configurationSet, logger), nil
}

// NewSESSenderWithAPI builds a sender around an existing client.
func NewSESSenderWithAPI(api SESAPI, from, configurationSet string, logger *zap.Logger) *SESSender {
	return &SESSender{api: api, from: from, configurationSet: configurationSet, logger: logger}
}

// Send implements Sender.
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("ses: empty recipient")
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Html: &sestypes.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
			},
		},
		Tags: messageTags(msg.Metadata),
	}
	if s.configurationSet != "" {
		input.ConfigurationSetName = aws.String(s.configurationSet)
	}

	out, err := s.api.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", msg.To, err)
	}
	s.logger.Debug("email sent", zap.String("to", msg.To), zap.String("message_id", aws.ToString(out.MessageId)))
	return nil
}

var tagUnsafe = regexp.MustCompile(`[^A-Za-z0-9_\-]`)

// messageTags converts metadata to SES tags. SES only accepts ASCII letters,
// digits, underscores and dashes in tag names and values.
func messageTags(metadata map[string]string) []sestypes.MessageTag {
	if len(metadata) == 0 {
		return nil
	}
	keys := make([]string, 0, len(metadata))
	for k, v := range metadata {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]sestypes.MessageTag, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, sestypes.MessageTag{
			Name:  aws.String(tagUnsafe.ReplaceAllString(k, "_")),
			Value: aws.String(tagUnsafe.ReplaceAllString(metadata[k], "_")),
		})
	}
	return tags
}
