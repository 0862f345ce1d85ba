package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockSES struct {
	mock.Mock
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

func TestSESSenderSend(t *testing.T) {
	api := &mockSES{}
	sender := NewSESSenderWithAPI(api, "noreply@example.com", "tracking", zaptest.NewLogger(t))

	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "noreply@example.com" &&
			in.Destination.ToAddresses[0] == "pm@example.com" &&
			aws.ToString(in.Message.Subject.Data) == "Hello" &&
			aws.ToString(in.ConfigurationSetName) == "tracking" &&
			len(in.Tags) == 2 &&
			aws.ToString(in.Tags[0].Name) == "entityId" &&
			aws.ToString(in.Tags[1].Value) == "INSPECTION_OVERDUE"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil)

	err := sender.Send(context.Background(), Message{
		To:      "pm@example.com",
		Subject: "Hello",
		HTML:    "<p>hi</p>",
		Metadata: map[string]string{
			"notificationType": "INSPECTION_OVERDUE",
			"entityId":         "abc-123",
			"entityType":       "",
		},
	})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestSESSenderSendError(t *testing.T) {
	api := &mockSES{}
	sender := NewSESSenderWithAPI(api, "noreply@example.com", "", zaptest.NewLogger(t))
	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	err := sender.Send(context.Background(), Message{To: "x@example.com", Subject: "s"})
	assert.ErrorContains(t, err, "throttled")
}

func TestSESSenderRejectsEmptyRecipient(t *testing.T) {
	api := &mockSES{}
	sender := NewSESSenderWithAPI(api, "noreply@example.com", "", zaptest.NewLogger(t))

	err := sender.Send(context.Background(), Message{Subject: "s"})
	assert.Error(t, err)
	api.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestMessageTagsSanitises(t *testing.T) {
	tags := messageTags(map[string]string{"user id": "a@b.c"})
	require.Len(t, tags, 1)
	assert.Equal(t, "user_id", aws.ToString(tags[0].Name))
	assert.Equal(t, "a_b_c", aws.ToString(tags[0].Value))
}
