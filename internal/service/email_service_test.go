package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestEmailService_Disabled(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "us-east-1", "", "Eldercare", zap.NewNop())
	require.NoError(t, err)
	require.False(t, svc.IsEnabled())
	require.NoError(t, svc.SendLinkCode(context.Background(), "renato@example.com", "Sr. Carlos", "ABC123-1"))
}

func TestEmailService_SendLinkCode(t *testing.T) {
	ses := &fakeSES{}
	svc := newEmailService(ses, "noreply@example.com", "Eldercare", zap.NewNop())

	require.NoError(t, svc.SendLinkCode(context.Background(), "renato@example.com", "Sr. Carlos", "ABC123-1"))
	require.NotNil(t, ses.input)
	require.Equal(t, "Eldercare <noreply@example.com>", aws.ToString(ses.input.FromEmailAddress))
	require.Equal(t, []string{"renato@example.com"}, ses.input.Destination.ToAddresses)
	require.Contains(t, aws.ToString(ses.input.Content.Simple.Subject.Data), "Sr. Carlos")
	require.Contains(t, aws.ToString(ses.input.Content.Simple.Body.Text.Data), "ABC123-1")
	require.Contains(t, aws.ToString(ses.input.Content.Simple.Body.Html.Data), "ABC123-1")
}

func TestEmailService_SendFailure(t *testing.T) {
	ses := &fakeSES{err: errors.New("throttled")}
	svc := newEmailService(ses, "noreply@example.com", "", zap.NewNop())

	err := svc.SendLinkCode(context.Background(), "renato@example.com", "Sr. Carlos", "ABC123-1")
	require.ErrorContains(t, err, "throttled")
	require.Equal(t, "noreply@example.com", aws.ToString(ses.input.FromEmailAddress))
}
