package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mergington-activities/internal/activities"
	"mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	mu     sync.Mutex
	inputs []*ses.SendEmailInput
	err    error
	block  chan struct{}
}

func (f *fakeSES) SendEmail(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: awssdk.String("msg-1")}, nil
}

func (f *fakeSES) sent() []*ses.SendEmailInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ses.SendEmailInput(nil), f.inputs...)
}

func soccerConfirmation() *activities.Confirmation {
	return &activities.Confirmation{
		Message: activities.SignupMessage("ana@mergington.edu", "Soccer Practice"),
		Email:   "ana@mergington.edu",
		Activity: activities.Activity{
			Name:            "Soccer Practice",
			Description:     "Team drills, conditioning, and scrimmages",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 22,
			Participants:    []string{"ana@mergington.edu"},
		},
	}
}

func TestCompose(t *testing.T) {
	subject, body := Compose(soccerConfirmation())
	assert.Equal(t, "Signed up for Soccer Practice", subject)
	assert.Contains(t, body, "Signed up ana@mergington.edu for Soccer Practice")
	assert.Contains(t, body, "Schedule: Tuesdays and Thursdays, 4:00 PM - 5:30 PM")
}

func TestEmailNotifier_Sends(t *testing.T) {
	api := &fakeSES{}
	n := NewEmailNotifier(aws.NewSESClientWithAPI(api), "activities@mergington.edu", time.Second, logger.NewTestLogger(t))
	before := testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues(statusSent))

	n.SignupConfirmed(context.Background(), soccerConfirmation())
	require.NoError(t, n.Close(context.Background()))

	sent := api.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "activities@mergington.edu", awssdk.ToString(sent[0].Source))
	assert.Equal(t, []string{"ana@mergington.edu"}, sent[0].Destination.ToAddresses)
	assert.Equal(t, "Signed up for Soccer Practice", awssdk.ToString(sent[0].Message.Subject.Data))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues(statusSent)))
}

func TestEmailNotifier_FailureIsCounted(t *testing.T) {
	api := &fakeSES{err: errors.New("MessageRejected")}
	n := NewEmailNotifier(aws.NewSESClientWithAPI(api), "activities@mergington.edu", time.Second, logger.NewTestLogger(t))
	before := testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues(statusFailed))

	n.SignupConfirmed(context.Background(), soccerConfirmation())
	require.NoError(t, n.Close(context.Background()))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues(statusFailed)))
}

func TestEmailNotifier_DoesNotBlockCaller(t *testing.T) {
	api := &fakeSES{block: make(chan struct{})}
	n := NewEmailNotifier(aws.NewSESClientWithAPI(api), "activities@mergington.edu", time.Minute, logger.NewTestLogger(t))

	// a cancelled request context must not abort the send
	reqCtx, cancel := context.WithCancel(context.Background())
	n.SignupConfirmed(reqCtx, soccerConfirmation())
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer closeCancel()
	assert.ErrorIs(t, n.Close(closeCtx), context.DeadlineExceeded)

	close(api.block)
	require.NoError(t, n.Close(context.Background()))
	assert.Len(t, api.sent(), 1)
}

func TestNoOp(t *testing.T) {
	var n Notifier = NoOp{}
	n.SignupConfirmed(context.Background(), soccerConfirmation())
	assert.NoError(t, n.Close(context.Background()))
}
