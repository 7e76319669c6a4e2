// Package notify sends signup confirmations to students.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mergington-activities/internal/activities"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
)

const (
	statusSent   = "sent"
	statusFailed = "failed"
)

// Notifier is told about every successful signup. Implementations must not
// block the caller.
type Notifier interface {
	SignupConfirmed(ctx context.Context, conf *activities.Confirmation)
	// Close waits for in-flight notifications or until ctx is done.
	Close(ctx context.Context) error
}

// Sender delivers one plain-text email. *aws.SESClient implements it.
type Sender interface {
	SendText(ctx context.Context, from, to, subject, body string) (string, error)
}

type EmailNotifier struct {
	sender  Sender
	from    string
	timeout time.Duration
	logger  logger.Logger
	wg      sync.WaitGroup
}

func NewEmailNotifier(sender Sender, from string, timeout time.Duration, log logger.Logger) *EmailNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EmailNotifier{
		sender:  sender,
		from:    from,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "email-notifier"}),
	}
}

// SignupConfirmed sends the confirmation in the background. The request
// context is not used for the send since it ends with the response.
func (n *EmailNotifier) SignupConfirmed(_ context.Context, conf *activities.Confirmation) {
	subject, body := Compose(conf)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		messageID, err := n.sender.SendText(ctx, n.from, conf.Email, subject, body)
		if err != nil {
			metrics.NotificationsSent.WithLabelValues(statusFailed).Inc()
			n.logger.Error("failed to send signup confirmation", map[string]interface{}{
				"activity": conf.Activity.Name,
				"email":    conf.Email,
				"error":    err,
			})
			return
		}

		metrics.NotificationsSent.WithLabelValues(statusSent).Inc()
		n.logger.Info("signup confirmation sent", map[string]interface{}{
			"activity":  conf.Activity.Name,
			"email":     conf.Email,
			"messageId": messageID,
		})
	}()
}

func (n *EmailNotifier) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Compose builds the confirmation subject and body.
func Compose(conf *activities.Confirmation) (subject, body string) {
	a := conf.Activity
	subject = fmt.Sprintf("Signed up for %s", a.Name)
	body = fmt.Sprintf(
		"Hi %s,\n\n%s.\n\n%s\nSchedule: %s\n\nMergington High School Extracurricular Activities\n",
		conf.Email, conf.Message, a.Description, a.Schedule,
	)
	return subject, body
}

// NoOp discards notifications. Used when email is disabled.
type NoOp struct{}

func (NoOp) SignupConfirmed(context.Context, *activities.Confirmation) {}

func (NoOp) Close(context.Context) error { return nil }
