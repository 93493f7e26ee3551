// internal/notifier/notifier.go
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"activities-api/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

// Notifier reports roster changes. Implementations must never fail the
// calling request: delivery problems are logged and swallowed.
type Notifier interface {
	SignupConfirmed(ctx context.Context, activity, email string)
	Unregistered(ctx context.Context, activity, email string)
}

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Config controls which notification channels are active.
type Config struct {
	EmailEnabled  bool
	FromEmail     string
	EventsEnabled bool
	TopicARN      string
	AWSRegion     string
}

// AWSNotifier sends a confirmation email to the participant on signup and
// publishes roster-change events to an SNS topic for downstream consumers.
type AWSNotifier struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func New(ctx context.Context, config *Config, log logger.Logger) (*AWSNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &AWSNotifier{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
	}, nil
}

// NewWithClients builds a notifier over pre-built clients. Used by tests.
func NewWithClients(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *AWSNotifier {
	return &AWSNotifier{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

func (n *AWSNotifier) SignupConfirmed(ctx context.Context, activity, email string) {
	if n.config.EmailEnabled {
		n.sendConfirmationEmail(ctx, activity, email)
	}
	if n.config.EventsEnabled {
		n.publishEvent(ctx, "activity.signup", activity, email)
	}
}

func (n *AWSNotifier) Unregistered(ctx context.Context, activity, email string) {
	if n.config.EventsEnabled {
		n.publishEvent(ctx, "activity.unregister", activity, email)
	}
}

func (n *AWSNotifier) sendConfirmationEmail(ctx context.Context, activity, email string) {
	subject := fmt.Sprintf("You're signed up for %s", activity)
	body := fmt.Sprintf(
		"Hi,\n\nYour signup for %s is confirmed. See the activity schedule on the school activities page.\n\nMergington High School",
		activity,
	)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.config.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		n.logger.Warn("confirmation email failed", map[string]interface{}{
			"activity": activity,
			"email":    email,
			"error":    err.Error(),
		})
		return
	}

	n.logger.Info("confirmation email sent", map[string]interface{}{
		"activity": activity,
		"email":    email,
	})
}

type rosterEvent struct {
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Activity  string `json:"activity"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

func (n *AWSNotifier) publishEvent(ctx context.Context, eventType, activity, email string) {
	payload, err := json.Marshal(rosterEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Activity:  activity,
		Email:     email,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		n.logger.Warn("roster event encode failed", map[string]interface{}{
			"eventType": eventType,
			"error":     err.Error(),
		})
		return
	}

	_, err = n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		n.logger.Warn("roster event publish failed", map[string]interface{}{
			"eventType": eventType,
			"activity":  activity,
			"error":     err.Error(),
		})
		return
	}

	n.logger.Debug("roster event published", map[string]interface{}{
		"eventType": eventType,
		"activity":  activity,
	})
}

// Noop is the default notifier when no channels are configured.
type Noop struct{}

func (Noop) SignupConfirmed(ctx context.Context, activity, email string) {}
func (Noop) Unregistered(ctx context.Context, activity, email string)   {}
