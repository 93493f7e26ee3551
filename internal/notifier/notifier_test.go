// internal/notifier/notifier_test.go
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"activities-api/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

func newTestNotifier(config *Config) (*AWSNotifier, *mockSES, *mockSNS) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewWithClients(config, sesMock, snsMock, logger.NewNoOpLogger())
	return n, sesMock, snsMock
}

// ==========================
// Tests
// ==========================

func TestSignupConfirmed_EmailAndEvent(t *testing.T) {
	n, sesMock, snsMock := newTestNotifier(&Config{
		EmailEnabled:  true,
		FromEmail:     "activities@mergington.edu",
		EventsEnabled: true,
		TopicARN:      "arn:aws:sns:us-east-1:123456789012:roster-events",
	})

	n.SignupConfirmed(context.Background(), "Chess Club", "test.student@mergington.edu")

	require.Len(t, sesMock.inputs, 1)
	email := sesMock.inputs[0]
	assert.Equal(t, "activities@mergington.edu", *email.Source)
	assert.Equal(t, []string{"test.student@mergington.edu"}, email.Destination.ToAddresses)
	assert.Contains(t, *email.Message.Subject.Data, "Chess Club")

	require.Len(t, snsMock.inputs, 1)
	var event rosterEvent
	require.NoError(t, json.Unmarshal([]byte(*snsMock.inputs[0].Message), &event))
	assert.Equal(t, "activity.signup", event.EventType)
	assert.Equal(t, "Chess Club", event.Activity)
	assert.Equal(t, "test.student@mergington.edu", event.Email)
	assert.NotEmpty(t, event.EventID)
}

func TestSignupConfirmed_ChannelsDisabled(t *testing.T) {
	n, sesMock, snsMock := newTestNotifier(&Config{})

	n.SignupConfirmed(context.Background(), "Chess Club", "test.student@mergington.edu")

	assert.Empty(t, sesMock.inputs)
	assert.Empty(t, snsMock.inputs)
}

func TestSignupConfirmed_DeliveryFailureIsSwallowed(t *testing.T) {
	n, sesMock, snsMock := newTestNotifier(&Config{
		EmailEnabled:  true,
		FromEmail:     "activities@mergington.edu",
		EventsEnabled: true,
		TopicARN:      "arn:aws:sns:us-east-1:123456789012:roster-events",
	})
	sesMock.err = errors.New("ses throttled")
	snsMock.err = errors.New("topic gone")

	// Must not panic or propagate; failures are log-only.
	n.SignupConfirmed(context.Background(), "Chess Club", "test.student@mergington.edu")
}

func TestUnregistered_PublishesEventOnly(t *testing.T) {
	n, sesMock, snsMock := newTestNotifier(&Config{
		EmailEnabled:  true,
		FromEmail:     "activities@mergington.edu",
		EventsEnabled: true,
		TopicARN:      "arn:aws:sns:us-east-1:123456789012:roster-events",
	})

	n.Unregistered(context.Background(), "Drama Club", "temp.student@mergington.edu")

	assert.Empty(t, sesMock.inputs, "unregister sends no email")
	require.Len(t, snsMock.inputs, 1)

	var event rosterEvent
	require.NoError(t, json.Unmarshal([]byte(*snsMock.inputs[0].Message), &event))
	assert.Equal(t, "activity.unregister", event.EventType)
}
