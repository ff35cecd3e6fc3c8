package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubSender struct {
	mu       sync.Mutex
	sent     []string
	failFor  map[string]error
	delayFor map[string]time.Duration
}

func (s *stubSender) send(to, body string) (string, error) {
	if delay, ok := s.delayFor[to]; ok {
		time.Sleep(delay)
	}

	s.mu.Lock()
	s.sent = append(s.sent, to)
	s.mu.Unlock()

	if err, ok := s.failFor[to]; ok {
		return "", err
	}
	return "SM" + to, nil
}

func recipients(phones ...string) []AlertRecipient {
	out := make([]AlertRecipient, len(phones))
	for i, phone := range phones {
		out[i] = AlertRecipient{ID: primitive.NewObjectID(), Name: "r" + phone, Phone: phone}
	}
	return out
}

func testAlert() EmergencyAlert {
	return EmergencyAlert{
		UserName:      "Asha",
		UserPhone:     "+915550100",
		EmergencyType: "medical",
		Description:   "Severe allergic reaction",
		Address:       "12 MG Road",
		Latitude:      12.9716,
		Longitude:     77.5946,
	}
}

func TestNotifyAll(t *testing.T) {
	ctx := context.Background()

	t.Run("one outcome per recipient in order", func(t *testing.T) {
		sender := &stubSender{}
		ss := &SMSService{sender: sender, sendTimeout: time.Second}

		recips := recipients("+911", "+912", "+913")
		outcomes := ss.NotifyAll(ctx, recips, testAlert())

		require.Len(t, outcomes, 3)
		for i, outcome := range outcomes {
			assert.Equal(t, recips[i].ID, outcome.ResponderID)
			assert.Equal(t, recips[i].Phone, outcome.Phone)
			assert.True(t, outcome.Success)
			assert.Equal(t, "SM"+recips[i].Phone, outcome.MessageSID)
		}
	})

	t.Run("a failing send does not affect the others", func(t *testing.T) {
		sender := &stubSender{failFor: map[string]error{
			"+912": errors.New("undeliverable"),
		}}
		ss := &SMSService{sender: sender, sendTimeout: time.Second}

		outcomes := ss.NotifyAll(ctx, recipients("+911", "+912", "+913"), testAlert())

		require.Len(t, outcomes, 3)
		assert.True(t, outcomes[0].Success)
		assert.False(t, outcomes[1].Success)
		assert.Equal(t, "undeliverable", outcomes[1].Error)
		assert.True(t, outcomes[2].Success)
	})

	t.Run("a slow recipient times out without blocking the rest", func(t *testing.T) {
		sender := &stubSender{delayFor: map[string]time.Duration{
			"+912": 500 * time.Millisecond,
		}}
		ss := &SMSService{sender: sender, sendTimeout: 50 * time.Millisecond}

		start := time.Now()
		outcomes := ss.NotifyAll(ctx, recipients("+911", "+912", "+913"), testAlert())
		elapsed := time.Since(start)

		require.Len(t, outcomes, 3)
		assert.True(t, outcomes[0].Success)
		assert.False(t, outcomes[1].Success)
		assert.Equal(t, "send timed out", outcomes[1].Error)
		assert.True(t, outcomes[2].Success)

		// Concurrent fan-out: total time tracks the slowest bounded send,
		// not the sum of all sends.
		assert.Less(t, elapsed, 400*time.Millisecond)
	})

	t.Run("empty recipient list", func(t *testing.T) {
		ss := &SMSService{sender: &stubSender{}, sendTimeout: time.Second}

		outcomes := ss.NotifyAll(ctx, nil, testAlert())
		assert.Empty(t, outcomes)
	})

	t.Run("simulated mode when transport unconfigured", func(t *testing.T) {
		ss := NewSMSService("", "", "")

		outcomes := ss.NotifyAll(ctx, recipients("+911", "+912"), testAlert())

		require.Len(t, outcomes, 2)
		for _, outcome := range outcomes {
			assert.False(t, outcome.Success)
			assert.True(t, outcome.Simulated)
			assert.NotEmpty(t, outcome.Error)
		}
	})
}

func TestFormatEmergencyAlert(t *testing.T) {
	t.Run("includes core fields", func(t *testing.T) {
		body := FormatEmergencyAlert(testAlert())

		assert.Contains(t, body, "EMERGENCY ALERT")
		assert.Contains(t, body, "Asha")
		assert.Contains(t, body, "+915550100")
		assert.Contains(t, body, "MEDICAL")
		assert.Contains(t, body, "Severe allergic reaction")
		assert.Contains(t, body, "12 MG Road")
		assert.Contains(t, body, "https://www.google.com/maps?q=")
		assert.True(t, strings.HasSuffix(body, "Please respond immediately if you can help."))
	})

	t.Run("medical details only when present", func(t *testing.T) {
		alert := testAlert()
		body := FormatEmergencyAlert(alert)
		assert.NotContains(t, body, "Blood Type")

		alert.BloodType = "O-"
		alert.MedicalConditions = "asthma"
		body = FormatEmergencyAlert(alert)
		assert.Contains(t, body, "Blood Type: O-")
		assert.Contains(t, body, "Medical Conditions: asthma")
	})

	t.Run("missing address placeholder", func(t *testing.T) {
		alert := testAlert()
		alert.Address = ""
		body := FormatEmergencyAlert(alert)
		assert.Contains(t, body, "Address not available")
	})
}
