package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"rescueline/utils"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertRecipient identifies one responder to notify.
type AlertRecipient struct {
	ID    primitive.ObjectID
	Name  string
	Phone string
}

// EmergencyAlert carries everything the SMS body needs.
type EmergencyAlert struct {
	UserName          string
	UserPhone         string
	EmergencyType     string
	Description       string
	Address           string
	Latitude          float64
	Longitude         float64
	BloodType         string
	MedicalConditions string
}

// DeliveryOutcome is the per-recipient result of a dispatch. One outcome is
// produced per recipient, in recipient order, regardless of failures.
type DeliveryOutcome struct {
	ResponderID primitive.ObjectID `json:"responderId"`
	Phone       string             `json:"phone"`
	Success     bool               `json:"success"`
	Simulated   bool               `json:"simulated,omitempty"`
	MessageSID  string             `json:"messageSid,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// smsSender is the transport seam; the Twilio client satisfies it in
// production and tests substitute fakes.
type smsSender interface {
	send(to, body string) (sid string, err error)
}

type twilioSender struct {
	client     *twilio.RestClient
	fromNumber string
}

func (ts *twilioSender) send(to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(ts.fromNumber)
	params.SetBody(body)

	resp, err := ts.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	return sid, nil
}

// SMSService delivers emergency alerts over Twilio SMS. When credentials are
// absent the service runs in simulated mode: every dispatch still completes
// and reports per-recipient outcomes, all unsuccessful and marked simulated.
type SMSService struct {
	sender      smsSender
	sendTimeout time.Duration
}

func NewSMSService(accountSID, authToken, fromNumber string) *SMSService {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		logrus.Warn("Twilio credentials not configured, SMS dispatch will run in simulated mode")
		return &SMSService{sendTimeout: defaultSendTimeout}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &SMSService{
		sender:      &twilioSender{client: client, fromNumber: fromNumber},
		sendTimeout: defaultSendTimeout,
	}
}

const defaultSendTimeout = 15 * time.Second

// NotifyAll dispatches the alert to every recipient concurrently. Deliveries
// are independent: a slow or failing send for one recipient never blocks or
// fails another's. The outcome slice always has one entry per recipient, in
// the same order.
func (ss *SMSService) NotifyAll(ctx context.Context, recipients []AlertRecipient, alert EmergencyAlert) []DeliveryOutcome {
	outcomes := make([]DeliveryOutcome, len(recipients))
	if len(recipients) == 0 {
		return outcomes
	}

	body := FormatEmergencyAlert(alert)

	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient AlertRecipient) {
			defer wg.Done()
			outcomes[i] = ss.sendOne(ctx, recipient, body)
		}(i, recipient)
	}
	wg.Wait()

	return outcomes
}

func (ss *SMSService) sendOne(ctx context.Context, recipient AlertRecipient, body string) DeliveryOutcome {
	outcome := DeliveryOutcome{
		ResponderID: recipient.ID,
		Phone:       recipient.Phone,
	}

	if ss.sender == nil {
		outcome.Simulated = true
		outcome.Error = "SMS not sent - transport not configured"
		return outcome
	}

	type sendResult struct {
		sid string
		err error
	}
	done := make(chan sendResult, 1)
	go func() {
		sid, err := ss.sender.send(recipient.Phone, body)
		done <- sendResult{sid: sid, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			logrus.Errorf("Failed to send SMS to %s: %v", recipient.Phone, res.err)
			outcome.Error = res.err.Error()
			return outcome
		}
		outcome.Success = true
		outcome.MessageSID = res.sid
		logrus.Infof("SMS sent to %s - SID: %s", recipient.Phone, res.sid)
	case <-time.After(ss.sendTimeout):
		logrus.Errorf("SMS send to %s timed out", recipient.Phone)
		outcome.Error = "send timed out"
	case <-ctx.Done():
		outcome.Error = ctx.Err().Error()
	}

	return outcome
}

// FormatEmergencyAlert composes the alert SMS body. Medical details are
// appended only when the requester's profile provides them.
func FormatEmergencyAlert(alert EmergencyAlert) string {
	var b strings.Builder

	b.WriteString("🚨 EMERGENCY ALERT 🚨\n\n")
	fmt.Fprintf(&b, "Person: %s\n", alert.UserName)
	fmt.Fprintf(&b, "Phone: %s\n", alert.UserPhone)
	fmt.Fprintf(&b, "Type: %s\n", strings.ToUpper(alert.EmergencyType))
	fmt.Fprintf(&b, "Details: %s\n\n", alert.Description)

	address := alert.Address
	if address == "" {
		address = "Address not available"
	}
	fmt.Fprintf(&b, "Location: %s\n", address)
	fmt.Fprintf(&b, "Map: %s\n", utils.MapsLink(alert.Latitude, alert.Longitude))

	if alert.BloodType != "" {
		fmt.Fprintf(&b, "\nBlood Type: %s\n", alert.BloodType)
	}
	if alert.MedicalConditions != "" {
		fmt.Fprintf(&b, "Medical Conditions: %s\n", alert.MedicalConditions)
	}

	b.WriteString("\nPlease respond immediately if you can help.")

	return b.String()
}
