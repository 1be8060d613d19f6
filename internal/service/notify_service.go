package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"villamarea/internal/db"
)

// NotifyService sends guest-facing email and SMS. Delivery is
// fire-and-forget: a failed send is logged and never fails the
// transition that triggered it.
type NotifyService struct{}

func NewNotifyService() *NotifyService {
	return &NotifyService{}
}

// ReservationStatusChanged notifies the guest about a lifecycle change.
func (s *NotifyService) ReservationStatusChanged(res *db.Reservation, status string) {
	subject := fmt.Sprintf("Your Villa Marea reservation is %s - Code: %s", status, res.Code)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour reservation at Villa Marea is %s.\n\n"+
			"Reservation Details:\n"+
			"Reservation Code: %s\n"+
			"Booking Type: %s\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n\n"+
			"Thank you for choosing Villa Marea.",
		res.GuestName, status, res.Code, res.BookingType,
		res.CheckInDate.Format("02 Jan 2006"), res.CheckOutDate.Format("02 Jan 2006"),
	)
	sms := fmt.Sprintf("Villa Marea: Reservation %s is %s. Check-in: %s. Details in your email.",
		res.Code, status, res.CheckInDate.Format("02/01"))

	go func() {
		if err := sendEmailWithSendGrid(res.GuestEmail, res.GuestName, subject, body); err != nil {
			logrus.Warnf("Email for reservation %s not sent: %v", res.Code, err)
		}
	}()
	go func() {
		if err := sendSMS(res.GuestPhone, sms); err != nil {
			logrus.Warnf("SMS for reservation %s not sent: %v", res.Code, err)
		}
	}()
}

func sendEmailWithSendGrid(toEmail, toName, subject, plainBody string) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not configured")
	}
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL is not configured")
	}
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Villa Marea"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainBody, "")

	client := sendgrid.NewSendClient(apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func sendSMS(toNumber, messageBody string) error {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	fromNumber := os.Getenv("TWILIO_FROM_NUMBER")

	if accountSid == "" || authToken == "" || fromNumber == "" {
		return fmt.Errorf("Twilio credentials are not fully configured")
	}
	if !strings.HasPrefix(toNumber, "+") {
		logrus.Warnf("Destination number %q is not E.164, SMS may fail", toNumber)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(fromNumber)
	params.SetBody(messageBody)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}
