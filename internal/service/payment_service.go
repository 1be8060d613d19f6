package service

import (
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/refund"

	"villamarea/internal/config"
)

// PaymentService wraps Stripe Checkout for the downpayment flow. When no
// secret key is configured (local development), Enabled reports false and
// bookings are created without a checkout session.
type PaymentService struct {
	cfg config.StripeConfig
}

func NewPaymentService(cfg config.StripeConfig) *PaymentService {
	if cfg.SecretKey != "" {
		stripe.Key = cfg.SecretKey
	}
	return &PaymentService{cfg: cfg}
}

func (s *PaymentService) Enabled() bool {
	return s.cfg.SecretKey != ""
}

// CreateDownpaymentSession opens a checkout session for the downpayment.
// Amounts are whole currency units; Stripe wants the minor unit.
func (s *PaymentService) CreateDownpaymentSession(amount int, code, guestEmail string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(guestEmail),
		SuccessURL:    stripe.String(s.cfg.SuccessURL),
		CancelURL:     stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Reservation downpayment " + code),
					},
					UnitAmount: stripe.Int64(int64(amount) * 100),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("reservation_code", code)

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("error creating checkout session: %w", err)
	}
	return sess.URL, sess.ID, nil
}

// RefundBySessionID refunds the payment behind a checkout session.
func (s *PaymentService) RefundBySessionID(sessionID string) error {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return fmt.Errorf("error fetching checkout session: %w", err)
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return fmt.Errorf("no payment intent found for session %s", sessionID)
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	}
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("error creating refund: %w", err)
	}
	return nil
}
