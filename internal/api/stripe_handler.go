package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"villamarea/internal/entities"
	"villamarea/internal/repository"
	"villamarea/internal/service"
)

type StripeWebhookHandler struct {
	webhookSecret string
	reservations  *service.ReservationService
}

func NewStripeWebhookHandler(webhookSecret string, reservations *service.ReservationService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		webhookSecret: webhookSecret,
		reservations:  reservations,
	}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logrus.Errorf("Stripe webhook: error reading body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.webhookSecret)
	if err != nil {
		logrus.Errorf("Stripe webhook: signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			logrus.Errorf("Stripe webhook: error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sess.ID == "" {
			logrus.Error("Stripe webhook: no session ID in checkout.session.completed")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		paymentIntentID := ""
		if sess.PaymentIntent != nil {
			paymentIntentID = sess.PaymentIntent.ID
		}
		if err := h.reservations.MarkDownpaymentPaidBySession(sess.ID, paymentIntentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidState) {
				// Unknown session or already-settled reservation. Ack so
				// Stripe stops retrying.
				logrus.Warnf("Stripe webhook: session %s not applied: %v", sess.ID, err)
				w.WriteHeader(http.StatusOK)
				return
			}
			logrus.Errorf("Stripe webhook: DB error for session %s: %v", sess.ID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			logrus.Errorf("Stripe webhook: error parsing charge: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if charge.PaymentIntent != nil && charge.PaymentIntent.ID != "" {
			if err := h.reservations.CancelByPaymentIntent(charge.PaymentIntent.ID); err != nil {
				if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidState) {
					logrus.Warnf("Stripe webhook: refund for intent %s not applied: %v", charge.PaymentIntent.ID, err)
					w.WriteHeader(http.StatusOK)
					return
				}
				logrus.Errorf("Stripe webhook: DB error for intent %s: %v", charge.PaymentIntent.ID, err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

	default:
		logrus.Debugf("Stripe webhook: unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

// GetReservationBySession lets the post-checkout return page look the
// reservation up by the session it just paid.
func (h *StripeWebhookHandler) GetReservationBySession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	res, err := h.reservations.GetBySessionID(sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entities.FromReservation(res))
}
