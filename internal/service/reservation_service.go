package service

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"villamarea/internal/apperrors"
	"villamarea/internal/auth"
	"villamarea/internal/config"
	"villamarea/internal/db"
	"villamarea/internal/entities"
	"villamarea/internal/repository"
)

const dateLayout = "2006-01-02"

// ReservationService owns the reservation lifecycle. Every transition
// writes a structured audit event; the two transitions that claim dates
// (payment verification and rebooking approval) run their overlap check
// and status update in a single transaction.
type ReservationService struct {
	Repo     *repository.ReservationRepository
	Events   *repository.EventRepository
	payments *PaymentService
	notifier *NotifyService
	booking  config.BookingConfig
}

func NewReservationService(
	repo *repository.ReservationRepository,
	events *repository.EventRepository,
	payments *PaymentService,
	notifier *NotifyService,
	booking config.BookingConfig,
) *ReservationService {
	return &ReservationService{
		Repo:     repo,
		Events:   events,
		payments: payments,
		notifier: notifier,
		booking:  booking,
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.Invalid(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return d, nil
}

func newReservationCode() string {
	return "RSV-" + strings.ToUpper(uuid.NewString()[:8])
}

func eventDetail(fields map[string]interface{}) []byte {
	if len(fields) == 0 {
		return nil
	}
	detail, err := json.Marshal(fields)
	if err != nil {
		logrus.Warnf("Failed to marshal event detail: %v", err)
		return nil
	}
	return detail
}

// CheckAvailability is the public, non-locking probe. The authoritative
// check happens again inside the confirming transaction.
func (s *ReservationService) CheckAvailability(req *entities.AvailabilityRequest) (*entities.AvailabilityResponse, error) {
	checkIn, err := parseDate(req.CheckInDate)
	if err != nil {
		return nil, err
	}
	checkOut, err := parseDate(req.CheckOutDate)
	if err != nil {
		return nil, err
	}
	if checkOut.Before(checkIn) {
		return nil, apperrors.Invalid("check_out_date must not be before check_in_date")
	}

	count, err := s.Repo.CountActiveOverlap(0, checkIn, rangeEnd(checkIn, checkOut))
	if err != nil {
		logrus.Errorf("Availability check failed: %v", err)
		return nil, err
	}

	resp := &entities.AvailabilityResponse{
		Available:    count == 0,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
	}
	if count > 0 {
		resp.Message = "The requested dates are already taken"
	}
	return resp, nil
}

// CreateBooking creates the reservation in pending_payment and opens a
// Stripe checkout session for the downpayment.
func (s *ReservationService) CreateBooking(req *entities.BookingRequest) (*entities.BookingResponse, error) {
	checkIn, err := parseDate(req.CheckInDate)
	if err != nil {
		return nil, err
	}
	checkOut, err := parseDate(req.CheckOutDate)
	if err != nil {
		return nil, err
	}
	if checkOut.Before(checkIn) {
		return nil, apperrors.Invalid("check_out_date must not be before check_in_date")
	}
	if req.BookingType != db.BookingDaytime && !checkOut.After(checkIn) {
		return nil, apperrors.Invalid("check_out_date must be after check_in_date for overnight bookings")
	}

	count, err := s.Repo.CountActiveOverlap(0, checkIn, rangeEnd(checkIn, checkOut))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.Conflict("The requested dates are already taken")
	}

	total := s.rateFor(req.BookingType) * StayUnits(checkIn, rangeEnd(checkIn, checkOut))
	downpayment := total * s.booking.DownpaymentPercent / 100

	reservation := &db.Reservation{
		Code:              newReservationCode(),
		GuestName:         req.GuestName,
		GuestEmail:        req.GuestEmail,
		GuestPhone:        req.GuestPhone,
		BookingType:       req.BookingType,
		CheckInDate:       checkIn,
		CheckOutDate:      checkOut,
		CheckInTime:       req.CheckInTime,
		Status:            db.StatusPendingPayment,
		TotalAmount:       total,
		DownpaymentAmount: downpayment,
		RemainingBalance:  total - downpayment,
	}

	resp := &entities.BookingResponse{
		Code:              reservation.Code,
		Status:            reservation.Status,
		TotalAmount:       total,
		DownpaymentAmount: downpayment,
		RemainingBalance:  total - downpayment,
	}

	if err := s.Repo.Create(reservation); err != nil {
		logrus.Errorf("Failed to create reservation: %v", err)
		return nil, err
	}

	// The session is opened only after the row exists, so an insert
	// failure cannot strand a live checkout session.
	if s.payments.Enabled() {
		url, sessionID, err := s.payments.CreateDownpaymentSession(downpayment, reservation.Code, req.GuestEmail)
		if err != nil {
			logrus.Errorf("Failed to create checkout session for %s: %v", reservation.Code, err)
			return nil, err
		}
		if err := s.Repo.SetStripeSession(reservation.ID, sessionID); err != nil {
			logrus.Errorf("Failed to attach checkout session to %s: %v", reservation.Code, err)
			return nil, err
		}
		reservation.StripeSessionID = nullString(sessionID)
		resp.CheckoutURL = url
		resp.SessionID = sessionID
	}

	detail := eventDetail(map[string]interface{}{
		"booking_type":  req.BookingType,
		"check_in":      req.CheckInDate,
		"check_out":     req.CheckOutDate,
		"total_amount":  total,
		"downpayment":   downpayment,
	})
	if err := s.Events.Insert(reservation.ID, guestActor(req.GuestEmail), "reservation_created", detail); err != nil {
		logrus.Warnf("Failed to record creation event for %s: %v", reservation.Code, err)
	}

	return resp, nil
}

func (s *ReservationService) GetByCodeAndEmail(code, email string) (*db.Reservation, error) {
	res, err := s.Repo.GetByCodeAndEmail(code, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Reservation not found")
		}
		return nil, err
	}
	return res, nil
}

func (s *ReservationService) GetBySessionID(sessionID string) (*db.Reservation, error) {
	res, err := s.Repo.GetByStripeSessionID(sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Reservation not found")
		}
		return nil, err
	}
	return res, nil
}

func (s *ReservationService) GetByID(id int) (*db.Reservation, error) {
	res, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Reservation not found")
		}
		return nil, err
	}
	return res, nil
}

func (s *ReservationService) List(status, date, guestEmail string) ([]db.Reservation, error) {
	return s.Repo.List(status, date, guestEmail)
}

func (s *ReservationService) ListEvents(reservationID int) ([]db.ReservationEvent, error) {
	if _, err := s.GetByID(reservationID); err != nil {
		return nil, err
	}
	return s.Events.ListByReservation(reservationID)
}

// RequestRebooking records a guest's date-change request on the row.
func (s *ReservationService) RequestRebooking(code string, req *entities.RebookingRequest) error {
	res, err := s.GetByCodeAndEmail(code, req.GuestEmail)
	if err != nil {
		return err
	}
	if res.Status != db.StatusConfirmed {
		return apperrors.Invalid("Only confirmed reservations can be rebooked")
	}

	newIn, err := parseDate(req.NewCheckInDate)
	if err != nil {
		return err
	}
	newOut, err := parseDate(req.NewCheckOutDate)
	if err != nil {
		return err
	}
	if newOut.Before(newIn) {
		return apperrors.Invalid("new_check_out_date must not be before new_check_in_date")
	}

	if err := s.Repo.RequestRebooking(res.ID, newIn, newOut); err != nil {
		return mapStateError(err)
	}

	detail := eventDetail(map[string]interface{}{
		"new_check_in":  req.NewCheckInDate,
		"new_check_out": req.NewCheckOutDate,
	})
	if err := s.Events.Insert(res.ID, guestActor(req.GuestEmail), "rebooking_requested", detail); err != nil {
		logrus.Warnf("Failed to record rebooking request event for %s: %v", code, err)
	}
	return nil
}

// VerifyPayment is the admin confirmation that a payment proof is valid.
// Verifying the downpayment confirms the reservation and locks its dates;
// the overlap re-check and the update commit atomically.
func (s *ReservationService) VerifyPayment(id int, paymentType string, actor auth.Principal) (*db.Reservation, error) {
	res, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if paymentType == "full" {
		if err := s.Repo.VerifyFullPayment(id); err != nil {
			return nil, mapStateError(err)
		}
		if err := s.Events.Insert(id, actor.Email, "full_payment_verified", nil); err != nil {
			logrus.Warnf("Failed to record full payment event for %s: %v", res.Code, err)
		}
		return s.GetByID(id)
	}

	if res.Status != db.StatusPendingPayment && res.Status != db.StatusPendingConfirmation {
		return nil, apperrors.Invalid("Reservation is not awaiting payment verification")
	}

	lockedUntil, err := ExpectedCheckout(res.BookingType, res.CheckInDate, res.CheckOutDate, res.CheckInTime)
	if err != nil {
		return nil, err
	}

	err = s.withOverlapLock(id, res.CheckInDate, rangeEnd(res.CheckInDate, res.CheckOutDate), func(tx *sql.Tx) error {
		if err := s.Repo.VerifyDownpaymentTx(tx, id, lockedUntil); err != nil {
			return mapStateError(err)
		}
		return s.Events.InsertTx(tx, id, actor.Email, "downpayment_verified", eventDetail(map[string]interface{}{
			"locked_until": lockedUntil.Format(dateLayout),
		}))
	})
	if err != nil {
		return nil, err
	}

	confirmed, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.notifier.ReservationStatusChanged(confirmed, "confirmed")
	return confirmed, nil
}

// ApproveRebooking re-validates the requested range against locked
// reservations and moves the stay in the same transaction.
func (s *ReservationService) ApproveRebooking(id int, actor auth.Principal) (*db.Reservation, error) {
	res, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !res.RebookingRequested || res.RebookingApproved.Valid {
		return nil, apperrors.Invalid("Reservation has no pending rebooking request")
	}
	if !res.RebookingNewCheckIn.Valid || !res.RebookingNewCheckOut.Valid {
		return nil, apperrors.Invalid("Rebooking request has no dates")
	}

	newIn := res.RebookingNewCheckIn.Time
	newOut := res.RebookingNewCheckOut.Time
	lockedUntil, err := ExpectedCheckout(res.BookingType, newIn, newOut, res.CheckInTime)
	if err != nil {
		return nil, err
	}

	err = s.withOverlapLock(id, newIn, rangeEnd(newIn, newOut), func(tx *sql.Tx) error {
		if err := s.Repo.ApplyRebookingTx(tx, id, newIn, newOut, lockedUntil); err != nil {
			return mapStateError(err)
		}
		return s.Events.InsertTx(tx, id, actor.Email, "rebooking_approved", eventDetail(map[string]interface{}{
			"new_check_in":  newIn.Format(dateLayout),
			"new_check_out": newOut.Format(dateLayout),
		}))
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.notifier.ReservationStatusChanged(updated, "rebooked")
	return updated, nil
}

func (s *ReservationService) RejectRebooking(id int, actor auth.Principal) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	if err := s.Repo.RejectRebooking(id); err != nil {
		return mapStateError(err)
	}
	if err := s.Events.Insert(id, actor.Email, "rebooking_rejected", nil); err != nil {
		logrus.Warnf("Failed to record rebooking rejection event for %d: %v", id, err)
	}
	return nil
}

// CheckIn moves a confirmed reservation to checked_in and records the
// security bond collected at the desk.
func (s *ReservationService) CheckIn(id, securityBond int, actor auth.Principal) error {
	res, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if res.Status != db.StatusConfirmed {
		return apperrors.Invalid("Only confirmed reservations can be checked in")
	}
	if securityBond == 0 {
		securityBond = s.booking.SecurityBond
	}
	if err := s.Repo.CheckIn(id, securityBond, time.Now().UTC()); err != nil {
		return mapStateError(err)
	}
	if err := s.Events.Insert(id, actor.Email, "checked_in", eventDetail(map[string]interface{}{
		"security_bond": securityBond,
	})); err != nil {
		logrus.Warnf("Failed to record check-in event for %s: %v", res.Code, err)
	}
	return nil
}

// CheckOut settles the stay: overtime past the expected checkout is
// charged per started hour, damage charges are added, and the bond is
// returned minus damages.
func (s *ReservationService) CheckOut(id, damageCharges int, notes string, actor auth.Principal) (*entities.CheckOutResult, error) {
	res, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if res.Status != db.StatusCheckedIn {
		return nil, apperrors.Invalid("Only checked-in reservations can be checked out")
	}

	expected, err := ExpectedCheckout(res.BookingType, res.CheckInDate, res.CheckOutDate, res.CheckInTime)
	if err != nil {
		return nil, err
	}
	actual := time.Now().UTC()

	overtimeHours := OvertimeHours(expected, actual)
	overtimeCharges := overtimeHours * s.booking.OvertimeHourlyRate
	finalAmount := res.TotalAmount + overtimeCharges + damageCharges
	bondReturned := BondReturn(res.SecurityBond, damageCharges)

	update := repository.CheckOutUpdate{
		OvertimeHours:   overtimeHours,
		OvertimeCharges: overtimeCharges,
		DamageCharges:   damageCharges,
		FinalAmount:     finalAmount,
		BondReturned:    bondReturned,
		At:              actual,
	}
	if err := s.Repo.CheckOut(id, update); err != nil {
		return nil, mapStateError(err)
	}
	if notes != "" {
		if err := s.Repo.UpdateGuestInfo(id, "", "", "", notes); err != nil {
			logrus.Warnf("Failed to save check-out notes for %s: %v", res.Code, err)
		}
	}
	if err := s.Events.Insert(id, actor.Email, "checked_out", eventDetail(map[string]interface{}{
		"overtime_hours":   overtimeHours,
		"overtime_charges": overtimeCharges,
		"damage_charges":   damageCharges,
		"final_amount":     finalAmount,
		"bond_returned":    bondReturned,
	})); err != nil {
		logrus.Warnf("Failed to record check-out event for %s: %v", res.Code, err)
	}

	return &entities.CheckOutResult{
		Code:             res.Code,
		ExpectedCheckOut: expected.Format(time.RFC3339),
		ActualCheckOut:   actual.Format(time.RFC3339),
		OvertimeHours:    overtimeHours,
		OvertimeCharges:  overtimeCharges,
		DamageCharges:    damageCharges,
		FinalAmount:      finalAmount,
		BondReturned:     bondReturned,
	}, nil
}

// MarkNoShow forfeits a confirmed reservation after the grace window past
// the expected check-in has elapsed.
func (s *ReservationService) MarkNoShow(id int, actor auth.Principal) error {
	res, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if res.Status != db.StatusConfirmed {
		return apperrors.Invalid("Only confirmed reservations can be marked as no-show")
	}

	expectedArrival, err := CombineDateTime(res.CheckInDate, res.CheckInTime)
	if err != nil {
		return err
	}
	graceEnd := expectedArrival.Add(time.Duration(s.booking.NoShowGraceHours) * time.Hour)
	if time.Now().UTC().Before(graceEnd) {
		return apperrors.Invalid("Grace period has not elapsed yet")
	}

	if err := s.Repo.MarkNoShow(id); err != nil {
		return mapStateError(err)
	}
	if err := s.Events.Insert(id, actor.Email, "marked_no_show", eventDetail(map[string]interface{}{
		"downpayment_forfeited": res.DownpaymentAmount,
	})); err != nil {
		logrus.Warnf("Failed to record no-show event for %s: %v", res.Code, err)
	}
	return nil
}

// Cancel ends the reservation and unlocks its dates. When requested and
// an online payment exists, the downpayment is refunded through Stripe.
func (s *ReservationService) Cancel(id int, refund bool, reason string, actor auth.Principal) error {
	res, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.Repo.Cancel(id); err != nil {
		return mapStateError(err)
	}

	if refund && res.StripeSessionID.Valid && s.payments.Enabled() {
		if err := s.payments.RefundBySessionID(res.StripeSessionID.String); err != nil {
			logrus.Errorf("Refund failed for %s: %v", res.Code, err)
		}
	}

	if err := s.Events.Insert(id, actor.Email, "canceled", eventDetail(map[string]interface{}{
		"refund": refund,
		"reason": reason,
	})); err != nil {
		logrus.Warnf("Failed to record cancellation event for %s: %v", res.Code, err)
	}
	s.notifier.ReservationStatusChanged(res, "canceled")
	return nil
}

func (s *ReservationService) UpdateGuestInfo(id int, req *entities.AdminReservationUpdate, actor auth.Principal) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	if err := s.Repo.UpdateGuestInfo(id, req.GuestName, req.GuestEmail, req.GuestPhone, req.AdminNotes); err != nil {
		return mapStateError(err)
	}
	if err := s.Events.Insert(id, actor.Email, "reservation_updated", nil); err != nil {
		logrus.Warnf("Failed to record update event for %d: %v", id, err)
	}
	return nil
}

// MarkDownpaymentPaidBySession is called from the Stripe webhook when a
// checkout session completes.
func (s *ReservationService) MarkDownpaymentPaidBySession(sessionID, paymentIntentID string) error {
	id, err := s.Repo.MarkDownpaymentPaidBySession(sessionID, paymentIntentID)
	if err != nil {
		return err
	}
	if err := s.Events.Insert(id, systemActorName, "downpayment_paid", eventDetail(map[string]interface{}{
		"stripe_session_id": sessionID,
	})); err != nil {
		logrus.Warnf("Failed to record downpayment event for session %s: %v", sessionID, err)
	}
	return nil
}

// CancelByPaymentIntent is called from the Stripe webhook on refunds.
func (s *ReservationService) CancelByPaymentIntent(paymentIntentID string) error {
	id, err := s.Repo.CancelByPaymentIntent(paymentIntentID)
	if err != nil {
		return err
	}
	if err := s.Events.Insert(id, systemActorName, "canceled", eventDetail(map[string]interface{}{
		"reason": "charge refunded",
	})); err != nil {
		logrus.Warnf("Failed to record refund cancellation for intent %s: %v", paymentIntentID, err)
	}
	return nil
}

const systemActorName = "system"

// withOverlapLock runs fn inside a transaction after row-locking the
// target reservation and every active reservation overlapping the range.
// Any competitor already claiming the range aborts with a conflict before
// fn runs; unclaimed competitors are locked but do not conflict.
func (s *ReservationService) withOverlapLock(id int, checkIn, checkOut time.Time, fn func(tx *sql.Tx) error) error {
	tx, err := s.Repo.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.Repo.GetByIDForUpdate(tx, id); err != nil {
		return err
	}
	overlapping, err := s.Repo.LockOverlapping(tx, id, checkIn, checkOut)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return apperrors.Conflict("The requested dates overlap an existing reservation")
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// rangeEnd widens a same-day range to a one-day range so the half-open
// overlap comparison still excludes other bookings on that date.
func rangeEnd(checkIn, checkOut time.Time) time.Time {
	if checkOut.After(checkIn) {
		return checkOut
	}
	return checkIn.AddDate(0, 0, 1)
}

func (s *ReservationService) rateFor(bookingType string) int {
	switch bookingType {
	case db.BookingNighttime:
		return s.booking.NighttimeRate
	case db.BookingTwentyTwoHr:
		return s.booking.TwentyTwoHourRate
	default:
		return s.booking.DaytimeRate
	}
}

func guestActor(email string) string {
	return "guest:" + email
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mapStateError(err error) error {
	if errors.Is(err, repository.ErrInvalidState) {
		return apperrors.Conflict("Reservation changed state, please reload and retry")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Reservation not found")
	}
	return err
}
