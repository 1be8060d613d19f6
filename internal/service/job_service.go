package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"villamarea/internal/repository"
)

// JobService runs the two cron-style maintenance jobs over reservations.
// Each row is handled in its own transaction so a single failure is
// logged and skipped instead of aborting the batch.
type JobService struct {
	Repo              *repository.JobRepository
	pendingPaymentTTL time.Duration
}

func NewJobService(repo *repository.JobRepository, pendingPaymentTTL time.Duration) *JobService {
	return &JobService{Repo: repo, pendingPaymentTTL: pendingPaymentTTL}
}

// ExpireReservations expires pending_payment reservations whose payment
// window (creation TTL or date lock) has run out. Returns the number of
// rows expired.
func (s *JobService) ExpireReservations() (int, error) {
	cutoff := time.Now().UTC().Add(-s.pendingPaymentTTL)
	ids, err := s.Repo.GetExpirablePendingIDs(cutoff)
	if err != nil {
		return 0, fmt.Errorf("expiry job: failed to list expirable reservations: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	expired := 0
	for _, id := range ids {
		if err := s.Repo.ExpireOne(id); err != nil {
			logrus.Errorf("Expiry job: reservation %d skipped: %v", id, err)
			continue
		}
		expired++
	}
	logrus.Infof("Expiry job: expired %d of %d reservations", expired, len(ids))
	return expired, nil
}

// AutoCompleteReservations settles stays whose dates have passed:
// confirmed and fully paid stays become completed, overdue checked-in
// stays become checked_out. Returns (completed, checkedOut).
func (s *JobService) AutoCompleteReservations() (int, int, error) {
	completable, err := s.Repo.GetCompletableConfirmedIDs()
	if err != nil {
		return 0, 0, fmt.Errorf("auto-complete job: failed to list completable reservations: %w", err)
	}
	completed := 0
	for _, id := range completable {
		if err := s.Repo.CompleteOne(id); err != nil {
			logrus.Errorf("Auto-complete job: reservation %d skipped: %v", id, err)
			continue
		}
		completed++
	}

	overdue, err := s.Repo.GetOverdueCheckedInIDs()
	if err != nil {
		return completed, 0, fmt.Errorf("auto-complete job: failed to list overdue stays: %w", err)
	}
	checkedOut := 0
	for _, id := range overdue {
		if err := s.Repo.MarkCheckedOutOne(id); err != nil {
			logrus.Errorf("Auto-complete job: reservation %d skipped: %v", id, err)
			continue
		}
		checkedOut++
	}

	logrus.Infof("Auto-complete job: completed %d, checked out %d", completed, checkedOut)
	return completed, checkedOut, nil
}
