package service

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService schedules the reservation maintenance jobs. The same jobs
// are also reachable through the API-key-protected job endpoints for an
// external scheduler.
type CronService struct {
	cron *cron.Cron
	jobs *JobService
}

func NewCronService(jobs *JobService) *CronService {
	return &CronService{cron: cron.New(), jobs: jobs}
}

// Start registers and starts the schedules. Specs use the standard
// five-field cron format.
func (s *CronService) Start(expireSpec, autoCompleteSpec string) error {
	if _, err := s.cron.AddFunc(expireSpec, s.runExpire); err != nil {
		return fmt.Errorf("failed to schedule expiry job: %w", err)
	}
	if _, err := s.cron.AddFunc(autoCompleteSpec, s.runAutoComplete); err != nil {
		return fmt.Errorf("failed to schedule auto-complete job: %w", err)
	}
	s.cron.Start()
	logrus.Infof("Cron service started (expire %q, auto-complete %q)", expireSpec, autoCompleteSpec)
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("Cron service stopped")
}

func (s *CronService) runExpire() {
	if _, err := s.jobs.ExpireReservations(); err != nil {
		logrus.Errorf("Expiry job failed: %v", err)
	}
}

func (s *CronService) runAutoComplete() {
	if _, _, err := s.jobs.AutoCompleteReservations(); err != nil {
		logrus.Errorf("Auto-complete job failed: %v", err)
	}
}
