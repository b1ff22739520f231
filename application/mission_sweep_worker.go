package application

import (
	"context"
	"fmt"
	"time"

	"tapown/config"
	"tapown/domain/entities"
	"tapown/domain/interfaces"
	"tapown/domain/services"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MissionSweepWorker resolves delayed mission claims once their waiting
// window has passed. Each sweep snapshots the due claims, verifies membership
// outside any transaction, and pays each verified claim in its own
// transaction guarded against double resolution.
type MissionSweepWorker struct {
	uowFactory UnitOfWorkFactory
	verifier   interfaces.MembershipVerifier
	catalog    *entities.MissionCatalog
	cfg        *config.Config
}

// NewMissionSweepWorker creates a new mission sweep worker
func NewMissionSweepWorker(
	uowFactory UnitOfWorkFactory,
	verifier interfaces.MembershipVerifier,
	catalog *entities.MissionCatalog,
	cfg *config.Config,
) *MissionSweepWorker {
	return &MissionSweepWorker{
		uowFactory: uowFactory,
		verifier:   verifier,
		catalog:    catalog,
		cfg:        cfg,
	}
}

// Start begins the sweep loop and returns a stop function
func (w *MissionSweepWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithField("interval", w.cfg.SweepInterval).Info("Mission sweep worker started")

		ticker := time.NewTicker(w.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Mission sweep worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Mission sweep worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				if err := w.Sweep(ctx, time.Now()); err != nil {
					log.WithError(err).Error("Mission sweep failed")
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// Sweep runs one pass over the due pending missions
func (w *MissionSweepWorker) Sweep(ctx context.Context, now time.Time) error {
	runID := uuid.New().String()
	logger := log.WithField("sweepRun", runID)

	due, err := w.snapshotDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to snapshot due missions: %w", err)
	}
	if len(due) == 0 {
		logger.Debug("No due pending missions")
		return nil
	}

	logger.WithField("due", len(due)).Info("Sweeping due pending missions")

	var resolved, skipped, failed int
	for _, pm := range due {
		ok, err := w.resolveOne(ctx, pm, now)
		if err != nil {
			failed++
			logger.WithFields(log.Fields{
				"accountId": pm.AccountID,
				"missionId": pm.MissionID,
				"error":     err,
			}).Error("Failed to resolve pending mission")
			continue
		}
		if ok {
			resolved++
		} else {
			skipped++
		}
	}

	logger.WithFields(log.Fields{
		"resolved": resolved,
		"skipped":  skipped,
		"failed":   failed,
	}).Info("Mission sweep complete")
	return nil
}

// snapshotDue lists the unresolved claims past the verification window
func (w *MissionSweepWorker) snapshotDue(ctx context.Context, now time.Time) ([]*entities.PendingMission, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	cutoff := now.Add(-w.cfg.VerificationWindow)
	due, err := uow.PendingMissionRepository().ListDue(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return due, nil
}

// resolveOne verifies one claim and, if membership holds, pays it inside its
// own transaction. Returns false without error when the claim stays pending
// or was already resolved by a concurrent sweep.
func (w *MissionSweepWorker) resolveOne(ctx context.Context, pm *entities.PendingMission, now time.Time) (bool, error) {
	mission, ok := w.catalog.Lookup(pm.MissionID)
	if !ok {
		return false, fmt.Errorf("pending mission references unknown mission %s", pm.MissionID)
	}

	// Verification talks to an external API; keep it outside the transaction
	verifyCtx, cancel := context.WithTimeout(ctx, w.cfg.VerifierTimeout)
	isMember, err := w.verifier.IsMember(verifyCtx, mission.Platform, mission.ChannelRef, pm.AccountID)
	cancel()
	if err != nil {
		// Not verified yet; the next sweep retries
		log.WithFields(log.Fields{
			"accountId": pm.AccountID,
			"missionId": pm.MissionID,
			"error":     err,
		}).Warn("Membership verification unavailable, keeping claim pending")
		return false, nil
	}
	if !isMember {
		return false, nil
	}

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	missionService := services.NewMissionService(
		uow.AccountRepository(), uow.PendingMissionRepository(),
		uow.LedgerRepository(), uow.EventBus(), w.verifier, w.catalog)

	resolved, err := missionService.ResolveDue(ctx, pm.AccountID, pm.MissionID, now)
	if err != nil {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, err
	}
	return resolved, nil
}
