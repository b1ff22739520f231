package services

import (
	"context"
	"fmt"
	"time"

	"tapown/domain/entities"
	"tapown/domain/events"
	"tapown/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type missionService struct {
	accountRepo    interfaces.AccountRepository
	missionRepo    interfaces.PendingMissionRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
	verifier       interfaces.MembershipVerifier
	catalog        *entities.MissionCatalog
}

// NewMissionService creates a service handling mission check requests and
// sweep resolution for a single (account, mission) pair.
func NewMissionService(
	accountRepo interfaces.AccountRepository,
	missionRepo interfaces.PendingMissionRepository,
	ledgerRepo interfaces.LedgerRepository,
	eventPublisher interfaces.EventPublisher,
	verifier interfaces.MembershipVerifier,
	catalog *entities.MissionCatalog,
) *missionService {
	return &missionService{
		accountRepo:    accountRepo,
		missionRepo:    missionRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
		verifier:       verifier,
		catalog:        catalog,
	}
}

// RequestCheck handles a user-initiated mission check. Instantly verifiable
// missions are checked synchronously and paid at most once. Delayed missions
// get one unresolved pending row; repeated requests are no-ops.
func (s *missionService) RequestCheck(ctx context.Context, accountID int64, displayName, missionID string, now time.Time) (*interfaces.MissionCheckResult, error) {
	mission, ok := s.catalog.Lookup(missionID)
	if !ok {
		return nil, entities.ErrUnknownMission
	}

	account, _, err := s.accountRepo.GetOrCreate(ctx, accountID, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create account %d: %w", accountID, err)
	}

	existing, err := s.missionRepo.Get(ctx, accountID, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission state for account %d mission %s: %w", accountID, missionID, err)
	}
	if existing != nil && existing.Resolved {
		return &interfaces.MissionCheckResult{Status: interfaces.MissionStatusAlreadyCompleted, Mission: mission, Account: account}, nil
	}

	if mission.Delayed {
		created, err := s.missionRepo.CreatePending(ctx, accountID, missionID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to create pending mission for account %d mission %s: %w", accountID, missionID, err)
		}
		if created {
			log.WithFields(log.Fields{
				"account_id": accountID,
				"mission_id": missionID,
			}).Info("Mission verification deferred to sweep")
		}
		return &interfaces.MissionCheckResult{Status: interfaces.MissionStatusPending, Mission: mission, Account: account}, nil
	}

	isMember, err := s.verifier.IsMember(ctx, mission.Platform, mission.ChannelRef, accountID)
	if err != nil {
		// Verifier failures are "not yet verified", never a terminal state.
		log.WithError(err).WithFields(log.Fields{
			"account_id": accountID,
			"mission_id": missionID,
		}).Warn("Membership verification failed")
		return &interfaces.MissionCheckResult{Status: interfaces.MissionStatusNotMember, Mission: mission, Account: account}, nil
	}
	if !isMember {
		return &interfaces.MissionCheckResult{Status: interfaces.MissionStatusNotMember, Mission: mission, Account: account}, nil
	}

	created, err := s.missionRepo.CreateResolved(ctx, accountID, missionID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record mission completion for account %d mission %s: %w", accountID, missionID, err)
	}
	if !created {
		// A concurrent check won the pair; nothing more to pay.
		return &interfaces.MissionCheckResult{Status: interfaces.MissionStatusAlreadyCompleted, Mission: mission, Account: account}, nil
	}

	account, err = s.payMissionReward(ctx, accountID, mission)
	if err != nil {
		return nil, err
	}

	return &interfaces.MissionCheckResult{Status: interfaces.MissionStatusRewarded, Mission: mission, Account: account, Reward: mission.Reward}, nil
}

// ResolveDue finalizes one due pending mission after the sweep verified
// membership outside the transaction. The resolved=false guard in Resolve
// makes the reward exactly-once even if two sweeps race.
func (s *missionService) ResolveDue(ctx context.Context, accountID int64, missionID string, now time.Time) (bool, error) {
	mission, ok := s.catalog.Lookup(missionID)
	if !ok {
		return false, entities.ErrUnknownMission
	}

	resolved, err := s.missionRepo.Resolve(ctx, accountID, missionID, now)
	if err != nil {
		return false, fmt.Errorf("failed to resolve mission for account %d mission %s: %w", accountID, missionID, err)
	}
	if !resolved {
		return false, nil
	}

	if _, err := s.payMissionReward(ctx, accountID, mission); err != nil {
		return false, err
	}

	return true, nil
}

func (s *missionService) payMissionReward(ctx context.Context, accountID int64, mission entities.Mission) (*entities.Account, error) {
	account, err := s.accountRepo.ApplyDelta(ctx, accountID, mission.Reward, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to apply mission reward to account %d: %w", accountID, err)
	}

	if err := recordReward(ctx, s.ledgerRepo, s.eventPublisher,
		accountID, account.Balance-mission.Reward, account.Balance, entities.ReasonMission,
		map[string]any{"mission_id": mission.ID, "platform": string(mission.Platform)}); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(events.MissionResolvedEvent{
			AccountID: accountID,
			MissionID: mission.ID,
			Reward:    mission.Reward,
			Delayed:   mission.Delayed,
		}); err != nil {
			return nil, fmt.Errorf("failed to publish mission resolved event: %w", err)
		}
	}

	return account, nil
}
