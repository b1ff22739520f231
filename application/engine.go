package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tapown/config"
	"tapown/domain/entities"
	"tapown/domain/interfaces"
	"tapown/domain/services"

	log "github.com/sirupsen/logrus"
)

// ActionKind identifies a normalized player action
type ActionKind string

const (
	ActionTap          ActionKind = "tap"
	ActionBoost        ActionKind = "boost"
	ActionReferralJoin ActionKind = "referral_join"
	ActionMissionCheck ActionKind = "mission_check"
	ActionLeaderboard  ActionKind = "leaderboard"
	ActionStats        ActionKind = "stats"
	ActionBalance      ActionKind = "balance"
)

// Action is a normalized player action. The chat transport in front of the
// engine is responsible for parsing raw input into one of these.
type Action struct {
	Kind        ActionKind
	AccountID   int64
	DisplayName string
	// Payload carries the action argument: the boost guess, the mission id,
	// or the referral code.
	Payload string
}

// Result is the outcome of a handled action
type Result struct {
	Text        string
	RewardDelta int64
	NewBalance  int64
}

// Engine dispatches player actions to the domain services. Every mutating
// action runs inside a single unit of work; domain events are buffered by the
// transaction-scoped publisher and reach the bus only after commit.
type Engine struct {
	uowFactory UnitOfWorkFactory
	verifier   interfaces.MembershipVerifier
	catalog    *entities.MissionCatalog
	engine     *services.RewardEngine
	cfg        *config.Config
}

// NewEngine creates the action dispatch engine
func NewEngine(
	uowFactory UnitOfWorkFactory,
	verifier interfaces.MembershipVerifier,
	catalog *entities.MissionCatalog,
	rewardEngine *services.RewardEngine,
	cfg *config.Config,
) *Engine {
	return &Engine{
		uowFactory: uowFactory,
		verifier:   verifier,
		catalog:    catalog,
		engine:     rewardEngine,
		cfg:        cfg,
	}
}

// Handle dispatches an action and renders its outcome
func (e *Engine) Handle(ctx context.Context, action Action) (*Result, error) {
	switch action.Kind {
	case ActionTap:
		return e.HandleTap(ctx, action.AccountID, action.DisplayName)
	case ActionBoost:
		guess, err := parseGuess(action.Payload, e.cfg.BoostRange)
		if err != nil {
			return &Result{Text: err.Error()}, nil
		}
		return e.HandleBoost(ctx, action.AccountID, action.DisplayName, guess)
	case ActionReferralJoin:
		return e.HandleReferralJoin(ctx, action.AccountID, action.DisplayName, action.Payload)
	case ActionMissionCheck:
		return e.HandleMissionCheck(ctx, action.AccountID, action.DisplayName, action.Payload)
	case ActionLeaderboard:
		return e.HandleLeaderboard(ctx)
	case ActionStats:
		return e.HandleStats(ctx)
	case ActionBalance:
		return e.HandleBalance(ctx, action.AccountID, action.DisplayName)
	default:
		return nil, fmt.Errorf("unknown action kind: %s", action.Kind)
	}
}

// HandleTap applies one tap for the account
func (e *Engine) HandleTap(ctx context.Context, accountID int64, displayName string) (*Result, error) {
	var result *Result

	err := e.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		tapService := services.NewTapService(
			uow.AccountRepository(), uow.LedgerRepository(), uow.EventBus(), e.engine)

		tap, err := tapService.Tap(ctx, accountID, displayName)
		if err != nil {
			return err
		}

		result = &Result{
			Text:        fmt.Sprintf("+%d! Balance: %d", tap.Reward, tap.Account.Balance),
			RewardDelta: tap.Reward,
			NewBalance:  tap.Account.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HandleBoost plays the once-per-day boost guessing game
func (e *Engine) HandleBoost(ctx context.Context, accountID int64, displayName string, guess int) (*Result, error) {
	var result *Result

	err := e.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		boostService := services.NewBoostService(
			uow.AccountRepository(), uow.LedgerRepository(), uow.EventBus(), e.engine)

		boost, err := boostService.Play(ctx, accountID, displayName, guess, time.Now())
		if err != nil {
			return err
		}

		if boost.Won {
			result = &Result{
				Text:        fmt.Sprintf("The number was %d. You won %d! Balance: %d", boost.Secret, boost.Reward, boost.Account.Balance),
				RewardDelta: boost.Reward,
				NewBalance:  boost.Account.Balance,
			}
		} else {
			result = &Result{
				Text:       fmt.Sprintf("The number was %d. Better luck tomorrow!", boost.Secret),
				NewBalance: boost.Account.Balance,
			}
		}
		return nil
	})
	if errors.Is(err, entities.ErrBoostAlreadyPlayed) {
		return &Result{Text: "You already played boost today. Come back tomorrow!"}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HandleReferralJoin registers a new account arriving through a referral
// code. Attribution is first-write-wins per referred account, so repeated
// joins and self-referrals are quiet no-ops.
func (e *Engine) HandleReferralJoin(ctx context.Context, accountID int64, displayName, code string) (*Result, error) {
	var result *Result

	err := e.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		referralService := services.NewReferralService(
			uow.AccountRepository(), uow.ReferralEdgeRepository(),
			uow.LedgerRepository(), uow.EventBus(), e.engine)

		// The referred account must exist before rewards can land on it
		if _, _, err := uow.AccountRepository().GetOrCreate(ctx, accountID, displayName); err != nil {
			return err
		}

		referrerID, err := referralService.ResolveReferrer(ctx, code)
		if errors.Is(err, entities.ErrReferrerNotFound) {
			result = &Result{Text: "Welcome! That referral code did not match anyone."}
			return nil
		}
		if err != nil {
			return err
		}

		attribution, err := referralService.Attribute(ctx, referrerID, accountID)
		if err != nil {
			return err
		}

		if !attribution.Attributed {
			result = &Result{Text: "Welcome back!"}
			return nil
		}

		if attribution.ReferredReward > 0 {
			result = &Result{
				Text:        fmt.Sprintf("Welcome! You earned %d for joining via a friend.", attribution.ReferredReward),
				RewardDelta: attribution.ReferredReward,
			}
		} else {
			result = &Result{Text: "Welcome aboard!"}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HandleMissionCheck handles a mission completion claim
func (e *Engine) HandleMissionCheck(ctx context.Context, accountID int64, displayName, missionID string) (*Result, error) {
	var result *Result

	err := e.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		missionService := services.NewMissionService(
			uow.AccountRepository(), uow.PendingMissionRepository(),
			uow.LedgerRepository(), uow.EventBus(), e.verifier, e.catalog)

		check, err := missionService.RequestCheck(ctx, accountID, displayName, missionID, time.Now())
		if err != nil {
			return err
		}

		switch check.Status {
		case interfaces.MissionStatusRewarded:
			result = &Result{
				Text:        fmt.Sprintf("Mission complete! +%d. Balance: %d", check.Reward, check.Account.Balance),
				RewardDelta: check.Reward,
				NewBalance:  check.Account.Balance,
			}
		case interfaces.MissionStatusPending:
			result = &Result{Text: "Thanks! Your completion will be verified and rewarded within a day."}
		case interfaces.MissionStatusAlreadyCompleted:
			result = &Result{Text: "You already completed this mission."}
		case interfaces.MissionStatusNotMember:
			result = &Result{Text: fmt.Sprintf("Could not verify you joined %s yet. Join and try again.", check.Mission.ChannelRef)}
		}
		return nil
	})
	if errors.Is(err, entities.ErrUnknownMission) {
		return &Result{Text: "Unknown mission."}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HandleLeaderboard renders the top accounts by balance
func (e *Engine) HandleLeaderboard(ctx context.Context) (*Result, error) {
	var result *Result

	err := e.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		leaderboardService := services.NewLeaderboardService(uow.AccountRepository())

		entries, err := leaderboardService.Top(ctx, e.cfg.LeaderboardSize)
		if err != nil {
			return err
		}

		var b strings.Builder
		b.WriteString("Top players:\n")
		for _, entry := range entries {
			fmt.Fprintf(&b, "%d. %s: %d\n", entry.Rank, entry.DisplayName, entry.Balance)
		}
		result = &Result{Text: b.String()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HandleStats renders the global counters
func (e *Engine) HandleStats(ctx context.Context) (*Result, error) {
	var result *Result

	err := e.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		statsService := services.NewStatsService(uow.AccountRepository())

		stats, err := statsService.GlobalStats(ctx, time.Now())
		if err != nil {
			return err
		}

		result = &Result{
			Text: fmt.Sprintf("Players: %d\nTotal taps: %d\nTotal balance: %d\nActive today: %d",
				stats.TotalAccounts, stats.TotalTaps, stats.TotalBalance, stats.DailyActive),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HandleBalance reports the account's balance, creating the account if it is
// the first interaction
func (e *Engine) HandleBalance(ctx context.Context, accountID int64, displayName string) (*Result, error) {
	var result *Result

	err := e.withUnitOfWork(ctx, func(uow UnitOfWork) error {
		account, _, err := uow.AccountRepository().GetOrCreate(ctx, accountID, displayName)
		if err != nil {
			return err
		}

		result = &Result{
			Text:       fmt.Sprintf("Balance: %d (taps: %d, referrals: %d)", account.Balance, account.TapCount, account.ReferralCount),
			NewBalance: account.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// withUnitOfWork runs fn inside a transaction, committing on success and
// rolling back on error
func (e *Engine) withUnitOfWork(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := e.uowFactory.Create()

	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer func() {
		if err := uow.Rollback(); err != nil {
			log.WithError(err).Error("Failed to rollback unit of work")
		}
	}()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}
	return nil
}

func parseGuess(payload string, boostRange int) (int, error) {
	guess := 0
	if _, err := fmt.Sscanf(strings.TrimSpace(payload), "%d", &guess); err != nil {
		return 0, fmt.Errorf("pick a number between 1 and %d", boostRange)
	}
	if guess < 1 || guess > boostRange {
		return 0, fmt.Errorf("pick a number between 1 and %d", boostRange)
	}
	return guess, nil
}
