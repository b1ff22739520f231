package repository

import (
	"context"
	"fmt"
	"time"

	"tapown/database"
	"tapown/domain/entities"
	"tapown/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const pendingMissionColumns = `id, account_id, mission_id, requested_at, resolved, resolved_at, created_at`

// pendingMissionRepository implements interfaces.PendingMissionRepository
type pendingMissionRepository struct {
	q Queryable
}

// NewPendingMissionRepository creates a new pending mission repository over the pool
func NewPendingMissionRepository(db *database.DB) interfaces.PendingMissionRepository {
	return &pendingMissionRepository{q: db.Pool}
}

// newPendingMissionRepositoryWithTx creates a new pending mission repository bound to a transaction
func newPendingMissionRepositoryWithTx(tx Queryable) interfaces.PendingMissionRepository {
	return &pendingMissionRepository{q: tx}
}

func scanPendingMission(row pgx.Row) (*entities.PendingMission, error) {
	var pm entities.PendingMission
	err := row.Scan(
		&pm.ID,
		&pm.AccountID,
		&pm.MissionID,
		&pm.RequestedAt,
		&pm.Resolved,
		&pm.ResolvedAt,
		&pm.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// CreatePending records an unresolved verification request. The unique
// (account_id, mission_id) constraint keeps repeated check requests from
// piling up duplicate pending rows.
func (r *pendingMissionRepository) CreatePending(ctx context.Context, accountID int64, missionID string, requestedAt time.Time) (bool, error) {
	query := `
		INSERT INTO pending_missions (account_id, mission_id, requested_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, mission_id) DO NOTHING`

	result, err := r.q.Exec(ctx, query, accountID, missionID, requestedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create pending mission for account %d mission %s: %w", accountID, missionID, err)
	}
	return result.RowsAffected() > 0, nil
}

// CreateResolved records an instantly-verified completion as an already
// resolved row, so the pair can never be paid again.
func (r *pendingMissionRepository) CreateResolved(ctx context.Context, accountID int64, missionID string, resolvedAt time.Time) (bool, error) {
	query := `
		INSERT INTO pending_missions (account_id, mission_id, requested_at, resolved, resolved_at)
		VALUES ($1, $2, $3, TRUE, $3)
		ON CONFLICT (account_id, mission_id) DO NOTHING`

	result, err := r.q.Exec(ctx, query, accountID, missionID, resolvedAt)
	if err != nil {
		return false, fmt.Errorf("failed to record mission completion for account %d mission %s: %w", accountID, missionID, err)
	}
	return result.RowsAffected() > 0, nil
}

// Get returns the row for the pair, or (nil, nil)
func (r *pendingMissionRepository) Get(ctx context.Context, accountID int64, missionID string) (*entities.PendingMission, error) {
	query := `
		SELECT ` + pendingMissionColumns + `
		FROM pending_missions
		WHERE account_id = $1 AND mission_id = $2`

	pm, err := scanPendingMission(r.q.QueryRow(ctx, query, accountID, missionID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending mission for account %d mission %s: %w", accountID, missionID, err)
	}
	return pm, nil
}

// ListDue returns unresolved rows requested at or before the cutoff, oldest first
func (r *pendingMissionRepository) ListDue(ctx context.Context, cutoff time.Time) ([]*entities.PendingMission, error) {
	query := `
		SELECT ` + pendingMissionColumns + `
		FROM pending_missions
		WHERE NOT resolved AND requested_at <= $1
		ORDER BY requested_at ASC`

	rows, err := r.q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list due pending missions: %w", err)
	}
	defer rows.Close()

	var pending []*entities.PendingMission
	for rows.Next() {
		pm, err := scanPendingMission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending mission: %w", err)
		}
		pending = append(pending, pm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending missions: %w", err)
	}

	return pending, nil
}

// Resolve marks the pair resolved. The resolved = false guard means exactly
// one caller ever observes true for a pair, which is what makes delayed
// mission rewards exactly-once.
func (r *pendingMissionRepository) Resolve(ctx context.Context, accountID int64, missionID string, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE pending_missions
		SET resolved = TRUE, resolved_at = $3
		WHERE account_id = $1 AND mission_id = $2 AND NOT resolved`

	result, err := r.q.Exec(ctx, query, accountID, missionID, resolvedAt)
	if err != nil {
		return false, fmt.Errorf("failed to resolve pending mission for account %d mission %s: %w", accountID, missionID, err)
	}
	return result.RowsAffected() > 0, nil
}
