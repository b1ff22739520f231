package repository

import (
	"context"
	"fmt"

	"tapown/database"
	"tapown/domain/entities"
	"tapown/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// referralEdgeRepository implements interfaces.ReferralEdgeRepository
type referralEdgeRepository struct {
	q Queryable
}

// NewReferralEdgeRepository creates a new referral edge repository over the pool
func NewReferralEdgeRepository(db *database.DB) interfaces.ReferralEdgeRepository {
	return &referralEdgeRepository{q: db.Pool}
}

// newReferralEdgeRepositoryWithTx creates a new referral edge repository bound to a transaction
func newReferralEdgeRepositoryWithTx(tx Queryable) interfaces.ReferralEdgeRepository {
	return &referralEdgeRepository{q: tx}
}

// Create writes the edge unless the referred account already has one. The
// primary key on referred_id makes the first write win; later attempts are
// reported as not-created rather than errors.
func (r *referralEdgeRepository) Create(ctx context.Context, referrerID, referredID int64) (bool, error) {
	query := `
		INSERT INTO referral_edges (referrer_id, referred_id)
		VALUES ($1, $2)
		ON CONFLICT (referred_id) DO NOTHING`

	result, err := r.q.Exec(ctx, query, referrerID, referredID)
	if err != nil {
		return false, fmt.Errorf("failed to create referral edge %d -> %d: %w", referrerID, referredID, err)
	}
	return result.RowsAffected() > 0, nil
}

// GetByReferred returns the edge for a referred account, or (nil, nil)
func (r *referralEdgeRepository) GetByReferred(ctx context.Context, referredID int64) (*entities.ReferralEdge, error) {
	query := `
		SELECT referred_id, referrer_id, created_at
		FROM referral_edges
		WHERE referred_id = $1`

	var edge entities.ReferralEdge
	err := r.q.QueryRow(ctx, query, referredID).Scan(&edge.ReferredID, &edge.ReferrerID, &edge.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get referral edge for account %d: %w", referredID, err)
	}
	return &edge, nil
}

// CountByReferrer returns how many edges point at the referrer
func (r *referralEdgeRepository) CountByReferrer(ctx context.Context, referrerID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM referral_edges WHERE referrer_id = $1`

	var count int64
	if err := r.q.QueryRow(ctx, query, referrerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count referrals for account %d: %w", referrerID, err)
	}
	return count, nil
}
