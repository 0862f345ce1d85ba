package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/property-notifier/internal/domain"
)

// UserRepository defines persistence access for platform users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// ListTrialsEndingBetween returns trialing property managers whose trial
	// ends in [from, to).
	ListTrialsEndingBetween(ctx context.Context, from, to time.Time) ([]domain.User, error)
	// ListExpiredTrials returns trialing property managers whose trial ended at or before now.
	ListExpiredTrials(ctx context.Context, now time.Time) ([]domain.User, error)
	// SuspendTrials moves the given users from TRIAL to SUSPENDED in one
	// statement and returns the ids that actually transitioned.
	SuspendTrials(ctx context.Context, ids []string) ([]string, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, role, subscription_status, trial_end_date, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) ListTrialsEndingBetween(ctx context.Context, from, to time.Time) ([]domain.User, error) {
	query := `SELECT ` + userColumns + `
        FROM users
        WHERE role=$1 AND subscription_status=$2
          AND trial_end_date >= $3 AND trial_end_date < $4
        ORDER BY trial_end_date`

	return r.list(ctx, query,
		domain.UserRolePropertyManager,
		domain.SubscriptionStatusTrial,
		from,
		to,
	)
}

func (r *userRepository) ListExpiredTrials(ctx context.Context, now time.Time) ([]domain.User, error) {
	query := `SELECT ` + userColumns + `
        FROM users
        WHERE role=$1 AND subscription_status=$2 AND trial_end_date <= $3
        ORDER BY trial_end_date`

	return r.list(ctx, query,
		domain.UserRolePropertyManager,
		domain.SubscriptionStatusTrial,
		now,
	)
}

func (r *userRepository) SuspendTrials(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
        UPDATE users SET subscription_status=$1, updated_at=NOW()
        WHERE id = ANY($2::uuid[]) AND subscription_status=$3
        RETURNING id`

	rows, err := r.pool.Query(ctx, query,
		domain.SubscriptionStatusSuspended,
		ids,
		domain.SubscriptionStatusTrial,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *userRepository) list(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.SubscriptionStatus,
		&user.TrialEndDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
