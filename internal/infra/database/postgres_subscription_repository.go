package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/Azamat-Raximov/telegrambot/internal/domain/subscription"
)

// PostgresSubscriptionRepository is the relational alternative to the flat
// JSON store, selected when DATABASE_URL is configured.
type PostgresSubscriptionRepository struct {
	db *sql.DB
}

func NewPostgresSubscriptionRepository(db *sql.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

func (r *PostgresSubscriptionRepository) Get(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	query := `SELECT user_id, faculty, faculty_id, course, specialization, group_name, notify_time, notify_mode
               FROM subscriptions WHERE user_id = $1`
	sub := &subscription.Subscription{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&sub.UserID, &sub.Faculty, &sub.FacultyID, &sub.Course,
		&sub.Specialization, &sub.Group, &sub.NotifyTime, &sub.NotifyMode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, subscription.ErrNotFound
		}
		return nil, fmt.Errorf("error getting subscription by user ID: %w", err)
	}
	return sub, nil
}

func (r *PostgresSubscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription) error {
	query := `INSERT INTO subscriptions (user_id, faculty, faculty_id, course, specialization, group_name, notify_time, notify_mode)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               ON CONFLICT (user_id) DO UPDATE
               SET faculty = EXCLUDED.faculty, faculty_id = EXCLUDED.faculty_id,
                   course = EXCLUDED.course, specialization = EXCLUDED.specialization,
                   group_name = EXCLUDED.group_name, notify_time = EXCLUDED.notify_time,
                   notify_mode = EXCLUDED.notify_mode, updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query,
		sub.UserID, sub.Faculty, sub.FacultyID, sub.Course,
		sub.Specialization, sub.Group, sub.NotifyTime, sub.NotifyMode)
	if err != nil {
		return fmt.Errorf("error saving subscription: %w", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) List(ctx context.Context) ([]*subscription.Subscription, error) {
	query := `SELECT user_id, faculty, faculty_id, course, specialization, group_name, notify_time, notify_mode
               FROM subscriptions ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*subscription.Subscription, 0)
	for rows.Next() {
		sub := &subscription.Subscription{}
		if err := rows.Scan(
			&sub.UserID, &sub.Faculty, &sub.FacultyID, &sub.Course,
			&sub.Specialization, &sub.Group, &sub.NotifyTime, &sub.NotifyMode); err != nil {
			return nil, fmt.Errorf("error scanning subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}
	return subs, nil
}
