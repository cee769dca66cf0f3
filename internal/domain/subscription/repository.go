package subscription

import (
	"context"
	"fmt"
)

// ErrNotFound is returned by any Repository backend when no subscription
// exists for the requested user.
var ErrNotFound = fmt.Errorf("subscription not found")

// Repository persists subscriptions keyed by Telegram user ID.
type Repository interface {
	Get(ctx context.Context, userID int64) (*Subscription, error)
	Save(ctx context.Context, sub *Subscription) error
	List(ctx context.Context) ([]*Subscription, error)
}
