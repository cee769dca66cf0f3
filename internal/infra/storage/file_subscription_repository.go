package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/Azamat-Raximov/telegrambot/internal/domain/subscription"
)

// FileSubscriptionRepository keeps all subscriptions in one JSON file
// keyed by the decimal user ID, the bot's original flat-file layout.
// Writes go through a temp file and rename so a crash cannot leave a
// half-written store. A missing or unreadable file reads as empty rather
// than locking every user out.
type FileSubscriptionRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileSubscriptionRepository(path string) *FileSubscriptionRepository {
	return &FileSubscriptionRepository{path: path}
}

func (r *FileSubscriptionRepository) Get(_ context.Context, userID int64) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	sub, ok := users[strconv.FormatInt(userID, 10)]
	if !ok {
		return nil, subscription.ErrNotFound
	}
	return sub, nil
}

func (r *FileSubscriptionRepository) Save(_ context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, err := r.load()
	if err != nil {
		return err
	}
	users[strconv.FormatInt(sub.UserID, 10)] = sub
	return r.store(users)
}

func (r *FileSubscriptionRepository) List(_ context.Context) ([]*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	subs := make([]*subscription.Subscription, 0, len(users))
	for _, sub := range users {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].UserID < subs[j].UserID })
	return subs, nil
}

func (r *FileSubscriptionRepository) load() (map[string]*subscription.Subscription, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]*subscription.Subscription), nil
		}
		return nil, fmt.Errorf("read subscription store: %w", err)
	}
	users := make(map[string]*subscription.Subscription)
	if err := json.Unmarshal(data, &users); err != nil {
		return make(map[string]*subscription.Subscription), nil
	}
	return users, nil
}

func (r *FileSubscriptionRepository) store(users map[string]*subscription.Subscription) error {
	data, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		return fmt.Errorf("encode subscription store: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write subscription store: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace subscription store: %w", err)
	}
	return nil
}
