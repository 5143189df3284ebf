package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	notificationPort "postpilot/internal/ports/notification"
)

// feedCap bounds each user's feed; older entries fall off the end.
const feedCap = 100

type NotificationFeedRedis struct {
	Client *redis.Client
}

func NewNotificationFeedRedis(client *redis.Client) *NotificationFeedRedis {
	return &NotificationFeedRedis{Client: client}
}

func feedKey(userID string) string { return "notifications:" + userID }

// Push prepends an entry to the user's feed list and trims it to feedCap.
func (r *NotificationFeedRedis) Push(ctx context.Context, userID string, entry notificationPort.FeedEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := feedKey(userID)
	pipe := r.Client.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, feedCap-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns the newest entries, newest first.
func (r *NotificationFeedRedis) Recent(ctx context.Context, userID string, limit int64) ([]notificationPort.FeedEntry, error) {
	if limit <= 0 || limit > feedCap {
		limit = feedCap
	}
	raws, err := r.Client.LRange(ctx, feedKey(userID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]notificationPort.FeedEntry, 0, len(raws))
	for _, raw := range raws {
		var e notificationPort.FeedEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue // skip corrupt entries rather than failing the feed
		}
		entries = append(entries, e)
	}
	return entries, nil
}
