package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/carmarket/pkg/logger"
)

const recentSearchLimit = 10

// SearchEntry is one remembered query in a user's recent-search list.
type SearchEntry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackSearch prepends the query to the user's recent-search list, trims the
// list to the newest ten and refreshes the TTL.
func (s *Store) TrackSearch(ctx context.Context, userID, query string) {
	if userID == "" || query == "" {
		return
	}
	payload, err := json.Marshal(SearchEntry{Query: query, Timestamp: time.Now()})
	if err != nil {
		return
	}
	key := Key(PrefixRecentSearches, userID)
	pipe := s.rdb.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, recentSearchLimit-1)
	pipe.Expire(ctx, key, s.recentSearchTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("recent search track failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// RecentSearches returns the user's newest queries, most recent first.
func (s *Store) RecentSearches(ctx context.Context, userID string) []SearchEntry {
	if userID == "" {
		return nil
	}
	raw, err := s.rdb.LRange(ctx, Key(PrefixRecentSearches, userID), 0, recentSearchLimit-1).Result()
	if err != nil {
		logger.Warn("recent search read failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	out := make([]SearchEntry, 0, len(raw))
	for _, item := range raw {
		var entry SearchEntry
		if err := json.Unmarshal([]byte(item), &entry); err == nil {
			out = append(out, entry)
		}
	}
	return out
}
