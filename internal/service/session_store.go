package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/carmarket/internal/cache"
	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/pkg/logger"
)

// SessionStore Redis 会话存储。令牌为不透明随机串，绝对过期 7 天；
// 过期在读取时惰性检查并删除，无后台清扫。
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Create 生成新会话并返回令牌
func (s *SessionStore) Create(ctx context.Context, userID, fullName, email string) (string, error) {
	token := uuid.NewString()
	session := model.Session{
		UserID:    userID,
		FullName:  fullName,
		Email:     email,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, cache.Key(cache.PrefixUserSession, token), payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get 返回有效会话；不存在、已过期或 Redis 异常都返回 nil。
func (s *SessionStore) Get(ctx context.Context, token string) *model.Session {
	if token == "" {
		return nil
	}
	key := cache.Key(cache.PrefixUserSession, token)
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("session read failed", zap.Error(err))
		}
		return nil
	}
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		logger.Warn("session payload corrupt, evicting", zap.Error(err))
		_ = s.rdb.Del(ctx, key).Err()
		return nil
	}
	if session.Expired(time.Now()) {
		_ = s.rdb.Del(ctx, key).Err()
		return nil
	}
	return &session
}

// Delete 登出时删除会话；失败仅记录。
func (s *SessionStore) Delete(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.rdb.Del(ctx, cache.Key(cache.PrefixUserSession, token)).Err(); err != nil {
		logger.Warn("session delete failed", zap.Error(err))
	}
}
