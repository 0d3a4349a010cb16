package model

import "time"

// Session 登录会话，Redis 中以 user:session:<token> 存 JSON。
// 绝对过期，无滑动续期。
type Session struct {
	UserID    string    `json:"userId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool { return s.ExpiresAt.Before(now) }
