package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/internal/repository"
)

// SignupInput 注册字段
type SignupInput struct {
	FullName    string
	Email       string
	Password    string
	PhoneNumber string
}

// AuthService 注册 / 登录 / 登出 / 个人资料；密码 bcrypt 存储，哈希不出服务层。
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (string, error)
	Login(ctx context.Context, email, password string) (token string, user model.PublicUser, err error)
	Logout(ctx context.Context, token string)
	Session(ctx context.Context, token string) *model.Session
	Profile(ctx context.Context, userID string) (model.PublicUser, error)
	// UpdateProfile 只开放姓名和电话；邮箱改动牵扯唯一索引和会话，不支持。
	UpdateProfile(ctx context.Context, userID, fullName, phoneNumber string) error
}

type authService struct {
	users    repository.UserRepository
	sessions *SessionStore
}

func NewAuthService(users repository.UserRepository, sessions *SessionStore) AuthService {
	return &authService{users: users, sessions: sessions}
}

func (s *authService) Signup(ctx context.Context, input SignupInput) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	user := &model.User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: string(hash),
		PhoneNumber:  input.PhoneNumber,
		MemberSince:  time.Now().Format("January 2006"),
	}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return id, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, model.PublicUser, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", model.PublicUser{}, ErrInvalidCredentials
		}
		return "", model.PublicUser{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", model.PublicUser{}, ErrInvalidCredentials
	}
	token, err := s.sessions.Create(ctx, user.ID.Hex(), user.FullName, user.Email)
	if err != nil {
		return "", model.PublicUser{}, err
	}
	return token, user.Public(), nil
}

func (s *authService) Logout(ctx context.Context, token string) {
	s.sessions.Delete(ctx, token)
}

func (s *authService) Profile(ctx context.Context, userID string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PublicUser{}, ErrNotFound
		}
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID, fullName, phoneNumber string) error {
	if err := s.users.UpdateProfile(ctx, userID, fullName, phoneNumber); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *authService) Session(ctx context.Context, token string) *model.Session {
	return s.sessions.Get(ctx, token)
}
