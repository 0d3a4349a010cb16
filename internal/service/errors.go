package service

import "errors"

var (
	// ErrNotFound 车源 / 用户在 Primary Store 中不存在
	ErrNotFound = errors.New("not found")
	// ErrForbidden 调用者不是车源属主
	ErrForbidden = errors.New("forbidden")
	// ErrEmailTaken 注册邮箱已占用
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials 登录失败（用户不存在或密码错误，对外不区分）
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotFavorite 取消收藏时记录不存在
	ErrNotFavorite = errors.New("car was not in favorites")
)
