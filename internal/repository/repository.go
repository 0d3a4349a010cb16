package repository

import "errors"

var (
	// ErrNotFound 实体在 Primary Store 中不存在（含非法 ID）
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 唯一约束冲突
	ErrDuplicate = errors.New("duplicate record")
)
