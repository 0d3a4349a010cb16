package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User 注册用户；PasswordHash 不出仓储层。
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FullName     string             `bson:"full_name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	PhoneNumber  string             `bson:"phone_number"`
	MemberSince  string             `bson:"member_since"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// PublicUser 可对外暴露的用户信息
type PublicUser struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	MemberSince string `json:"memberSince"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID.Hex(),
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		MemberSince: u.MemberSince,
	}
}
