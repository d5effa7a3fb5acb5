package models

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID                    int        `json:"userId,omitempty"`
	Username              string     `json:"username"`
	Email                 string     `json:"email"`
	IsPremium             bool       `json:"isPremium"`
	Role                  Role       `json:"role"`
	SubscriptionType      *string    `json:"subscriptionType"`
	SubscriptionExpiresAt *time.Time `json:"subscriptionExpiresAt"`
	IsVerified            bool       `json:"isVerified"`
	CreatedAt             *time.Time `json:"createdAt,omitempty"`
	UpdatedAt             *time.Time `json:"updatedAt,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type UserPage struct {
	Users []User `json:"data"`
	Meta  struct {
		Total    int `json:"total"`
		Page     int `json:"page"`
		LastPage int `json:"lastPage"`
	} `json:"meta"`
}
