package domain

import "time"

type User struct {
	ID            UserID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Email         string    `gorm:"type:text;uniqueIndex:ux_users_email" db:"email" json:"email"`
	PasswordHash  string    `gorm:"type:text;not null" db:"password_hash" json:"-"`
	FirstName     string    `gorm:"type:text" db:"first_name" json:"firstName"`
	LastName      string    `gorm:"type:text" db:"last_name" json:"lastName"`
	EmailVerified bool      `gorm:"not null;default:false" db:"email_verified" json:"emailVerified"`
	IsAdmin       bool      `gorm:"not null;default:false" db:"is_admin" json:"isAdmin"`
	CreatedAt     time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }
