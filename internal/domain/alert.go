package domain

import "time"

const (
	AlertDraft = "draft"
	AlertSent  = "sent"
)

type Alert struct {
	ID        AlertID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Subject   string     `gorm:"type:text;not null" db:"subject" json:"subject"`
	BodyHTML  string     `gorm:"type:text;not null" db:"body_html" json:"bodyHtml"`
	Status    string     `gorm:"type:text;not null;default:draft" db:"status" json:"status"`
	CreatedBy UserID     `gorm:"type:uuid;index" db:"created_by" json:"createdBy"`
	CreatedAt time.Time  `gorm:"not null" db:"created_at" json:"createdAt"`
	SentAt    *time.Time `db:"sent_at" json:"sentAt,omitempty"`
}

func (Alert) TableName() string { return "alerts" }
