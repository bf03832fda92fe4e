package model

import "time"

// Actors that can terminate a conversation. Only the AI path terminates
// today; other actors are reserved.
const EndedByAI = "ai"

// ConversationHistory is the archival row written exactly once per
// conversation termination. Insert-only.
type ConversationHistory struct {
	ID             int64     `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	ContactID      string    `json:"contact_id" gorm:"column:contact_id;index" validate:"required"`
	OrganizationID string    `json:"organization_id" gorm:"column:organization_id;index" validate:"required"`
	EndedAt        time.Time `json:"ended_at" gorm:"column:ended_at"`
	EndedBy        string    `json:"ended_by" gorm:"column:ended_by" validate:"required"`
	EndReason      string    `json:"end_reason,omitempty" gorm:"column:end_reason;type:text"`
	CreatedAt      time.Time `json:"created_at,omitempty" gorm:"column:created_at;autoCreateTime"`
}

func (ConversationHistory) TableName() string {
	return "conversation_histories"
}
