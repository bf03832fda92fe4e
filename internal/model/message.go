package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Delivery statuses, mapped from provider status codes.
const (
	StatusDelivered = "delivered"
	StatusRead      = "read"
	StatusPlayed    = "played"
	StatusDeleted   = "deleted"
	StatusFailed    = "failed"
	StatusPending   = "pending"
	StatusSent      = "sent"
)

// Message is an immutable transcript entry. Rows are append-only; context
// reconstruction orders by sent_at, never by arrival order.
type Message struct {
	ID             int64          `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	MessageID      string         `json:"id" gorm:"column:message_id;index"`
	ContactID      string         `json:"contact_id" gorm:"column:contact_id;index" validate:"required"`
	OrganizationID string         `json:"organization_id" gorm:"column:organization_id;index" validate:"required"`
	InstanceID     string         `json:"instance_id,omitempty" gorm:"column:instance_id"`
	Body           string         `json:"body" gorm:"column:body;type:text"`
	Direction      string         `json:"direction" gorm:"column:direction" validate:"required,oneof=inbound outbound"`
	SentAt         time.Time      `json:"sent_at" gorm:"column:sent_at;index"`
	Status         string         `json:"status,omitempty" gorm:"column:status"`
	AIGenerated    bool           `json:"ai_generated" gorm:"column:ai_generated;default:false"`
	AgentID        string         `json:"agent_id,omitempty" gorm:"column:agent_id"`
	RawPayload     datatypes.JSON `json:"raw_payload,omitempty" gorm:"type:jsonb;column:raw_payload"`
	CreatedAt      time.Time      `json:"created_at,omitempty" gorm:"column:created_at;autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
