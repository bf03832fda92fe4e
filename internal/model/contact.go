package model

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation lifecycle states. Archived/draft distinctions live on separate
// flags managed by the UI layer, not here.
const (
	ConversationActive    = "active"
	ConversationPaused    = "paused"
	ConversationCompleted = "completed"
)

// Contact is the canonical identity for a phone number within an organization.
// The phone column always stores the prefixed (country-code) representation;
// lookups additionally try the local form for rows created by older imports.
type Contact struct {
	ID                 string         `json:"id" gorm:"primaryKey;type:text"`
	OrganizationID     string         `json:"organization_id" gorm:"column:organization_id;uniqueIndex:idx_contacts_org_phone;type:text" validate:"required"`
	InstanceID         string         `json:"instance_id,omitempty" gorm:"column:instance_id;index;type:text"`
	Phone              string         `json:"phone" gorm:"column:phone;uniqueIndex:idx_contacts_org_phone;type:text" validate:"required"`
	LeadID             *string        `json:"lead_id,omitempty" gorm:"column:lead_id;type:text"`
	PushName           string         `json:"push_name,omitempty" gorm:"column:push_name;type:text"`
	AIEnabled          bool           `json:"ai_enabled" gorm:"column:ai_enabled;default:true"`
	ConversationStatus string         `json:"conversation_status" gorm:"column:conversation_status;type:text;default:active"`
	Archived           bool           `json:"archived" gorm:"column:archived;default:false"`
	LastMetadata       datatypes.JSON `json:"last_metadata,omitempty" gorm:"type:jsonb;column:last_metadata"`
	CreatedAt          time.Time      `json:"created_at,omitempty" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `json:"updated_at,omitempty" gorm:"column:updated_at;autoUpdateTime"`
}

func (Contact) TableName() string {
	return "contacts"
}

// ContactUpdateColumns returns the columns refreshed on every inbound event.
func ContactUpdateColumns() []string {
	return []string{
		"push_name", "conversation_status", "archived", "last_metadata", "updated_at",
	}
}
