package model

import "time"

// Instance is a provisioned chat-platform connection owned by an organization.
// Rows are written by the provisioning flow; this service only reads them.
type Instance struct {
	ID             string    `json:"id" gorm:"primaryKey;type:text"`
	OrganizationID string    `json:"organization_id" gorm:"column:organization_id;index;type:text" validate:"required"`
	ExternalKey    string    `json:"external_key" gorm:"column:external_key;uniqueIndex;type:text" validate:"required"`
	DisplayName    string    `json:"display_name,omitempty" gorm:"column:display_name;type:text"`
	CreatedAt      time.Time `json:"created_at,omitempty" gorm:"column:created_at;autoCreateTime"`
}

func (Instance) TableName() string {
	return "instances"
}
