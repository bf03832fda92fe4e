package model

import "time"

// Lead is a pre-existing sales/enrollment record owned by the campaign side
// of the product. Read-only from this pipeline; a Contact may link to one
// Lead at creation time by phone match and the link is never re-evaluated.
type Lead struct {
	ID               string    `json:"id" gorm:"primaryKey;type:text"`
	OrganizationID   string    `json:"organization_id" gorm:"column:organization_id;index;type:text"`
	Name             string    `json:"name,omitempty" gorm:"column:name;type:text"`
	CourseOfInterest string    `json:"course_of_interest,omitempty" gorm:"column:course_of_interest;type:text"`
	Email            string    `json:"email,omitempty" gorm:"column:email;type:text"`
	Phone            string    `json:"phone,omitempty" gorm:"column:phone;index;type:text"`
	CreatedAt        time.Time `json:"created_at,omitempty" gorm:"column:created_at;autoCreateTime"`
}

func (Lead) TableName() string {
	return "leads"
}
