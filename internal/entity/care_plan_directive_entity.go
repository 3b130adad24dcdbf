package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	CarePlanDirectiveStatusActive   = "active"
	CarePlanDirectiveStatusArchived = "archived"

	CarePlanCategoryDiet       = "diet"
	CarePlanCategoryExercise   = "exercise"
	CarePlanCategoryMedication = "medication"
)

// CarePlanDirective mirrors the clinician-owned directives table. The
// supervisor has read-only access; authoring lives in the clinical dashboard.
type CarePlanDirective struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserId    uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Category  string         `gorm:"type:varchar(32)" json:"category"`
	Directive string         `gorm:"type:text" json:"directive"`
	Status    string         `gorm:"type:varchar(16);index" json:"status"`
	Extras    datatypes.JSON `gorm:"type:jsonb" json:"extras,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at"`
}

func (CarePlanDirective) TableName() string {
	return "care_plan_directives"
}
