package careplan

import (
	"context"
	"fmt"

	"ai-caresupervisor-be/internal/entity"

	"gorm.io/gorm"
)

// GormSource reads active directives from the clinician-owned Postgres table.
// Queries are read-only; the supervisor never writes to this store.
type GormSource struct {
	db *gorm.DB
}

var _ Source = &GormSource{}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

func (s *GormSource) GetActiveDirectives(ctx context.Context, userID string) (*Directives, error) {
	var rows []entity.CarePlanDirective
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, entity.CarePlanDirectiveStatusActive).
		Order("updated_at DESC NULLS LAST").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load care plan directives: %w", err)
	}

	// First (most recently updated) directive per category wins.
	directives := &Directives{}
	for _, row := range rows {
		switch row.Category {
		case entity.CarePlanCategoryDiet:
			if directives.Diet == "" {
				directives.Diet = row.Directive
			}
		case entity.CarePlanCategoryExercise:
			if directives.Exercise == "" {
				directives.Exercise = row.Directive
			}
		case entity.CarePlanCategoryMedication:
			if directives.Medication == "" {
				directives.Medication = row.Directive
			}
		}
	}
	return directives, nil
}
