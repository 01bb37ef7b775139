package repositories

import (
	"context"

	"github.com/s10-intake/intake-api/pkg/intake_api/models"
	"gorm.io/gorm"
)

type SubmissionRepository interface {
	Save(ctx context.Context, submission *models.FormSubmission) error
	GetSubmissions(ctx context.Context) ([]models.FormSubmission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Save(ctx context.Context, submission *models.FormSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetSubmissions(ctx context.Context) ([]models.FormSubmission, error) {
	var submissions []models.FormSubmission
	err := r.db.WithContext(ctx).Order("id").Find(&submissions).Error
	return submissions, err
}
