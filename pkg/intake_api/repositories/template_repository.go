package repositories

import (
	"context"
	"errors"

	"github.com/s10-intake/intake-api/pkg/intake_api/models"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	Save(ctx context.Context, template *models.Template) error
	GetTemplates(ctx context.Context) ([]models.Template, error)
	GetTemplateByID(ctx context.Context, id string) (*models.Template, error)
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Save(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *templateRepository) GetTemplates(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	// stable order so repeated reads return identical sequences
	err := r.db.WithContext(ctx).Order("created_at, id").Find(&templates).Error
	return templates, err
}

func (r *templateRepository) GetTemplateByID(ctx context.Context, id string) (*models.Template, error) {
	var template models.Template
	err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &template, nil
}
