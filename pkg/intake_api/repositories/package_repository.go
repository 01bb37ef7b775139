package repositories

import (
	"context"

	"github.com/s10-intake/intake-api/pkg/intake_api/models"
	"gorm.io/gorm"
)

type PackageRepository interface {
	Save(ctx context.Context, pkg *models.Package) error
	GetPackages(ctx context.Context) ([]models.Package, error)
}

type packageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) Save(ctx context.Context, pkg *models.Package) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *packageRepository) GetPackages(ctx context.Context) ([]models.Package, error) {
	var packages []models.Package
	err := r.db.WithContext(ctx).Order("created_at, id").Find(&packages).Error
	return packages, err
}
