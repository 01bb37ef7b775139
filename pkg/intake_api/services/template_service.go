package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	problem "github.com/s10-intake/intake-api/pkg/intake_api/helpers/problem"
	"github.com/s10-intake/intake-api/pkg/intake_api/models"
	"github.com/s10-intake/intake-api/pkg/intake_api/repositories"
	"github.com/s10-intake/intake-api/pkg/intake_api/storage"
)

// storeTimeout bounds every object-store round trip; none of the external
// calls are otherwise bounded.
const storeTimeout = 30 * time.Second

// TemplateService runs the upload-and-register workflow and the template and
// package reads that go with it.
type TemplateService struct {
	templates repositories.TemplateRepository
	packages  repositories.PackageRepository
	store     storage.ObjectStore
	staging   *storage.StagingWriter
}

func NewTemplateService(
	templates repositories.TemplateRepository,
	packages repositories.PackageRepository,
	store storage.ObjectStore,
	staging *storage.StagingWriter,
) *TemplateService {
	return &TemplateService{
		templates: templates,
		packages:  packages,
		store:     store,
		staging:   staging,
	}
}

// UploadTemplate turns an uploaded keys file into a staged copy, a stored
// object and a template row, in that order. Any failure aborts the remaining
// steps; a staged or stored artifact from an earlier step is only cleaned up
// for the registration step, which issues a compensating delete.
func (s *TemplateService) UploadTemplate(ctx context.Context, filename, contentType string, content []byte) (*models.UploadTemplateResponse, error) {
	if !json.Valid(content) {
		return nil, problem.NewInvalidPayload("template keys file is not valid JSON")
	}

	key := storage.DeduplicateFilename(filename, time.Now())

	// Audit copy only; a staging failure never aborts the upload.
	if _, err := s.staging.Stage(key, content); err != nil {
		log.Printf("[WARN] staging copy of %s failed: %v", key, err)
	}

	putCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	stored, err := s.store.Put(putCtx, key, content, contentType)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err.Error())
	}

	template := models.NewTemplate(filename, content)
	if err := s.templates.Save(ctx, template); err != nil {
		// The object is already durable; delete it so a failed registration
		// does not leave an orphan behind.
		delCtx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if derr := s.store.Delete(delCtx, key); derr != nil {
			log.Printf("[WARN] compensating delete of %s failed: %v", key, derr)
		}
		return nil, problem.NewPersistenceFailed(err.Error())
	}

	return &models.UploadTemplateResponse{
		TemplateId: template.Id,
		StoredFile: *stored,
	}, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context) ([]models.Template, error) {
	return s.templates.GetTemplates(ctx)
}

func (s *TemplateService) RetrieveTemplate(ctx context.Context, id string) (*models.Template, error) {
	return s.templates.GetTemplateByID(ctx, id)
}

// CreatePackage registers a package against an existing template. The
// referenced template must exist; file references are stored by key.
func (s *TemplateService) CreatePackage(ctx context.Context, input *models.CreatePackageInput) (*models.Package, error) {
	template, err := s.templates.GetTemplateByID(ctx, input.TemplateId)
	if err != nil {
		return nil, problem.NewPersistenceFailed(err.Error())
	}
	if template == nil {
		return nil, problem.NewBadRequest("templateId", "referenced template does not exist",
			problem.InvalidParam{Name: "templateId", Reason: "must reference an existing template"},
		)
	}

	if len(input.Data) > 0 && !json.Valid(input.Data) {
		return nil, problem.NewInvalidPayload("package data is not valid JSON")
	}

	pkg, err := models.NewPackage(input.Name, input.TemplateId, input.Data, input.Files)
	if err != nil {
		return nil, problem.NewInternalServerError(err.Error())
	}
	if err := s.packages.Save(ctx, pkg); err != nil {
		return nil, problem.NewPersistenceFailed(err.Error())
	}
	return pkg, nil
}

func (s *TemplateService) ListPackages(ctx context.Context) ([]models.Package, error) {
	return s.packages.GetPackages(ctx)
}
