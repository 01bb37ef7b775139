package services_test

import (
	"context"
	"errors"
	"testing"

	problem "github.com/s10-intake/intake-api/pkg/intake_api/helpers/problem"
	"github.com/s10-intake/intake-api/pkg/intake_api/models"
	"github.com/s10-intake/intake-api/pkg/intake_api/services"
	"github.com/s10-intake/intake-api/pkg/intake_api/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTemplateRepo implements repositories.TemplateRepository for testing
type stubTemplateRepo struct {
	saved   []*models.Template
	save    func(ctx context.Context, template *models.Template) error
	getAll  func(ctx context.Context) ([]models.Template, error)
	getByID func(ctx context.Context, id string) (*models.Template, error)
}

func (s *stubTemplateRepo) Save(ctx context.Context, template *models.Template) error {
	if s.save != nil {
		if err := s.save(ctx, template); err != nil {
			return err
		}
	}
	s.saved = append(s.saved, template)
	return nil
}

func (s *stubTemplateRepo) GetTemplates(ctx context.Context) ([]models.Template, error) {
	if s.getAll != nil {
		return s.getAll(ctx)
	}
	return nil, nil
}

func (s *stubTemplateRepo) GetTemplateByID(ctx context.Context, id string) (*models.Template, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, nil
}

// stubPackageRepo implements repositories.PackageRepository for testing
type stubPackageRepo struct {
	saved []*models.Package
	save  func(ctx context.Context, pkg *models.Package) error
}

func (s *stubPackageRepo) Save(ctx context.Context, pkg *models.Package) error {
	if s.save != nil {
		if err := s.save(ctx, pkg); err != nil {
			return err
		}
	}
	s.saved = append(s.saved, pkg)
	return nil
}

func (s *stubPackageRepo) GetPackages(ctx context.Context) ([]models.Package, error) {
	return nil, nil
}

// stubStore implements storage.ObjectStore for testing
type stubStore struct {
	putKeys    []string
	putData    [][]byte
	deleteKeys []string
	put        func(ctx context.Context, key string, data []byte, contentType string) (*models.StoredFile, error)
	del        func(ctx context.Context, key string) error
}

func (s *stubStore) Put(ctx context.Context, key string, data []byte, contentType string) (*models.StoredFile, error) {
	if s.put != nil {
		stored, err := s.put(ctx, key, data, contentType)
		if err != nil {
			return nil, err
		}
		s.putKeys = append(s.putKeys, key)
		s.putData = append(s.putData, data)
		return stored, nil
	}
	s.putKeys = append(s.putKeys, key)
	s.putData = append(s.putData, data)
	return &models.StoredFile{Key: key, Url: "https://bucket.s3.test/" + key, Size: int64(len(data)), ContentType: contentType}, nil
}

func (s *stubStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	return nil, "", storage.ErrObjectNotFound
}

func (s *stubStore) List(ctx context.Context, prefix string) ([]models.ObjectInfo, error) {
	return nil, nil
}

func (s *stubStore) Delete(ctx context.Context, key string) error {
	s.deleteKeys = append(s.deleteKeys, key)
	if s.del != nil {
		return s.del(ctx, key)
	}
	return nil
}

func (s *stubStore) ListBuckets(ctx context.Context) ([]string, error) { return nil, nil }
func (s *stubStore) Bucket() string                                    { return "test-bucket" }

func newTemplateService(t *testing.T, templates *stubTemplateRepo, packages *stubPackageRepo, store *stubStore) *services.TemplateService {
	t.Helper()
	staging := storage.NewStagingWriter(t.TempDir())
	return services.NewTemplateService(templates, packages, store, staging)
}

func TestUploadTemplate_Success(t *testing.T) {
	templates := &stubTemplateRepo{}
	store := &stubStore{}
	service := newTemplateService(t, templates, &stubPackageRepo{}, store)

	content := []byte(`{"a":1}`)
	resp, err := service.UploadTemplate(context.Background(), "report.json", "application/json", content)

	require.NoError(t, err)
	require.Len(t, templates.saved, 1)
	assert.Equal(t, templates.saved[0].Id, resp.TemplateId)
	assert.Equal(t, content, []byte(templates.saved[0].Keys))
	assert.Equal(t, "report.json", templates.saved[0].Name)

	require.Len(t, store.putKeys, 1)
	assert.Regexp(t, `^report_\d{8}_\d{6}\.json$`, store.putKeys[0])
	assert.Equal(t, store.putKeys[0], resp.StoredFile.Key)
	assert.Equal(t, int64(len(content)), resp.StoredFile.Size)
	assert.Empty(t, store.deleteKeys)
}

func TestUploadTemplate_InvalidJSON(t *testing.T) {
	templates := &stubTemplateRepo{}
	store := &stubStore{}
	service := newTemplateService(t, templates, &stubPackageRepo{}, store)

	_, err := service.UploadTemplate(context.Background(), "report.json", "application/json", []byte("{not json"))

	require.Error(t, err)
	apiErr, ok := err.(problem.APIError)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.Status)

	// failing before step 3 means no side effects at all
	assert.Empty(t, store.putKeys)
	assert.Empty(t, templates.saved)
}

func TestUploadTemplate_StoreUnavailable(t *testing.T) {
	templates := &stubTemplateRepo{}
	store := &stubStore{
		put: func(ctx context.Context, key string, data []byte, contentType string) (*models.StoredFile, error) {
			return nil, errors.New("connection refused")
		},
	}
	service := newTemplateService(t, templates, &stubPackageRepo{}, store)

	_, err := service.UploadTemplate(context.Background(), "report.json", "application/json", []byte(`{}`))

	require.Error(t, err)
	apiErr, ok := err.(problem.APIError)
	require.True(t, ok)
	assert.Equal(t, 502, apiErr.Status)
	assert.Empty(t, templates.saved)
}

func TestUploadTemplate_RegistrationFailureCompensates(t *testing.T) {
	templates := &stubTemplateRepo{
		save: func(ctx context.Context, template *models.Template) error {
			return errors.New("insert failed")
		},
	}
	store := &stubStore{}
	service := newTemplateService(t, templates, &stubPackageRepo{}, store)

	_, err := service.UploadTemplate(context.Background(), "report.json", "application/json", []byte(`{}`))

	require.Error(t, err)
	apiErr, ok := err.(problem.APIError)
	require.True(t, ok)
	assert.Equal(t, 500, apiErr.Status)

	// the stored object must not be left orphaned
	require.Len(t, store.putKeys, 1)
	assert.Equal(t, store.putKeys, store.deleteKeys)
}

func TestCreatePackage_UnknownTemplate(t *testing.T) {
	templates := &stubTemplateRepo{
		getByID: func(ctx context.Context, id string) (*models.Template, error) {
			return nil, nil
		},
	}
	packages := &stubPackageRepo{}
	service := newTemplateService(t, templates, packages, &stubStore{})

	_, err := service.CreatePackage(context.Background(), &models.CreatePackageInput{
		Name:       "batch-1",
		TemplateId: "missing",
	})

	require.Error(t, err)
	apiErr, ok := err.(problem.APIError)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.Status)
	assert.Empty(t, packages.saved)
}

func TestCreatePackage_Success(t *testing.T) {
	template := models.NewTemplate("report.json", []byte(`{}`))
	templates := &stubTemplateRepo{
		getByID: func(ctx context.Context, id string) (*models.Template, error) {
			return template, nil
		},
	}
	packages := &stubPackageRepo{}
	service := newTemplateService(t, templates, packages, &stubStore{})

	pkg, err := service.CreatePackage(context.Background(), &models.CreatePackageInput{
		Name:       "batch-1",
		TemplateId: template.Id,
		Data:       []byte(`{"rows":3}`),
		Files:      []string{"report_20240101_000000.json"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, pkg.Id)
	assert.Equal(t, template.Id, pkg.TemplateID)
	require.Len(t, packages.saved, 1)
}
