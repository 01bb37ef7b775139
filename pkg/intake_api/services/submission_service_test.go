package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/s10-intake/intake-api/pkg/intake_api/formsg"
	problem "github.com/s10-intake/intake-api/pkg/intake_api/helpers/problem"
	"github.com/s10-intake/intake-api/pkg/intake_api/models"
	"github.com/s10-intake/intake-api/pkg/intake_api/services"
	"github.com/s10-intake/intake-api/pkg/intake_api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSubmissionRepo implements repositories.SubmissionRepository for testing
type stubSubmissionRepo struct {
	saved []*models.FormSubmission
	save  func(ctx context.Context, submission *models.FormSubmission) error
}

func (s *stubSubmissionRepo) Save(ctx context.Context, submission *models.FormSubmission) error {
	if s.save != nil {
		if err := s.save(ctx, submission); err != nil {
			return err
		}
	}
	s.saved = append(s.saved, submission)
	return nil
}

func (s *stubSubmissionRepo) GetSubmissions(ctx context.Context) ([]models.FormSubmission, error) {
	return nil, nil
}

// stubDecrypter implements formsg.Decrypter for testing
type stubDecrypter struct {
	fn func(content string) (json.RawMessage, error)
}

func (d *stubDecrypter) Decrypt(content string) (json.RawMessage, error) {
	return d.fn(content)
}

func envelope(encryptedContent string) *models.WebhookEnvelope {
	return &models.WebhookEnvelope{
		Data: models.WebhookData{
			FormID:           "form-1",
			SubmissionID:     "sub-1",
			EncryptedContent: encryptedContent,
			Version:          1,
		},
	}
}

func TestHandleSubmission_MissingEncryptedContent(t *testing.T) {
	repo := &stubSubmissionRepo{}
	service := services.NewSubmissionService(repo, &stubDecrypter{
		fn: func(string) (json.RawMessage, error) { t.Fatal("decrypt must not be called"); return nil, nil },
	}, &stubStore{})

	_, err := service.HandleSubmission(context.Background(), envelope(""))

	require.Error(t, err)
	apiErr, ok := err.(problem.APIError)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "Missing encryptedContent in payload", apiErr.Errors[0].Detail)
	assert.Empty(t, repo.saved)
}

func TestHandleSubmission_DecryptionFailed(t *testing.T) {
	repo := &stubSubmissionRepo{}
	service := services.NewSubmissionService(repo, &stubDecrypter{
		fn: func(string) (json.RawMessage, error) { return nil, formsg.ErrDecryptionFailed },
	}, &stubStore{})

	_, err := service.HandleSubmission(context.Background(), envelope("garbage"))

	require.Error(t, err)
	apiErr, ok := err.(problem.APIError)
	require.True(t, ok)
	assert.Equal(t, 422, apiErr.Status)
	assert.Empty(t, repo.saved)
}

func TestHandleSubmission_PersistenceFailed(t *testing.T) {
	repo := &stubSubmissionRepo{
		save: func(ctx context.Context, submission *models.FormSubmission) error {
			return errors.New("insert failed")
		},
	}
	service := services.NewSubmissionService(repo, &stubDecrypter{
		fn: func(string) (json.RawMessage, error) { return json.RawMessage(`{"a":1}`), nil },
	}, &stubStore{})

	_, err := service.HandleSubmission(context.Background(), envelope("sealed"))

	require.Error(t, err)
	apiErr, ok := err.(problem.APIError)
	require.True(t, ok)
	// distinct from a decryption failure: the payload was decrypted fine
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "persistence_failed", apiErr.Errors[0].Code)
	assert.Empty(t, repo.saved)
}

func TestHandleSubmission_ArchivesAttachments(t *testing.T) {
	served := make(chan struct{}, 2)
	fileServer := testutil.NewTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() { served <- struct{}{} }()
		if r.URL.Path == "/attachments/photo" {
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png-bytes"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	type putCall struct {
		key         string
		data        []byte
		contentType string
	}
	puts := make(chan putCall, 2)
	store := &stubStore{
		put: func(ctx context.Context, key string, data []byte, contentType string) (*models.StoredFile, error) {
			puts <- putCall{key: key, data: data, contentType: contentType}
			return &models.StoredFile{Key: key, Size: int64(len(data)), ContentType: contentType}, nil
		},
	}

	repo := &stubSubmissionRepo{
		save: func(ctx context.Context, submission *models.FormSubmission) error {
			submission.ID = 7
			return nil
		},
	}
	service := services.NewSubmissionService(repo, &stubDecrypter{
		fn: func(string) (json.RawMessage, error) { return json.RawMessage(`{"responses":[]}`), nil },
	}, store)

	delivery := envelope("sealed")
	delivery.Data.AttachmentDownloadUrls = map[string]string{
		"photo":   fileServer.URL + "/attachments/photo",
		"missing": fileServer.URL + "/attachments/missing",
	}

	_, err := service.HandleSubmission(context.Background(), delivery)
	require.NoError(t, err)

	select {
	case call := <-puts:
		assert.Equal(t, "submissions/7/photo", call.key)
		assert.Equal(t, []byte("png-bytes"), call.data)
		assert.Equal(t, "image/png", call.contentType)
	case <-time.After(5 * time.Second):
		t.Fatal("attachment was never archived")
	}

	// the 404 download is skipped, not stored
	<-served
	<-served
	select {
	case call := <-puts:
		t.Fatalf("unexpected archive of %s", call.key)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandleSubmission_Success(t *testing.T) {
	payload := json.RawMessage(`{"responses":[{"question":"Name","answer":"Alice"}]}`)
	repo := &stubSubmissionRepo{}
	service := services.NewSubmissionService(repo, &stubDecrypter{
		fn: func(string) (json.RawMessage, error) { return payload, nil },
	}, &stubStore{})

	resp, err := service.HandleSubmission(context.Background(), envelope("sealed"))

	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.JSONEq(t, string(payload), string(resp.DecryptedPayload))

	require.Len(t, repo.saved, 1)
	assert.JSONEq(t, string(payload), string(repo.saved[0].Submission))
	assert.False(t, repo.saved[0].SubmittedAt.IsZero())
}
