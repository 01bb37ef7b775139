package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/s10-intake/intake-api/pkg/intake_api/formsg"
	problem "github.com/s10-intake/intake-api/pkg/intake_api/helpers/problem"
	"github.com/s10-intake/intake-api/pkg/intake_api/models"
	"github.com/s10-intake/intake-api/pkg/intake_api/repositories"
	"github.com/s10-intake/intake-api/pkg/intake_api/storage"
	"github.com/s10-intake/intake-api/pkg/tools"
)

// SubmissionService handles webhook-delivered form submissions: it decrypts
// the envelope, persists the payload and archives any attachments.
type SubmissionService struct {
	submissions repositories.SubmissionRepository
	decrypter   formsg.Decrypter
	store       storage.ObjectStore
	httpClient  *http.Client
}

func NewSubmissionService(
	submissions repositories.SubmissionRepository,
	decrypter formsg.Decrypter,
	store storage.ObjectStore,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		decrypter:   decrypter,
		store:       store,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// HandleSubmission decrypts and persists one webhook delivery. Decryption
// failures and persistence failures are reported distinctly: the former means
// no side effect happened at all, the latter means the payload was decrypted
// but the row was not written.
func (s *SubmissionService) HandleSubmission(ctx context.Context, envelope *models.WebhookEnvelope) (*models.WebhookResponse, error) {
	if envelope.Data.EncryptedContent == "" {
		return nil, problem.NewMissingField("encryptedContent")
	}

	payload, err := s.decrypter.Decrypt(envelope.Data.EncryptedContent)
	if err != nil {
		return nil, problem.NewDecryptionFailed(err.Error())
	}

	submission := models.NewFormSubmission(payload)
	if err := s.submissions.Save(ctx, submission); err != nil {
		return nil, problem.NewPersistenceFailed(err.Error())
	}

	if len(envelope.Data.AttachmentDownloadUrls) > 0 {
		id := submission.ID
		urls := envelope.Data.AttachmentDownloadUrls
		tools.Dispatch(context.Background(), "archive_attachments", func(ctx context.Context) error {
			return s.archiveAttachments(ctx, id, urls)
		})
	}

	return &models.WebhookResponse{
		Status:           "success",
		DecryptedPayload: payload,
	}, nil
}

func (s *SubmissionService) ListSubmissions(ctx context.Context) ([]models.FormSubmission, error) {
	return s.submissions.GetSubmissions(ctx)
}

// archiveAttachments copies the envelope's attachment downloads into the
// object store under submissions/<id>/. Best effort, no retries; a failed
// attachment is logged and skipped.
func (s *SubmissionService) archiveAttachments(ctx context.Context, submissionID uint, urls map[string]string) error {
	for fieldID, url := range urls {
		if err := s.archiveAttachment(ctx, submissionID, fieldID, url); err != nil {
			log.Printf("[WARN] failed to archive attachment %s of submission %d: %v", fieldID, submissionID, err)
		}
	}
	return nil
}

func (s *SubmissionService) archiveAttachment(ctx context.Context, submissionID uint, fieldID, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	key := storage.ObjectKey(fmt.Sprintf("submissions/%d", submissionID), fieldID)
	_, err = s.store.Put(ctx, key, data, resp.Header.Get("Content-Type"))
	return err
}
