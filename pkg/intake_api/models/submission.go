package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// FormSubmission stores the decrypted payload of one webhook delivery.
// Rows are written exactly once and never updated.
type FormSubmission struct {
	ID          uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Submission  datatypes.JSON `gorm:"column:submission" json:"submission"`
	SubmittedAt time.Time      `gorm:"column:submitted_at" json:"submitted_at"`
}

// NewFormSubmission builds a FormSubmission from a decrypted payload.
// The auto-increment id is assigned by the database on insert.
func NewFormSubmission(payload json.RawMessage) *FormSubmission {
	return &FormSubmission{
		Submission:  datatypes.JSON(payload),
		SubmittedAt: time.Now(),
	}
}

// WebhookEnvelope is the outer wrapper delivered by a FormSG webhook call.
type WebhookEnvelope struct {
	Data WebhookData `json:"data" binding:"required"`
}

type WebhookData struct {
	FormID                 string            `json:"formId"`
	SubmissionID           string            `json:"submissionId"`
	EncryptedContent       string            `json:"encryptedContent"`
	Version                int               `json:"version"`
	Created                string            `json:"created"`
	AttachmentDownloadUrls map[string]string `json:"attachmentDownloadUrls,omitempty"`
	PaymentContent         json.RawMessage   `json:"paymentContent,omitempty"`
}

// WebhookResponse is returned by POST /formsg-webhook on success.
type WebhookResponse struct {
	Status           string          `json:"status"`
	DecryptedPayload json.RawMessage `json:"decryptedPayload"`
}
