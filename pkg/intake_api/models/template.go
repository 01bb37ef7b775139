package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Template is a named keys-definition record. The keys blob is the uploaded
// JSON document, stored verbatim; packages reference templates by id.
type Template struct {
	Id        string         `gorm:"column:id;primaryKey" json:"templateId"`
	Name      string         `gorm:"column:name" json:"name"`
	Keys      datatypes.JSON `gorm:"column:keys" json:"keys"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}

// NewTemplate builds a fully-populated Template with a fresh id and
// timestamps. The id is assigned here and never mutated afterwards.
func NewTemplate(name string, keys []byte) *Template {
	now := time.Now()
	return &Template{
		Id:        uuid.NewString(),
		Name:      name,
		Keys:      datatypes.JSON(keys),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StoredFile is the object-store-side view of an uploaded artifact.
// Records reference it by key, never by embedded copy.
type StoredFile struct {
	Key         string `json:"key"`
	Url         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// UploadTemplateResponse is returned by POST /upload-template.
type UploadTemplateResponse struct {
	TemplateId string     `json:"templateId"`
	StoredFile StoredFile `json:"storedFile"`
}

type RetrieveTemplateRequest struct {
	Id string `path:"id"`
}
