package models

import (
	"encoding/json"
	"time"

	"github.com/teris-io/shortid"
	"gorm.io/datatypes"
)

// Package bundles submission data against a registered template.
// Files holds the ordered object-store keys of the artifacts belonging to
// this package.
type Package struct {
	Id         string         `gorm:"column:id;primaryKey" json:"id"`
	Name       string         `gorm:"column:name" json:"name"`
	TemplateID string         `gorm:"column:template_id" json:"templateId"`
	Template   *Template      `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Data       datatypes.JSON `gorm:"column:data" json:"data,omitempty"`
	Files      datatypes.JSON `gorm:"column:files" json:"files,omitempty"`
	CreatedAt  time.Time      `gorm:"column:created_at" json:"createdAt"`
}

// NewPackage builds a fully-populated Package with a fresh short id.
func NewPackage(name, templateID string, data json.RawMessage, files []string) (*Package, error) {
	fileRefs, err := json.Marshal(files)
	if err != nil {
		return nil, err
	}
	return &Package{
		Id:         shortid.MustGenerate(),
		Name:       name,
		TemplateID: templateID,
		Data:       datatypes.JSON(data),
		Files:      datatypes.JSON(fileRefs),
		CreatedAt:  time.Now(),
	}, nil
}

type CreatePackageInput struct {
	Name       string          `json:"name" binding:"required"`
	TemplateId string          `json:"templateId" binding:"required"`
	Data       json.RawMessage `json:"data,omitempty"`
	Files      []string        `json:"files,omitempty"`
}
