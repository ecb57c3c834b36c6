package models

import (
	"time"

	"github.com/google/uuid"
)

// ScenarioMode describes how a scenario's image list applies to the
// product's current image list during replay.
type ScenarioMode string

const (
	ModeReplaceAllImagesPerProduct ScenarioMode = "REPLACE_ALL_IMAGES_PER_PRODUCT"
	ModeAppendImagesPerProduct     ScenarioMode = "APPEND_IMAGES_PER_PRODUCT"
	ModeReplaceAllRowsPerImage     ScenarioMode = "REPLACE_ALL_ROWS_PER_IMAGE"
	ModeAppendRowsPerImage         ScenarioMode = "APPEND_ROWS_PER_IMAGE"
)

// IsReplace reports whether the mode discards the current list.
func (m ScenarioMode) IsReplace() bool {
	return m == ModeReplaceAllImagesPerProduct || m == ModeReplaceAllRowsPerImage
}

// IsValid reports whether the mode is one of the four known variants.
func (m ScenarioMode) IsValid() bool {
	switch m {
	case ModeReplaceAllImagesPerProduct, ModeAppendImagesPerProduct,
		ModeReplaceAllRowsPerImage, ModeAppendRowsPerImage:
		return true
	}
	return false
}

// Scenario records one image-set mutation for a product. Scenarios are
// append-only: they are never updated, only created by save actions and
// deleted by explicit user restores. They form the audit trail behind the
// materialized export overrides.
type Scenario struct {
	ID               uuid.UUID    `json:"id" bson:"_id"`
	TemplateID       uuid.UUID    `json:"template_id" bson:"template_id"`
	ProductKey       string       `json:"product_key" bson:"product_key"`
	RowMode          RowMode      `json:"row_mode" bson:"row_mode"`
	Mode             ScenarioMode `json:"mode" bson:"mode"`
	ImageURLs        []string     `json:"image_urls" bson:"image_urls"`
	RowIndices       []int        `json:"row_indices,omitempty" bson:"row_indices,omitempty"`
	GenerationID     string       `json:"generation_id,omitempty" bson:"generation_id,omitempty"`
	SourceTemplateID string       `json:"source_template_id,omitempty" bson:"source_template_id,omitempty"`
	CreatedAt        time.Time    `json:"created_at" bson:"created_at"`
}
