package models

import "time"

// AddPosition says where a brand-new product row is inserted on export.
type AddPosition string

const (
	AddPositionLast   AddPosition = "last"
	AddPositionBefore AddPosition = "before"
)

// ExportOverride is the materialized image state for one product,
// last-write-wins. When present with a non-empty image list it supersedes
// scenario replay for that product; the scenarios stay around for history
// and rollback only.
type ExportOverride struct {
	Images           []string    `json:"images" bson:"images"`
	Categories       []string    `json:"categories,omitempty" bson:"categories,omitempty"`
	UpdatedAt        time.Time   `json:"updated_at" bson:"updated_at"`
	SourceTemplateID string      `json:"source_template_id,omitempty" bson:"source_template_id,omitempty"`
	IsNewProduct     bool        `json:"is_new_product,omitempty" bson:"is_new_product,omitempty"`
	ProductID        string      `json:"product_id,omitempty" bson:"product_id,omitempty"`
	SKU              string      `json:"sku,omitempty" bson:"sku,omitempty"`
	AddPosition      AddPosition `json:"add_position,omitempty" bson:"add_position,omitempty"`
	// InsertBeforeProductKey names the existing product this new product is
	// spliced in front of when AddPosition is "before".
	InsertBeforeProductKey string `json:"insert_before_product_key,omitempty" bson:"insert_before_product_key,omitempty"`
}

// DescriptionOverride holds per-product text edits keyed by column role
// (seo_description, meta_title, ...), independent of image overrides.
type DescriptionOverride struct {
	Fields    map[string]string `json:"fields" bson:"fields"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// OverrideDocument is the single document per template holding every
// product's overrides. The whole map is read, mutated and written back on
// each save; product keys may contain characters unsafe for path-style
// partial updates.
type OverrideDocument struct {
	ExportOverrides      map[string]ExportOverride      `json:"export_overrides" bson:"export_overrides"`
	DescriptionOverrides map[string]DescriptionOverride `json:"description_overrides" bson:"description_overrides"`
}

// NewOverrideDocument returns an empty document with initialized maps.
func NewOverrideDocument() *OverrideDocument {
	return &OverrideDocument{
		ExportOverrides:      make(map[string]ExportOverride),
		DescriptionOverrides: make(map[string]DescriptionOverride),
	}
}
