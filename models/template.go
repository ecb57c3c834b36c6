package models

import (
	"time"

	"github.com/google/uuid"
)

// ColumnRole identifies what a spreadsheet column holds. Besides the
// predefined roles below, any other string is treated as a custom role.
type ColumnRole string

const (
	RoleProductID       ColumnRole = "product_id"
	RoleSKU             ColumnRole = "sku"
	RoleImageURL        ColumnRole = "image_url"
	RoleImagePosition   ColumnRole = "image_position"
	RoleSEODescription  ColumnRole = "seo_description"
	RoleGeoDescription  ColumnRole = "geo_description"
	RoleGSODescription  ColumnRole = "gso_description"
	RoleTags            ColumnRole = "tags"
	RoleSEOTitle        ColumnRole = "seo_title"
	RoleMetaTitle       ColumnRole = "meta_title"
	RoleMetaDescription ColumnRole = "meta_description"
	RoleIgnore          ColumnRole = "ignore"
)

// RowMode describes how a template lays out products across rows.
type RowMode string

const (
	// RowModePerProduct keeps one row per product with one or more image columns.
	RowModePerProduct RowMode = "PER_PRODUCT"
	// RowModePerImage keeps one row per image, grouped by product id or SKU.
	RowModePerImage RowMode = "PER_IMAGE"
)

// Column maps a spreadsheet column to a role. Columns[i] describes the i-th
// cell of every row. The image_url role may appear on multiple columns; all
// other roles must be unique within a template.
type Column struct {
	Name       string     `json:"name" bson:"name"`
	Role       ColumnRole `json:"role" bson:"role"`
	MultiValue bool       `json:"multi_value" bson:"multi_value"`
	Separator  string     `json:"separator,omitempty" bson:"separator,omitempty"`
}

// Sep returns the configured multi-value separator, defaulting to a comma.
func (c Column) Sep() string {
	if c.Separator == "" {
		return ","
	}
	return c.Separator
}

// SpreadsheetTemplate is an uploaded product spreadsheet plus its column
// mapping. The original file bytes live in blob storage under StoragePath and
// are never mutated; all edits accumulate as scenarios and overrides.
type SpreadsheetTemplate struct {
	ID               uuid.UUID  `json:"id" bson:"_id"`
	UserID           string     `json:"user_id" bson:"user_id"`
	Columns          []Column   `json:"columns" bson:"columns"`
	RowMode          RowMode    `json:"row_mode" bson:"row_mode"`
	GroupByField     ColumnRole `json:"group_by_field" bson:"group_by_field"`
	StoragePath      string     `json:"storage_path" bson:"storage_path"`
	OriginalFileName string     `json:"original_file_name" bson:"original_file_name"`
	FileType         string     `json:"file_type" bson:"file_type"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" bson:"updated_at"`
}
