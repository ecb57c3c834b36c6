package repository

import (
	"context"
	"errors"
	"time"

	"template-service/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// overrideRecord is the stored shape: one document per template keyed by the
// template id. The maps are replaced wholesale on every write because
// product keys can contain dots and other characters unsafe for path-style
// field updates.
type overrideRecord struct {
	ID                   uuid.UUID                             `bson:"_id"`
	ExportOverrides      map[string]models.ExportOverride      `bson:"export_overrides"`
	DescriptionOverrides map[string]models.DescriptionOverride `bson:"description_overrides"`
	UpdatedAt            time.Time                             `bson:"updated_at"`
}

type OverrideRepository struct {
	collection *mongo.Collection
}

func NewOverrideRepository(db *mongo.Database) *OverrideRepository {
	return &OverrideRepository{
		collection: db.Collection("overrides"),
	}
}

// Get loads the template's override document, returning an initialized
// empty document when none has been written yet.
func (r *OverrideRepository) Get(ctx context.Context, templateID uuid.UUID) (*models.OverrideDocument, error) {
	var rec overrideRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": templateID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewOverrideDocument(), nil
	}
	if err != nil {
		return nil, err
	}

	doc := &models.OverrideDocument{
		ExportOverrides:      rec.ExportOverrides,
		DescriptionOverrides: rec.DescriptionOverrides,
	}
	if doc.ExportOverrides == nil {
		doc.ExportOverrides = make(map[string]models.ExportOverride)
	}
	if doc.DescriptionOverrides == nil {
		doc.DescriptionOverrides = make(map[string]models.DescriptionOverride)
	}
	return doc, nil
}

// Put writes the whole document back, creating it on first save.
func (r *OverrideRepository) Put(ctx context.Context, templateID uuid.UUID, doc *models.OverrideDocument) error {
	rec := overrideRecord{
		ID:                   templateID,
		ExportOverrides:      doc.ExportOverrides,
		DescriptionOverrides: doc.DescriptionOverrides,
		UpdatedAt:            time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": templateID}, rec, opts)
	return err
}

func (r *OverrideRepository) Delete(ctx context.Context, templateID uuid.UUID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": templateID})
	return err
}
