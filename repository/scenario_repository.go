package repository

import (
	"context"

	"template-service/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScenarioRepository struct {
	collection *mongo.Collection
}

func NewScenarioRepository(db *mongo.Database) *ScenarioRepository {
	return &ScenarioRepository{
		collection: db.Collection("scenarios"),
	}
}

func (r *ScenarioRepository) Create(ctx context.Context, sc *models.Scenario) error {
	_, err := r.collection.InsertOne(ctx, sc)
	return err
}

func (r *ScenarioRepository) FindByTemplate(ctx context.Context, templateID uuid.UUID) ([]models.Scenario, error) {
	return r.find(ctx, bson.M{"template_id": templateID})
}

func (r *ScenarioRepository) FindByProduct(ctx context.Context, templateID uuid.UUID, productKey string) ([]models.Scenario, error) {
	return r.find(ctx, bson.M{"template_id": templateID, "product_key": productKey})
}

func (r *ScenarioRepository) find(ctx context.Context, filter bson.M) ([]models.Scenario, error) {
	// Replay order; ties keep store iteration order.
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var scenarios []models.Scenario
	if err = cursor.All(ctx, &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

func (r *ScenarioRepository) DeleteByID(ctx context.Context, templateID, id uuid.UUID) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "template_id": templateID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *ScenarioRepository) DeleteByProduct(ctx context.Context, templateID uuid.UUID, productKey string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"template_id": templateID, "product_key": productKey})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *ScenarioRepository) DeleteByTemplate(ctx context.Context, templateID uuid.UUID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"template_id": templateID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
