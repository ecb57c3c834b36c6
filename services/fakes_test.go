package services

import (
	"context"
	"fmt"
	"time"

	"template-service/models"
	"template-service/repository"
	"template-service/storage"

	"github.com/google/uuid"
)

type fakeTemplateRepo struct {
	templates map[uuid.UUID]*models.SpreadsheetTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[uuid.UUID]*models.SpreadsheetTemplate)}
}

func (r *fakeTemplateRepo) Create(_ context.Context, tmpl *models.SpreadsheetTemplate) error {
	cp := *tmpl
	r.templates[tmpl.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) FindByID(_ context.Context, id uuid.UUID) (*models.SpreadsheetTemplate, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *tmpl
	return &cp, nil
}

func (r *fakeTemplateRepo) FindByUser(_ context.Context, userID string) ([]models.SpreadsheetTemplate, error) {
	var out []models.SpreadsheetTemplate
	for _, tmpl := range r.templates {
		if tmpl.UserID == userID {
			out = append(out, *tmpl)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := r.templates[id]; !ok {
		return 0, nil
	}
	delete(r.templates, id)
	return 1, nil
}

type fakeScenarioRepo struct {
	scenarios []models.Scenario
}

func (r *fakeScenarioRepo) Create(_ context.Context, sc *models.Scenario) error {
	r.scenarios = append(r.scenarios, *sc)
	return nil
}

func (r *fakeScenarioRepo) FindByTemplate(_ context.Context, templateID uuid.UUID) ([]models.Scenario, error) {
	var out []models.Scenario
	for _, sc := range r.scenarios {
		if sc.TemplateID == templateID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (r *fakeScenarioRepo) FindByProduct(_ context.Context, templateID uuid.UUID, productKey string) ([]models.Scenario, error) {
	var out []models.Scenario
	for _, sc := range r.scenarios {
		if sc.TemplateID == templateID && sc.ProductKey == productKey {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (r *fakeScenarioRepo) DeleteByID(_ context.Context, templateID, id uuid.UUID) (int64, error) {
	return r.deleteWhere(func(sc models.Scenario) bool {
		return sc.TemplateID == templateID && sc.ID == id
	}), nil
}

func (r *fakeScenarioRepo) DeleteByProduct(_ context.Context, templateID uuid.UUID, productKey string) (int64, error) {
	return r.deleteWhere(func(sc models.Scenario) bool {
		return sc.TemplateID == templateID && sc.ProductKey == productKey
	}), nil
}

func (r *fakeScenarioRepo) DeleteByTemplate(_ context.Context, templateID uuid.UUID) (int64, error) {
	return r.deleteWhere(func(sc models.Scenario) bool {
		return sc.TemplateID == templateID
	}), nil
}

func (r *fakeScenarioRepo) deleteWhere(match func(models.Scenario) bool) int64 {
	var kept []models.Scenario
	var deleted int64
	for _, sc := range r.scenarios {
		if match(sc) {
			deleted++
			continue
		}
		kept = append(kept, sc)
	}
	r.scenarios = kept
	return deleted
}

type fakeOverrideRepo struct {
	docs map[uuid.UUID]*models.OverrideDocument
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{docs: make(map[uuid.UUID]*models.OverrideDocument)}
}

func (r *fakeOverrideRepo) Get(_ context.Context, templateID uuid.UUID) (*models.OverrideDocument, error) {
	doc, ok := r.docs[templateID]
	if !ok {
		return models.NewOverrideDocument(), nil
	}
	cp := models.NewOverrideDocument()
	for k, v := range doc.ExportOverrides {
		cp.ExportOverrides[k] = v
	}
	for k, v := range doc.DescriptionOverrides {
		cp.DescriptionOverrides[k] = v
	}
	return cp, nil
}

func (r *fakeOverrideRepo) Put(_ context.Context, templateID uuid.UUID, doc *models.OverrideDocument) error {
	r.docs[templateID] = doc
	return nil
}

func (r *fakeOverrideRepo) Delete(_ context.Context, templateID uuid.UUID) error {
	delete(r.docs, templateID)
	return nil
}

type fakeBlobStore struct {
	objects map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (b *fakeBlobStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	b.objects[key] = data
	return nil
}

func (b *fakeBlobStore) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := b.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (b *fakeBlobStore) Delete(_ context.Context, key string) error {
	delete(b.objects, key)
	return nil
}

func (b *fakeBlobStore) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://blob.test/put/%s", key), nil
}

func (b *fakeBlobStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://blob.test/get/%s", key), nil
}
