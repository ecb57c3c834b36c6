package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"template-service/models"
	"template-service/services"

	"github.com/google/uuid"
)

func buildTemplateUpload(t *testing.T, filename, columns string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte("Handle,Image Src\np1,a.jpg\n")); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.WriteField("columns", columns); err != nil {
		t.Fatalf("failed to write columns field: %v", err)
	}
	if err := writer.WriteField("row_mode", "per_product"); err != nil {
		t.Fatalf("failed to write row_mode field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestCreateTemplateHappyPath(t *testing.T) {
	var gotReq services.TemplateCreateRequest
	var gotUser string
	fake := &fakeTemplateService{
		createFn: func(_ context.Context, userID string, req services.TemplateCreateRequest, fileData []byte) (*models.SpreadsheetTemplate, error) {
			gotUser = userID
			gotReq = req
			if len(fileData) == 0 {
				t.Fatal("expected file bytes to reach the service")
			}
			return &models.SpreadsheetTemplate{ID: uuid.New(), UserID: userID, FileType: req.FileType}, nil
		},
	}

	controller := NewTemplateController(fake, NewRequestValidator())
	router := testRouter("user-1")
	router.POST("/templates", controller.CreateTemplate)

	columns := `[{"name":"Handle","role":"product_id"},{"name":"Image Src","role":"image_url"}]`
	body, contentType := buildTemplateUpload(t, "products.csv", columns)

	req := httptest.NewRequest(http.MethodPost, "/templates", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}
	if gotUser != "user-1" {
		t.Fatalf("expected user-1, got %q", gotUser)
	}
	if gotReq.FileName != "products.csv" || gotReq.FileType != "csv" {
		t.Fatalf("unexpected file metadata: %+v", gotReq)
	}
	if gotReq.RowMode != models.RowModePerProduct {
		t.Fatalf("expected row mode normalized to PER_PRODUCT, got %q", gotReq.RowMode)
	}
	if len(gotReq.Columns) != 2 || gotReq.Columns[1].Role != models.RoleImageURL {
		t.Fatalf("unexpected columns: %+v", gotReq.Columns)
	}
}

func TestCreateTemplateRejectsBadColumnsJSON(t *testing.T) {
	fake := &fakeTemplateService{
		createFn: func(context.Context, string, services.TemplateCreateRequest, []byte) (*models.SpreadsheetTemplate, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}
	controller := NewTemplateController(fake, NewRequestValidator())
	router := testRouter("user-1")
	router.POST("/templates", controller.CreateTemplate)

	body, contentType := buildTemplateUpload(t, "products.csv", "not-json")
	req := httptest.NewRequest(http.MethodPost, "/templates", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestCreateTemplateRejectsBadExtension(t *testing.T) {
	fake := &fakeTemplateService{
		createFn: func(context.Context, string, services.TemplateCreateRequest, []byte) (*models.SpreadsheetTemplate, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}
	controller := NewTemplateController(fake, NewRequestValidator())
	router := testRouter("user-1")
	router.POST("/templates", controller.CreateTemplate)

	body, contentType := buildTemplateUpload(t, "products.pdf", `[{"name":"A","role":"image_url"}]`)
	req := httptest.NewRequest(http.MethodPost, "/templates", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestGetTemplateMapsNotFound(t *testing.T) {
	fake := &fakeTemplateService{
		getFn: func(context.Context, string, uuid.UUID) (*models.SpreadsheetTemplate, error) {
			return nil, services.ErrTemplateNotFound
		},
	}
	controller := NewTemplateController(fake, NewRequestValidator())
	router := testRouter("user-1")
	router.GET("/templates/:id", controller.GetTemplate)

	req := httptest.NewRequest(http.MethodGet, "/templates/"+uuid.New().String(), nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestGetTemplateRejectsBadUUID(t *testing.T) {
	controller := NewTemplateController(&fakeTemplateService{}, NewRequestValidator())
	router := testRouter("user-1")
	router.GET("/templates/:id", controller.GetTemplate)

	req := httptest.NewRequest(http.MethodGet, "/templates/not-a-uuid", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestGetRowsReturnsParsedGrid(t *testing.T) {
	rows := [][]string{{"Handle", "Image Src"}, {"p1", "a.jpg"}}
	fake := &fakeTemplateService{
		rowsFn: func(context.Context, string, uuid.UUID) ([][]string, error) {
			return rows, nil
		},
	}
	controller := NewTemplateController(fake, NewRequestValidator())
	router := testRouter("user-1")
	router.GET("/templates/:id/rows", controller.GetRows)

	req := httptest.NewRequest(http.MethodGet, "/templates/"+uuid.New().String()+"/rows", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var resp struct {
		Rows [][]string `json:"rows"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Rows) != 2 || resp.Rows[0][0] != "Handle" {
		t.Fatalf("unexpected rows: %+v", resp.Rows)
	}
}

func TestHandlersRequireIdentity(t *testing.T) {
	controller := NewTemplateController(&fakeTemplateService{}, NewRequestValidator())
	router := testRouter("") // no identity injected
	router.GET("/templates/:id", controller.GetTemplate)

	req := httptest.NewRequest(http.MethodGet, "/templates/"+uuid.New().String(), nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}
