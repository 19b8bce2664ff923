package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	scaffolddomain "github.com/launchforge/launchforge/internal/scaffold/domain"
	"go.uber.org/zap"
)

type fakeScaffoldService struct {
	created scaffolddomain.Blueprint
	err     error
}

func (f *fakeScaffoldService) Options() []scaffolddomain.Step {
	return scaffolddomain.Catalog()
}

func (f *fakeScaffoldService) Validate(sel scaffolddomain.Selection) error {
	return f.err
}

func (f *fakeScaffoldService) Create(ctx context.Context, req scaffolddomain.CreateBlueprintRequest) (scaffolddomain.Blueprint, error) {
	if f.err != nil {
		return scaffolddomain.Blueprint{}, f.err
	}
	return f.created, nil
}

func (f *fakeScaffoldService) GetByID(ctx context.Context, req scaffolddomain.GetBlueprintRequest) (scaffolddomain.Blueprint, error) {
	if f.err != nil {
		return scaffolddomain.Blueprint{}, f.err
	}
	return f.created, nil
}

func (f *fakeScaffoldService) List(ctx context.Context, req scaffolddomain.ListBlueprintRequest) (scaffolddomain.ListBlueprintResponse, error) {
	return scaffolddomain.ListBlueprintResponse{Blueprints: []scaffolddomain.Blueprint{f.created}}, f.err
}

func newScaffoldRouter(svc scaffolddomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	srv := &Server{log: zap.NewNop(), scaffoldSvc: svc}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/scaffold/options", srv.ListScaffoldOptions)
	router.POST("/api/scaffold/blueprints", srv.CreateBlueprint)
	router.GET("/api/scaffold/blueprints", srv.ListBlueprints)
	router.GET("/api/scaffold/blueprints/:id", srv.GetBlueprint)
	return router
}

func TestListScaffoldOptions(t *testing.T) {
	router := newScaffoldRouter(&fakeScaffoldService{})

	req := httptest.NewRequest(http.MethodGet, "/api/scaffold/options", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body struct {
		Steps []scaffolddomain.Step `json:"steps"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Steps) != 9 {
		t.Fatalf("expected 9 steps, got %d", len(body.Steps))
	}
}

func TestCreateBlueprintValidationError(t *testing.T) {
	router := newScaffoldRouter(&fakeScaffoldService{
		err: &scaffolddomain.SelectionError{Step: scaffolddomain.StepPayment, Value: "paypal"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/scaffold/blueprints",
		bytes.NewBufferString(`{"name":"my-saas","selection":{}}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %s", body.Error.Type)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Field != scaffolddomain.StepPayment {
		t.Fatalf("expected payment field error, got %+v", body.Error.Errors)
	}
}

func TestGetBlueprintNotFound(t *testing.T) {
	router := newScaffoldRouter(&fakeScaffoldService{err: scaffolddomain.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/scaffold/blueprints/123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
