package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type sample struct {
	Name  string `validate:"required"`
	Count int    `validate:"gte=1"`
}

func TestValidationErrorListsFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	err := validator.New().Struct(sample{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	resp := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(resp)
	c.Request = httptest.NewRequest(http.MethodPost, "/analyze", nil)
	ValidationError(c, http.StatusBadRequest, err)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code    string       `json:"code"`
			Details []FieldIssue `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %q", body.Error.Code)
	}
	if len(body.Error.Details) != 2 {
		t.Fatalf("expected 2 field issues, got %+v", body.Error.Details)
	}
	if body.Error.Details[0].Field != "sample.Name" || body.Error.Details[0].Issue != "is required" {
		t.Fatalf("unexpected first issue %+v", body.Error.Details[0])
	}
}

func TestFieldIssuesIgnoresOtherErrors(t *testing.T) {
	if got := FieldIssues(errors.New("boom")); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
