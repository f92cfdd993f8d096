package respond_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/agreeverse/internal/app/system/respond"
)

func TestOK_MergesExtra(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.OK(rec, http.StatusCreated, "Crop added", map[string]any{"id": "abc"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["success"] != true || body["message"] != "Crop added" || body["id"] != "abc" {
		t.Errorf("body = %v", body)
	}
}

func TestDecode(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Asha","extra":1}`))
	if err := respond.Decode(httptest.NewRecorder(), req, &dst, 1024); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dst.Name != "Asha" {
		t.Errorf("Name = %q", dst.Name)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	var dst map[string]any
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 100)+`"}`))
	if err := respond.Decode(httptest.NewRecorder(), req, &dst, 16); err == nil {
		t.Error("expected error for oversized body")
	}
}
