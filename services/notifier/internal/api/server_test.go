package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/api"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/config"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/models"

	"go.uber.org/zap"
)

type fakeReader struct {
	notifications map[string][]models.Notification
	read          map[string]bool
}

func (f *fakeReader) ListByCompany(ctx context.Context, companyID string) ([]models.Notification, error) {
	return f.notifications[companyID], nil
}

func (f *fakeReader) MarkRead(ctx context.Context, id string) (bool, error) {
	if _, ok := f.read[id]; !ok {
		return false, nil
	}
	f.read[id] = true
	return true, nil
}

func newTestServer(reader *fakeReader) *api.Server {
	return api.NewServer(reader, zap.NewNop(), &config.Config{HTTPAddr: ":0"})
}

func TestListNotifications(t *testing.T) {
	now := time.Now().UTC()
	reader := &fakeReader{
		notifications: map[string][]models.Notification{
			"co-1": {
				{ID: "n-2", CompanyID: "co-1", ApplicantID: "app-2", CreatedAt: now},
				{ID: "n-1", CompanyID: "co-1", ApplicantID: "app-1", CreatedAt: now.Add(-time.Hour)},
			},
		},
	}

	server := newTestServer(reader)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/co-1/notifications", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got []models.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].ID != "n-2" || got[1].ID != "n-1" {
		t.Errorf("expected newest first, got %q then %q", got[0].ID, got[1].ID)
	}
}

func TestListNotifications_EmptyCompany(t *testing.T) {
	server := newTestServer(&fakeReader{notifications: map[string][]models.Notification{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/co-9/notifications", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]" {
		t.Errorf("expected empty array, got %q", body)
	}
}

func TestMarkRead(t *testing.T) {
	reader := &fakeReader{read: map[string]bool{"n-1": false}}
	server := newTestServer(reader)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/n-1/read", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !reader.read["n-1"] {
		t.Error("expected notification to be marked read")
	}
}

func TestMarkRead_NotFound(t *testing.T) {
	server := newTestServer(&fakeReader{read: map[string]bool{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/missing/read", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
