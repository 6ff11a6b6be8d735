package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peer-insights/internal/domain"
	"peer-insights/internal/usecase/dashboard"
	"peer-insights/internal/usecase/leaderboard"
	"peer-insights/internal/usecase/triage"
)

var updatedAt = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

type fakeDashboard struct {
	refreshErr error
	board      *triage.Board
	entries    []domain.LeaderboardEntry
	exportErr  error
	lastRange  domain.DateRange
}

func (f *fakeDashboard) RefreshLeaderboard(context.Context, domain.LeaderboardCategory, domain.TimeWindow) error {
	return f.refreshErr
}

func (f *fakeDashboard) Leaderboard(category domain.LeaderboardCategory, window domain.TimeWindow, userID string) (dashboard.Snapshot[leaderboard.Summary], error) {
	if f.entries == nil {
		return dashboard.Snapshot[leaderboard.Summary]{}, domain.ErrNoSnapshot
	}
	return dashboard.Snapshot[leaderboard.Summary]{Value: leaderboard.Summarize(category, window, f.entries, userID), UpdatedAt: updatedAt}, nil
}

func (f *fakeDashboard) RefreshEducators(context.Context) error { return f.refreshErr }

func (f *fakeDashboard) Educators(sortMode domain.EducatorSort, filter domain.EducatorFilter) (dashboard.Snapshot[[]domain.PeerEducatorActivity], error) {
	return dashboard.Snapshot[[]domain.PeerEducatorActivity]{Value: []domain.PeerEducatorActivity{{UserID: "e1"}}, UpdatedAt: updatedAt}, nil
}

func (f *fakeDashboard) RefreshTriage(context.Context) error { return f.refreshErr }

func (f *fakeDashboard) Triage() (dashboard.Snapshot[triage.Board], error) {
	if f.board == nil {
		return dashboard.Snapshot[triage.Board]{}, domain.ErrNoSnapshot
	}
	return dashboard.Snapshot[triage.Board]{Value: *f.board, UpdatedAt: updatedAt}, nil
}

func (f *fakeDashboard) RefreshAnalytics(_ context.Context, r domain.DateRange) error {
	f.lastRange = r
	return f.refreshErr
}

func (f *fakeDashboard) Analytics(r domain.DateRange) (dashboard.Snapshot[dashboard.AnalyticsView], error) {
	return dashboard.Snapshot[dashboard.AnalyticsView]{Value: dashboard.AnalyticsView{Range: r.Key(), Label: r.Label()}, UpdatedAt: updatedAt}, nil
}

func (f *fakeDashboard) ExportAnalytics(_ context.Context, r domain.DateRange, _ domain.ExportCause) (domain.ExportJob, error) {
	if f.exportErr != nil {
		return domain.ExportJob{}, f.exportErr
	}
	return domain.ExportJob{ID: "job-1", Range: r.Key(), GeneratedAt: updatedAt}, nil
}

func serve(t *testing.T, f *fakeDashboard, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(f, time.UTC, zerolog.Nop()).Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	rec := serve(t, &fakeDashboard{}, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLeaderboardBadSelector(t *testing.T) {
	rec := serve(t, &fakeDashboard{}, http.MethodGet, "/api/v1/leaderboard?category=loudest")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, &fakeDashboard{}, http.MethodGet, "/api/v1/leaderboard?window=yearly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaderboardWithUserRank(t *testing.T) {
	f := &fakeDashboard{entries: []domain.LeaderboardEntry{
		{UserID: "u1", Value: 5, Rank: 1},
		{UserID: "u2", Value: 3, Rank: 2},
	}}
	rec := serve(t, f, http.MethodGet, "/api/v1/leaderboard?category=helpful&user_id=u2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["user_rank"])
	assert.Equal(t, float64(2), data["participants"])
	assert.Equal(t, false, body["stale"])
}

func TestTriageServesStaleView(t *testing.T) {
	f := &fakeDashboard{
		refreshErr: errors.New("db down"),
		board:      &triage.Board{Reports: []domain.Report{{ID: "rep1", Status: domain.ReportPending}}},
	}
	rec := serve(t, f, http.MethodGet, "/api/v1/triage")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["stale"])
}

func TestTriageUnavailableWithoutSnapshot(t *testing.T) {
	f := &fakeDashboard{refreshErr: errors.New("db down")}
	rec := serve(t, f, http.MethodGet, "/api/v1/triage")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEducatorsBadFilter(t *testing.T) {
	rec := serve(t, &fakeDashboard{}, http.MethodGet, "/api/v1/educators?filter=sleepy")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, &fakeDashboard{}, http.MethodGet, "/api/v1/educators?sort=quality&filter=active")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyticsCustomRange(t *testing.T) {
	f := &fakeDashboard{}
	rec := serve(t, f, http.MethodGet, "/api/v1/analytics?range=custom&start=2026-05-01&end=2026-05-10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RangeCustom, f.lastRange.Kind)

	rec = serve(t, f, http.MethodGet, "/api/v1/analytics?range=custom&start=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, f, http.MethodGet, "/api/v1/analytics?range=365d")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	rec := serve(t, &fakeDashboard{}, http.MethodPost, "/api/v1/analytics/export?range=30d")
	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "job-1", body["job_id"])
	assert.Equal(t, "30d", body["range"])

	rec = serve(t, &fakeDashboard{exportErr: dashboard.ErrExportDisabled}, http.MethodPost, "/api/v1/analytics/export")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
