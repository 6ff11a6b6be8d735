package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"peer-insights/internal/domain"
	"peer-insights/internal/usecase/dashboard"
	"peer-insights/internal/usecase/leaderboard"
	"peer-insights/internal/usecase/triage"
)

// Dashboard — операции панели, которые обслуживает API.
type Dashboard interface {
	RefreshLeaderboard(ctx context.Context, category domain.LeaderboardCategory, window domain.TimeWindow) error
	Leaderboard(category domain.LeaderboardCategory, window domain.TimeWindow, userID string) (dashboard.Snapshot[leaderboard.Summary], error)
	RefreshEducators(ctx context.Context) error
	Educators(sortMode domain.EducatorSort, filter domain.EducatorFilter) (dashboard.Snapshot[[]domain.PeerEducatorActivity], error)
	RefreshTriage(ctx context.Context) error
	Triage() (dashboard.Snapshot[triage.Board], error)
	RefreshAnalytics(ctx context.Context, r domain.DateRange) error
	Analytics(r domain.DateRange) (dashboard.Snapshot[dashboard.AnalyticsView], error)
	ExportAnalytics(ctx context.Context, r domain.DateRange, cause domain.ExportCause) (domain.ExportJob, error)
}

// Handler отдаёт представления панели в JSON.
type Handler struct {
	svc    Dashboard
	loc    *time.Location
	logger zerolog.Logger
}

// NewHandler создаёт обработчик. loc задаёт часовой пояс для дат пользовательского периода.
func NewHandler(svc Dashboard, loc *time.Location, logger zerolog.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{svc: svc, loc: loc, logger: logger}
}

// Register подключает маршруты к роутеру.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/leaderboard", h.leaderboard)
		api.Get("/educators", h.educators)
		api.Get("/triage", h.triage)
		api.Get("/analytics", h.analytics)
		api.Post("/analytics/export", h.export)
	})
}

type envelope[T any] struct {
	Data      T         `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
	Stale     bool      `json:"stale"`
}

// respond отдаёт последнее принятое представление. При ошибке пересчёта оно помечается устаревшим.
func respond[T any](w http.ResponseWriter, refreshErr error, get func() (dashboard.Snapshot[T], error)) {
	snap, err := get()
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			writeError(w, http.StatusServiceUnavailable, "данные временно недоступны")
			return
		}
		if isBadSelector(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, envelope[T]{Data: snap.Value, UpdatedAt: snap.UpdatedAt, Stale: refreshErr != nil})
}

func (h *Handler) refreshFailed(r *http.Request, view string, err error) {
	if err != nil {
		h.logger.Warn().Err(err).Str("view", view).Str("path", r.URL.Path).Msg("api: serving last committed view")
	}
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category, err := domain.ParseLeaderboardCategory(q.Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	window, err := domain.ParseTimeWindow(q.Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	refreshErr := h.svc.RefreshLeaderboard(r.Context(), category, window)
	h.refreshFailed(r, "leaderboard", refreshErr)
	respond(w, refreshErr, func() (dashboard.Snapshot[leaderboard.Summary], error) {
		return h.svc.Leaderboard(category, window, q.Get("user_id"))
	})
}

func (h *Handler) educators(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortMode, err := domain.ParseEducatorSort(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := domain.ParseEducatorFilter(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	refreshErr := h.svc.RefreshEducators(r.Context())
	h.refreshFailed(r, "educators", refreshErr)
	respond(w, refreshErr, func() (dashboard.Snapshot[[]domain.PeerEducatorActivity], error) {
		return h.svc.Educators(sortMode, filter)
	})
}

func (h *Handler) triage(w http.ResponseWriter, r *http.Request) {
	refreshErr := h.svc.RefreshTriage(r.Context())
	h.refreshFailed(r, "triage", refreshErr)
	respond(w, refreshErr, h.svc.Triage)
}

func (h *Handler) dateRange(r *http.Request) (domain.DateRange, error) {
	q := r.URL.Query()
	return domain.ParseDateRange(q.Get("range"), q.Get("start"), q.Get("end"), h.loc)
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	refreshErr := h.svc.RefreshAnalytics(r.Context(), dr)
	if isBadSelector(refreshErr) {
		writeError(w, http.StatusBadRequest, refreshErr.Error())
		return
	}
	h.refreshFailed(r, "analytics", refreshErr)
	respond(w, refreshErr, func() (dashboard.Snapshot[dashboard.AnalyticsView], error) {
		return h.svc.Analytics(dr)
	})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := h.svc.ExportAnalytics(r.Context(), dr, domain.ExportCauseManual)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]any{
			"job_id":       job.ID,
			"range":        job.Range,
			"generated_at": job.GeneratedAt,
		})
	case errors.Is(err, dashboard.ErrExportDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case isBadSelector(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("api: export failed")
		writeError(w, http.StatusBadGateway, "export failed")
	}
}

func isBadSelector(err error) bool {
	return errors.Is(err, domain.ErrUnknownSortMode) ||
		errors.Is(err, domain.ErrUnknownFilterMode) ||
		errors.Is(err, domain.ErrUnknownDateRange) ||
		errors.Is(err, domain.ErrInvalidCustomRange) ||
		errors.Is(err, domain.ErrUnknownWindow) ||
		errors.Is(err, domain.ErrUnknownLeaderboardCategory)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
