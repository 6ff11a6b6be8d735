package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"peer-insights/internal/domain"
	"peer-insights/internal/infra/metrics"
	"peer-insights/internal/usecase/analytics"
	"peer-insights/internal/usecase/educators"
	"peer-insights/internal/usecase/leaderboard"
	"peer-insights/internal/usecase/triage"
)

// Options настраивает сервис панели.
type Options struct {
	Location         *time.Location
	TriageLimit      int
	ReplyConcurrency int
	Now              func() time.Time
}

type leaderboardKey struct {
	category domain.LeaderboardCategory
	window   domain.TimeWindow
}

// AnalyticsView — сводка аналитики вместе с производными строками.
type AnalyticsView struct {
	Range    string                 `json:"range"`
	Label    string                 `json:"label"`
	Metrics  domain.Analytics       `json:"metrics"`
	Insights domain.Insights        `json:"insights"`
	Rows     []domain.CategoryCount `json:"categories"`
}

// Service пересчитывает представления панели и хранит последние принятые результаты.
type Service struct {
	store  domain.Store
	queue  domain.ExportQueue
	logger zerolog.Logger

	loc              *time.Location
	triageLimit      int
	replyConcurrency int
	now              func() time.Time

	leaderboards *keyed[leaderboardKey, []domain.LeaderboardEntry]
	educators    *Latest[[]domain.PeerEducatorActivity]
	triage       *Latest[triage.Board]
	analytics    *keyed[string, AnalyticsView]
}

// NewService создаёт сервис. queue может быть nil, тогда выгрузка недоступна.
func NewService(store domain.Store, queue domain.ExportQueue, logger zerolog.Logger, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TriageLimit <= 0 {
		opts.TriageLimit = triage.DefaultLimit
	}
	if opts.ReplyConcurrency <= 0 {
		opts.ReplyConcurrency = 8
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:            store,
		queue:            queue,
		logger:           logger,
		loc:              opts.Location,
		triageLimit:      opts.TriageLimit,
		replyConcurrency: opts.ReplyConcurrency,
		now:              opts.Now,
		leaderboards:     newKeyed[leaderboardKey, []domain.LeaderboardEntry]("leaderboard"),
		educators:        NewLatest[[]domain.PeerEducatorActivity]("educators"),
		triage:           NewLatest[triage.Board]("triage"),
		analytics:        newKeyed[string, AnalyticsView]("analytics"),
	}
}

func (s *Service) failed(view string, err error) error {
	s.logger.Error().Err(err).Str("view", view).Msg("dashboard: refresh failed, keeping previous view")
	return err
}

// RefreshLeaderboard пересчитывает рейтинг для категории и окна.
func (s *Service) RefreshLeaderboard(ctx context.Context, category domain.LeaderboardCategory, window domain.TimeWindow) error {
	key := leaderboardKey{category: category, window: window}
	token := s.leaderboards.get(key).Begin()

	data, err := s.loadLeaderboard(ctx)
	if err != nil {
		return s.failed("leaderboard", err)
	}
	return s.commitLeaderboard(key, token, data)
}

// RefreshLeaderboards пересчитывает все категории и окна по одной загрузке записей.
func (s *Service) RefreshLeaderboards(ctx context.Context) error {
	tokens := make(map[leaderboardKey]uint64, len(leaderboardKeys))
	for _, key := range leaderboardKeys {
		tokens[key] = s.leaderboards.get(key).Begin()
	}

	data, err := s.loadLeaderboard(ctx)
	if err != nil {
		return s.failed("leaderboard", err)
	}
	var errs []error
	for _, key := range leaderboardKeys {
		errs = append(errs, s.commitLeaderboard(key, tokens[key], data))
	}
	return errors.Join(errs...)
}

var leaderboardKeys = func() []leaderboardKey {
	categories := []domain.LeaderboardCategory{
		domain.LeaderboardHelpful, domain.LeaderboardEngaged, domain.LeaderboardStreaks,
		domain.LeaderboardBadges, domain.LeaderboardCategoryExpert,
	}
	windows := []domain.TimeWindow{domain.WindowAllTime, domain.WindowMonthly, domain.WindowWeekly}
	keys := make([]leaderboardKey, 0, len(categories)*len(windows))
	for _, c := range categories {
		for _, w := range windows {
			keys = append(keys, leaderboardKey{category: c, window: w})
		}
	}
	return keys
}()

func (s *Service) commitLeaderboard(key leaderboardKey, token uint64, data leaderboardData) error {
	start := time.Now()
	now := s.now()
	entries, err := leaderboard.Build(key.category, key.window, leaderboard.Input{
		Posts:   data.posts,
		Replies: data.replies,
		Users:   data.users,
		Badges:  data.badges,
		Streaks: data.streaks,
	}, now)
	metrics.ObserveAggregation("leaderboard", start)
	if err != nil {
		return s.failed("leaderboard", err)
	}
	if s.leaderboards.get(key).Commit(token, entries, now) {
		s.logger.Debug().Str("category", string(key.category)).Str("window", string(key.window)).Int("entries", len(entries)).Msg("dashboard: leaderboard refreshed")
	}
	return nil
}

// Leaderboard возвращает последний принятый рейтинг с позицией пользователя userID.
func (s *Service) Leaderboard(category domain.LeaderboardCategory, window domain.TimeWindow, userID string) (Snapshot[leaderboard.Summary], error) {
	snap, ok := s.leaderboards.get(leaderboardKey{category: category, window: window}).Get()
	if !ok {
		return Snapshot[leaderboard.Summary]{}, domain.ErrNoSnapshot
	}
	return Snapshot[leaderboard.Summary]{
		Value:     leaderboard.Summarize(category, window, snap.Value, userID),
		UpdatedAt: snap.UpdatedAt,
	}, nil
}

// RefreshEducators пересчитывает карточки всех волонтёров.
func (s *Service) RefreshEducators(ctx context.Context) error {
	token := s.educators.Begin()

	data, err := s.loadEducators(ctx)
	if err != nil {
		return s.failed("educators", err)
	}
	start := time.Now()
	now := s.now()
	roster, err := educators.Roster(data.users, educators.Input{
		Sessions: data.sessions,
		Replies:  data.replies,
		Posts:    data.posts,
		Activity: data.activity,
	}, domain.SortByActivity, domain.FilterAll, now)
	metrics.ObserveAggregation("educators", start)
	if err != nil {
		return s.failed("educators", err)
	}
	if s.educators.Commit(token, roster, now) {
		s.logger.Debug().Int("educators", len(roster)).Msg("dashboard: educators refreshed")
	}
	return nil
}

// Educators возвращает последние карточки волонтёров в выбранном порядке.
func (s *Service) Educators(sortMode domain.EducatorSort, filter domain.EducatorFilter) (Snapshot[[]domain.PeerEducatorActivity], error) {
	snap, ok := s.educators.Get()
	if !ok {
		return Snapshot[[]domain.PeerEducatorActivity]{}, domain.ErrNoSnapshot
	}
	items := slices.Clone(snap.Value)
	if err := educators.Sort(items, sortMode); err != nil {
		return Snapshot[[]domain.PeerEducatorActivity]{}, err
	}
	items, err := educators.Filter(items, filter)
	if err != nil {
		return Snapshot[[]domain.PeerEducatorActivity]{}, err
	}
	return Snapshot[[]domain.PeerEducatorActivity]{Value: items, UpdatedAt: snap.UpdatedAt}, nil
}

// RefreshTriage пересчитывает панели разбора.
func (s *Service) RefreshTriage(ctx context.Context) error {
	token := s.triage.Begin()

	data, err := s.loadTriage(ctx)
	if err != nil {
		return s.failed("triage", err)
	}
	start := time.Now()
	board := triage.BuildBoard(data.posts, data.reports, data.sessions, s.triageLimit)
	metrics.ObserveAggregation("triage", start)
	s.triage.Commit(token, board, s.now())
	return nil
}

// Triage возвращает последние панели разбора.
func (s *Service) Triage() (Snapshot[triage.Board], error) {
	snap, ok := s.triage.Get()
	if !ok {
		return Snapshot[triage.Board]{}, domain.ErrNoSnapshot
	}
	return snap, nil
}

// RefreshAnalytics пересчитывает аналитику за период r.
func (s *Service) RefreshAnalytics(ctx context.Context, r domain.DateRange) error {
	latest := s.analytics.get(analyticsSlot(r))
	token := latest.Begin()

	view, err := s.computeAnalytics(ctx, r)
	if err != nil {
		return s.failed("analytics", err)
	}
	latest.Commit(token, view, s.now())
	return nil
}

func (s *Service) computeAnalytics(ctx context.Context, r domain.DateRange) (AnalyticsView, error) {
	data, err := s.loadAnalytics(ctx)
	if err != nil {
		return AnalyticsView{}, err
	}
	start := time.Now()
	defer metrics.ObserveAggregation("analytics", start)
	a, err := analytics.Compute(analytics.Input{
		Posts:       data.posts,
		Replies:     data.replies,
		Escalations: data.escalations,
		Users:       data.users,
	}, r, s.now(), s.loc)
	if err != nil {
		return AnalyticsView{}, err
	}
	return AnalyticsView{
		Range:    r.Key(),
		Label:    r.Label(),
		Metrics:  a,
		Insights: analytics.DeriveInsights(a),
		Rows:     a.PostsByCategory.NonZero(),
	}, nil
}

// Analytics возвращает последнюю принятую аналитику за период r.
func (s *Service) Analytics(r domain.DateRange) (Snapshot[AnalyticsView], error) {
	snap, ok := s.analytics.get(analyticsSlot(r)).Get()
	if !ok || snap.Value.Range != r.Key() {
		return Snapshot[AnalyticsView]{}, domain.ErrNoSnapshot
	}
	return snap, nil
}

// analyticsSlot возвращает ключ хранения. Все пользовательские периоды делят один слот,
// поэтому число хранимых сводок не зависит от параметров запросов.
func analyticsSlot(r domain.DateRange) string {
	if r.Kind == domain.RangeCustom {
		return string(domain.RangeCustom)
	}
	return r.Key()
}

// ErrExportDisabled возвращается, если очередь выгрузок не настроена.
var ErrExportDisabled = errors.New("export queue is not configured")

// ExportAnalytics считает отчёт за период r и ставит его в очередь выгрузок.
func (s *Service) ExportAnalytics(ctx context.Context, r domain.DateRange, cause domain.ExportCause) (domain.ExportJob, error) {
	if s.queue == nil {
		return domain.ExportJob{}, ErrExportDisabled
	}
	view, err := s.computeAnalytics(ctx, r)
	if err != nil {
		return domain.ExportJob{}, s.failed("export", err)
	}
	generatedAt := s.now().In(s.loc)
	job := domain.ExportJob{
		ID:          uuid.NewString(),
		Range:       r.Key(),
		Title:       analytics.ReportTitle,
		Body:        analytics.FormatReport(view.Metrics, view.Insights, r, generatedAt),
		GeneratedAt: generatedAt,
		Cause:       cause,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return domain.ExportJob{}, fmt.Errorf("enqueue export: %w", err)
	}
	s.logger.Info().Str("job_id", job.ID).Str("range", job.Range).Str("cause", string(cause)).Msg("dashboard: analytics export queued")
	return job, nil
}

// RefreshAll пересчитывает все представления по умолчанию.
// Ошибки отдельных представлений не мешают пересчёту остальных.
func (s *Service) RefreshAll(ctx context.Context, r domain.DateRange) error {
	return errors.Join(
		s.RefreshLeaderboards(ctx),
		s.RefreshEducators(ctx),
		s.RefreshTriage(ctx),
		s.RefreshAnalytics(ctx, r),
	)
}
