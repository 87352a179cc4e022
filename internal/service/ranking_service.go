package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/plataform/plataform-api/internal/models"
	appErrors "github.com/plataform/plataform-api/pkg/errors"
	"github.com/plataform/plataform-api/pkg/export"
)

type rankingStudentLister interface {
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.RankedStudent, error)
}

type rankingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type rankingMetrics interface {
	ObserveCacheLookup(hit bool)
}

const leaderboardCacheKey = "ranking:leaderboard"

// RankingService computes the aura leaderboard with competition
// ranking. The unfiltered snapshot is cached briefly in Redis; filtered
// lookups always hit the database. Concurrent aura changes are
// tolerated: a ranking reflects whatever rows were visible when it was
// computed.
type RankingService struct {
	students rankingStudentLister
	cache    rankingCache
	cacheTTL time.Duration
	metrics  rankingMetrics
	logger   *zap.Logger
}

// NewRankingService constructs a RankingService. A nil cache disables
// snapshot caching; a nil metrics sink disables cache instrumentation.
func NewRankingService(students rankingStudentLister, cache rankingCache, cacheTTL time.Duration, metrics rankingMetrics, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{students: students, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// Leaderboard returns the ordered ranking plus the caller's own entry
// within it. When search is non-empty the ranking is computed over the
// matched subset only, so rank numbers reflect positions within that
// subset; this mirrors the platform's historical behaviour.
func (s *RankingService) Leaderboard(ctx context.Context, callerID, search string) (*models.Leaderboard, error) {
	ranked, err := s.rankedStudents(ctx, search)
	if err != nil {
		return nil, err
	}

	board := &models.Leaderboard{Ranking: ranked}
	for i := range ranked {
		if ranked[i].ID == callerID {
			entry := ranked[i]
			board.UserRank = &entry
			break
		}
	}
	return board, nil
}

// RankOf resolves a single student's rank within the full unfiltered
// leaderboard. One load, one linear pass; no second ranking run.
func (s *RankingService) RankOf(ctx context.Context, userID string) (int, error) {
	ranked, err := s.rankedStudents(ctx, "")
	if err != nil {
		return 0, err
	}
	for i := range ranked {
		if ranked[i].ID == userID {
			return ranked[i].Rank, nil
		}
	}
	return 0, appErrors.Clone(appErrors.ErrNotFound, "student not ranked")
}

// Export renders the current unfiltered leaderboard as a dataset for
// the CSV/PDF exporters.
func (s *RankingService) Export(ctx context.Context) (export.Dataset, error) {
	ranked, err := s.rankedStudents(ctx, "")
	if err != nil {
		return export.Dataset{}, err
	}

	dataset := export.Dataset{
		Headers: []string{"Rank", "First Name", "Last Name", "Aura"},
		Rows:    make([][]string, 0, len(ranked)),
	}
	for _, entry := range ranked {
		dataset.Rows = append(dataset.Rows, []string{
			strconv.Itoa(entry.Rank),
			entry.FirstName,
			entry.LastName,
			strconv.Itoa(entry.Aura),
		})
	}
	return dataset, nil
}

func (s *RankingService) rankedStudents(ctx context.Context, search string) ([]models.RankedStudent, error) {
	// Only the unfiltered snapshot is cacheable.
	if search == "" && s.cache != nil {
		var cached []models.RankedStudent
		if err := s.cache.Get(ctx, leaderboardCacheKey, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.ObserveCacheLookup(true)
			}
			return cached, nil
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheLookup(false)
		}
	}

	students, err := s.students.ListStudents(ctx, models.StudentFilter{Search: search})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	ranked := CompetitionRank(students)

	if search == "" && s.cache != nil {
		if err := s.cache.Set(ctx, leaderboardCacheKey, ranked, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache leaderboard snapshot", zap.Error(err))
		}
	}
	return ranked, nil
}

// CompetitionRank assigns competition ("1,2,2,4") ranks to students
// already ordered by aura descending. Tied auras share the rank of the
// first member of the tie group; the next distinct aura resumes at its
// 1-based position. The input order is the stable tie-break.
func CompetitionRank(students []models.RankedStudent) []models.RankedStudent {
	ranked := make([]models.RankedStudent, len(students))
	copy(ranked, students)

	for i := range ranked {
		if i > 0 && ranked[i].Aura == ranked[i-1].Aura {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}
	return ranked
}
