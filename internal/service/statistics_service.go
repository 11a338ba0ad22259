package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/internal/repository"
	"github.com/limbo/worklog/pkg/entity"
	"golang.org/x/sync/errgroup"
)

type StatisticsService struct {
	repo repository.StatisticsRepositoryI
	// Injectable clock so streak arithmetic is deterministic in tests
	now func() time.Time
}

func NewStatisticsService(statsRepo repository.StatisticsRepositoryI) *StatisticsService {
	if statsRepo == nil {
		log.Fatal("provided nil statsRepo")
	}
	return &StatisticsService{
		repo: statsRepo,
		now:  time.Now,
	}
}

func (ss *StatisticsService) GetSummary(ctx context.Context, uid uuid.UUID) (*entity.StatisticsSummary, error) {
	var (
		totalMinutes, totalCount int
		categoryStats            []*entity.CategoryStat
		dates                    []entity.Date
	)
	// The three aggregates are independent, fan out and await all
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totalMinutes, totalCount, err = ss.repo.GetTotals(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		categoryStats, err = ss.repo.GetCategoryStats(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		dates, err = ss.repo.GetDistinctWorkDates(gctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.New("statistics repository error: " + err.Error())
	}

	applyPercentages(categoryStats, totalMinutes)
	current, longest := countStreaks(dates, entity.NewDate(ss.now()))
	return &entity.StatisticsSummary{
		TotalMinutes:      totalMinutes,
		TotalWorkCount:    totalCount,
		CurrentStreak:     current,
		LongestStreak:     longest,
		CategoryBreakdown: categoryStats,
	}, nil
}

func (ss *StatisticsService) GetTrends(ctx context.Context, uid uuid.UUID, period string) ([]*entity.TrendPoint, error) {
	now := ss.now()
	var start time.Time
	switch period {
	case "week":
		start = now.AddDate(0, 0, -7)
	case "month", "":
		start = now.AddDate(0, -1, 0)
	case "year":
		start = now.AddDate(-1, 0, 0)
	default:
		return nil, errors.Join(errorvalues.ErrValidation, errors.New("unknown period "+period))
	}
	points, err := ss.repo.GetDailyTotalsSince(ctx, uid, entity.NewDate(start))
	if err != nil {
		return nil, errors.New("statistics repository error: " + err.Error())
	}
	return points, nil
}

func (ss *StatisticsService) GetHeatmap(ctx context.Context, uid uuid.UUID, year int) ([]*entity.HeatmapCell, error) {
	if year < 1 {
		return nil, errors.Join(errorvalues.ErrValidation, errors.New("invalid year"))
	}
	cells, err := ss.repo.GetDailyCountsForYear(ctx, uid, year)
	if err != nil {
		return nil, errors.New("statistics repository error: " + err.Error())
	}
	for _, c := range cells {
		c.Level = heatmapLevel(c.Count)
	}
	return cells, nil
}

// applyPercentages fills the percentage of each category stat relative to
// totalMinutes. Zero total keeps every percentage at 0.
func applyPercentages(stats []*entity.CategoryStat, totalMinutes int) {
	if totalMinutes <= 0 {
		return
	}
	for _, s := range stats {
		s.Percentage = int(math.Round(float64(s.TotalMinutes) / float64(totalMinutes) * 100))
	}
}

// countStreaks walks distinct work dates sorted descending. The current
// streak is 0 unless the most recent date is today or yesterday; the longest
// streak is the maximum consecutive run anywhere in the list, with the
// current streak as an extra candidate so the most recent run is never
// undercounted.
func countStreaks(dates []entity.Date, today entity.Date) (int, int) {
	if len(dates) == 0 {
		return 0, 0
	}
	current := 0
	if dates[0].Equal(today.Time) || dates[0].Equal(today.AddDays(-1).Time) {
		current = 1
		for i := 1; i < len(dates); i++ {
			if dates[i].DaysBefore(dates[i-1]) != 1 {
				break
			}
			current++
		}
	}
	longest := 0
	run := 1
	for i := 1; i < len(dates); i++ {
		if dates[i].DaysBefore(dates[i-1]) == 1 {
			run++
			continue
		}
		if run > longest {
			longest = run
		}
		run = 1
	}
	if run > longest {
		longest = run
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

func heatmapLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	case count <= 5:
		return 3
	default:
		return 4
	}
}
