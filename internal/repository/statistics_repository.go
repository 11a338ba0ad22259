package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/limbo/worklog/pkg/cleanup"
	"github.com/limbo/worklog/pkg/entity"
)

// StatisticsRepository serves the aggregate queries behind the statistics
// endpoints. Everything is computed from work_logs rows at call time.
type StatisticsRepository struct {
	conn PgConnection
}

func NewStatisticsRepo(cfg DBConfig) *StatisticsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for statisticsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for statisticsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &StatisticsRepository{
		conn: pool,
	}
}

func NewStatisticsRepoWithConn(conn PgConnection) *StatisticsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for statisticsRepo: " + err.Error())
	}
	return &StatisticsRepository{
		conn: conn,
	}
}

func (sr *StatisticsRepository) GetTotals(ctx context.Context, uid uuid.UUID) (int, int, error) {
	var minutes, count int
	row := sr.conn.QueryRow(ctx,
		`SELECT COALESCE(SUM(duration_minutes), 0), COUNT(*) FROM work_logs WHERE user_id = $1;`,
		uid,
	)
	if err := row.Scan(&minutes, &count); err != nil {
		return 0, 0, errors.New("getting totals error: " + err.Error())
	}
	return minutes, count, nil
}

func (sr *StatisticsRepository) GetCategoryStats(ctx context.Context, uid uuid.UUID) ([]*entity.CategoryStat, error) {
	rows, err := sr.conn.Query(ctx,
		`SELECT c.id, c.name, c.color, COALESCE(SUM(wl.duration_minutes), 0), COUNT(wl.id)
		FROM work_log_categories wc
		JOIN categories c ON c.id = wc.category_id
		JOIN work_logs wl ON wl.id = wc.work_log_id
		WHERE wl.user_id = $1
		GROUP BY c.id, c.name, c.color
		ORDER BY SUM(wl.duration_minutes) DESC;`,
		uid,
	)
	if err != nil {
		return nil, errors.New("getting category stats error: " + err.Error())
	}
	defer rows.Close()
	stats := make([]*entity.CategoryStat, 0)
	for rows.Next() {
		s := entity.CategoryStat{}
		err = rows.Scan(&s.CategoryID, &s.Name, &s.Color, &s.TotalMinutes, &s.WorkCount)
		if err != nil {
			return nil, errors.New("unmarshalling category stat error: " + err.Error())
		}
		stats = append(stats, &s)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return stats, nil
}

func (sr *StatisticsRepository) GetDistinctWorkDates(ctx context.Context, uid uuid.UUID) ([]entity.Date, error) {
	rows, err := sr.conn.Query(ctx,
		`SELECT DISTINCT work_date FROM work_logs WHERE user_id = $1 ORDER BY work_date DESC;`,
		uid,
	)
	if err != nil {
		return nil, errors.New("getting distinct work dates error: " + err.Error())
	}
	defer rows.Close()
	dates := make([]entity.Date, 0)
	for rows.Next() {
		var d entity.Date
		if err := rows.Scan(&d); err != nil {
			return nil, errors.New("unmarshalling work date error: " + err.Error())
		}
		dates = append(dates, d)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return dates, nil
}

func (sr *StatisticsRepository) GetDailyTotalsSince(ctx context.Context, uid uuid.UUID, since entity.Date) ([]*entity.TrendPoint, error) {
	rows, err := sr.conn.Query(ctx,
		`SELECT work_date, SUM(duration_minutes), COUNT(*) FROM work_logs
		WHERE user_id = $1 AND work_date >= $2
		GROUP BY work_date ORDER BY work_date ASC;`,
		uid, since,
	)
	if err != nil {
		return nil, errors.New("getting daily totals error: " + err.Error())
	}
	defer rows.Close()
	points := make([]*entity.TrendPoint, 0)
	for rows.Next() {
		p := entity.TrendPoint{}
		err = rows.Scan(&p.Date, &p.TotalMinutes, &p.WorkCount)
		if err != nil {
			return nil, errors.New("unmarshalling trend point error: " + err.Error())
		}
		points = append(points, &p)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return points, nil
}

func (sr *StatisticsRepository) GetDailyCountsForYear(ctx context.Context, uid uuid.UUID, year int) ([]*entity.HeatmapCell, error) {
	from := entity.NewDate(yearStart(year))
	to := entity.NewDate(yearEnd(year))
	rows, err := sr.conn.Query(ctx,
		`SELECT work_date, COUNT(*) FROM work_logs
		WHERE user_id = $1 AND work_date >= $2 AND work_date <= $3
		GROUP BY work_date ORDER BY work_date ASC;`,
		uid, from, to,
	)
	if err != nil {
		return nil, errors.New("getting daily counts error: " + err.Error())
	}
	defer rows.Close()
	cells := make([]*entity.HeatmapCell, 0)
	for rows.Next() {
		c := entity.HeatmapCell{}
		err = rows.Scan(&c.Date, &c.Count)
		if err != nil {
			return nil, errors.New("unmarshalling heatmap cell error: " + err.Error())
		}
		cells = append(cells, &c)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return cells, nil
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func yearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
