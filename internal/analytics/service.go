package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aquaris-labs/backend-aquaris/internal/db"
	"github.com/aquaris-labs/backend-aquaris/internal/obs"
)

// Querier defines the database access required for revenue reporting.
type Querier interface {
	ListSaleTotals(ctx context.Context) ([]db.SaleTotal, error)
}

// Point is one day of aggregated revenue. Revenue is in minor units.
type Point struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
}

// Series is the daily revenue report. NoData distinguishes "no sales yet"
// from an empty chart so callers can render a placeholder.
type Series struct {
	NoData bool    `json:"noData"`
	Points []Point `json:"points"`
}

// Aggregate groups sales by calendar date and sums final amounts per date.
// Every distinct date in the input appears exactly once, ordered ascending;
// dates with no sales are absent. Rows with a zero date are rejected.
func Aggregate(rows []db.SaleTotal) (Series, error) {
	if len(rows) == 0 {
		return Series{NoData: true, Points: []Point{}}, nil
	}
	totals := make(map[string]int64, len(rows))
	for _, row := range rows {
		if row.BillDate.IsZero() {
			return Series{}, fmt.Errorf("sale record missing bill date")
		}
		totals[row.BillDate.Format(time.DateOnly)] += row.FinalAmount
	}
	dates := make([]string, 0, len(totals))
	for date := range totals {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	points := make([]Point, 0, len(dates))
	for _, date := range dates {
		points = append(points, Point{Date: date, Revenue: totals[date]})
	}
	return Series{Points: points}, nil
}

// Service provides cached access to the daily revenue report.
type Service struct {
	Q   Querier
	R   *redis.Client
	TTL time.Duration
}

const dailyRevenueKey = "aquaris:an:revenue:daily"

// DailyRevenue returns per-date revenue totals, served from cache when fresh.
func (s *Service) DailyRevenue(ctx context.Context) (Series, error) {
	if s == nil || s.Q == nil {
		return Series{}, fmt.Errorf("analytics service not configured")
	}
	if series, ok := s.fromCache(ctx); ok {
		countRevenueQuery("cache")
		return series, nil
	}
	rows, err := s.Q.ListSaleTotals(ctx)
	if err != nil {
		return Series{}, fmt.Errorf("load sales: %w", err)
	}
	series, err := Aggregate(rows)
	if err != nil {
		return Series{}, err
	}
	countRevenueQuery("store")
	s.store(ctx, series)
	return series, nil
}

func (s *Service) fromCache(ctx context.Context) (Series, bool) {
	if s.R == nil || s.TTL <= 0 {
		return Series{}, false
	}
	data, err := s.R.Get(ctx, dailyRevenueKey).Bytes()
	if err != nil {
		return Series{}, false
	}
	var series Series
	if err := json.Unmarshal(data, &series); err != nil {
		return Series{}, false
	}
	if series.Points == nil {
		series.Points = []Point{}
	}
	return series, true
}

// Invalidate drops the cached report. Call after any write that changes
// revenue so the next read reflects it immediately.
func (s *Service) Invalidate(ctx context.Context) {
	if s == nil || s.R == nil {
		return
	}
	_ = s.R.Del(ctx, dailyRevenueKey).Err()
}

func (s *Service) store(ctx context.Context, series Series) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(series)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, dailyRevenueKey, data, s.TTL).Err()
}

func countRevenueQuery(source string) {
	if obs.RevenueQueryTotal != nil {
		obs.RevenueQueryTotal.WithLabelValues(source).Inc()
	}
}
