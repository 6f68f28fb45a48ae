package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/pkg/types"
)

type StatisticType string

const (
	// Payment volume
	StatisticTypeDailyPaymentCount StatisticType = "daily_payment_count"
	StatisticTypeDailyRevenue      StatisticType = "daily_revenue"
	StatisticTypeTotalRevenue      StatisticType = "total_revenue"

	// Subscription base
	StatisticTypeDailyNewSubscriptionCount StatisticType = "daily_new_subscription_count"
	StatisticTypeTotalActiveSubscriptions  StatisticType = "total_active_subscriptions"

	// Marketplace supply side
	StatisticTypePendingTraderCount StatisticType = "pending_trader_count"
	StatisticTypeDailyAlertCount    StatisticType = "daily_alert_count"
)

type DataItem struct {
	ID StatisticType `json:"id"`
}

type Request struct {
	DataItems []*DataItem `json:"data_items"`
}

type ResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Value int64  `json:"value"`
}

type Response struct {
	DataItems map[StatisticType][]ResponseDataItem `json:"data_items"`
}

// Service answers the admin dashboard's aggregate queries.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) getDailyPaymentCount(ctx context.Context) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status = ?", types.PaymentStatusCaptured).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date desc")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyRevenue(ctx context.Context) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("TO_CHAR(paid_at, 'YYYY-MM-DD') as date, sum(amount) as value").
		Where("status = ?", types.PaymentStatusCaptured).
		Group("TO_CHAR(paid_at, 'YYYY-MM-DD')").
		Order("date desc")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalRevenue(ctx context.Context) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH min_max_dates AS (
    SELECT MIN(DATE(paid_at)) as min_date, MAX(DATE(paid_at)) as max_date
    FROM payments WHERE status = 'CAPTURED'
),
distinct_dates AS (
    SELECT generate_series(min_date, max_date, '1 day'::interval) as date FROM min_max_dates
),
daily AS (
    SELECT DATE(paid_at) as date, SUM(amount) as value
    FROM payments WHERE status = 'CAPTURED'
    GROUP BY DATE(paid_at)
)
SELECT TO_CHAR(d.date, 'YYYY-MM-DD') as date, COALESCE(SUM(s.value), 0) as value
FROM distinct_dates d
LEFT JOIN daily s ON s.date <= d.date
GROUP BY d.date
ORDER BY d.date DESC
`).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyNewSubscriptionCount(ctx context.Context) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Subscription{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date desc")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalActiveSubscriptions(ctx context.Context) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Subscription{}).TableName()).
		Select("count(*) as value").
		Where("status = ?", types.SubscriptionStatusActive).
		Where("end_date > ?", time.Now())
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getPendingTraderCount(ctx context.Context) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Trader{}).TableName()).
		Select("count(*) as value").
		Where("approval_status = ?", types.ApprovalStatusPending)
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyAlertCount(ctx context.Context) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Table((models.TradeAlert{}).TableName()).
		Select("TO_CHAR(sent_at, 'YYYY-MM-DD') as date, count(*) as value").
		Group("TO_CHAR(sent_at, 'YYYY-MM-DD')").
		Order("date desc")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatistic(ctx context.Context, dataItem *DataItem) ([]ResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyPaymentCount:
		return s.getDailyPaymentCount(ctx)
	case StatisticTypeDailyRevenue:
		return s.getDailyRevenue(ctx)
	case StatisticTypeTotalRevenue:
		return s.getTotalRevenue(ctx)
	case StatisticTypeDailyNewSubscriptionCount:
		return s.getDailyNewSubscriptionCount(ctx)
	case StatisticTypeTotalActiveSubscriptions:
		return s.getTotalActiveSubscriptions(ctx)
	case StatisticTypePendingTraderCount:
		return s.getPendingTraderCount(ctx)
	case StatisticTypeDailyAlertCount:
		return s.getDailyAlertCount(ctx)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetPlatformStatistic fans the requested data items out in parallel; any
// single failure fails the whole request.
func (s *Service) GetPlatformStatistic(ctx context.Context, request *Request) (*Response, error) {
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []ResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *DataItem) {
			defer wg.Done()
			res, err := s.getStatistic(ctx, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []ResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	// both channels are buffered to the fan-out width, so every goroutine can
	// send without a reader; draining only starts once all of them are done
	wg.Wait()
	close(errChan)
	close(resChan)

	if err := <-errChan; err != nil {
		return nil, err
	}
	results := make(map[StatisticType][]ResponseDataItem, len(request.DataItems))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &Response{DataItems: results}, nil
}
