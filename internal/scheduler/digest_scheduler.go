package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/internal/app/service"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

// DigestScheduler 未確定注文の定期リマインダー
type DigestScheduler struct {
	cron         *cron.Cron
	spec         string
	orderRepo    repository.OrderRepository
	locationRepo repository.LocationRepository
	notifier     service.Notifier
}

func NewDigestScheduler(
	spec string,
	orderRepo repository.OrderRepository,
	locationRepo repository.LocationRepository,
	notifier service.Notifier,
) *DigestScheduler {
	return &DigestScheduler{
		cron:         cron.New(),
		spec:         spec,
		orderRepo:    orderRepo,
		locationRepo: locationRepo,
		notifier:     notifier,
	}
}

// Start スケジューラ開始
func (s *DigestScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.runDigest)
	if err != nil {
		logger.Error("Failed to add cron job for order digest", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("Order digest scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop スケジューラ停止
func (s *DigestScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Order digest scheduler stopped", nil)
}

// runDigest sends each active location the list of orders still in 受注
func (s *DigestScheduler) runDigest() {
	logger.Info("Starting scheduled order digest", nil)

	locations, err := s.locationRepo.FindAll(true)
	if err != nil {
		logger.Error("Failed to load locations for order digest", err, nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, location := range locations {
		orders, err := s.orderRepo.FindByStatusAndLocation(model.OrderStatusReceived, location.ID)
		if err != nil {
			logger.Error("Failed to load pending orders", err, map[string]interface{}{
				"location_id": location.ID,
			})
			continue
		}
		if len(orders) == 0 {
			continue
		}

		if err := s.notifier.NotifyPendingOrders(ctx, location.ID, orders); err != nil {
			logger.Warn("Pending order digest not delivered", map[string]interface{}{
				"location_id": location.ID,
				"reason":      err.Error(),
			})
			continue
		}

		logger.Info("Pending order digest sent", map[string]interface{}{
			"location_id": location.ID,
			"orders":      len(orders),
		})
	}
}
