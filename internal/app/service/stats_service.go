package service

import (
	"time"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/internal/authz"
)

// Dashboard aggregates the counts shown on the top screen
type Dashboard struct {
	TotalVehicles int64                    `json:"total_vehicles"`
	TotalOrders   int64                    `json:"total_orders"`
	RecentOrders  []model.Order            `json:"recent_orders"`
	MonthlyOrders []repository.MonthlyCount `json:"monthly_orders"`
}

type StatsService interface {
	Dashboard(actor *model.User) (*Dashboard, error)
}

type statsService struct {
	orderRepo   repository.OrderRepository
	vehicleRepo repository.VehicleRepository
}

func NewStatsService(orderRepo repository.OrderRepository, vehicleRepo repository.VehicleRepository) StatsService {
	return &statsService{
		orderRepo:   orderRepo,
		vehicleRepo: vehicleRepo,
	}
}

func (s *statsService) Dashboard(actor *model.User) (*Dashboard, error) {
	scope := authz.ResolveScope(actor)

	totalVehicles, err := s.vehicleRepo.CountAll(scope)
	if err != nil {
		return nil, err
	}

	totalOrders, err := s.orderRepo.CountAll(scope)
	if err != nil {
		return nil, err
	}

	recent, err := s.orderRepo.FindRecent(scope, 5)
	if err != nil {
		return nil, err
	}

	// 過去6ヶ月の月別注文数
	fromDate := time.Now().AddDate(0, -6, 0).Format("2006-01-02")
	monthly, err := s.orderRepo.CountByMonth(scope, fromDate)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalVehicles: totalVehicles,
		TotalOrders:   totalOrders,
		RecentOrders:  recent,
		MonthlyOrders: monthly,
	}, nil
}
