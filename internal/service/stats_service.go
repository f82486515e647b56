package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fatymarishu/gatepass/config"
	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/repository"
)

// StatsService 管理员看板统计，每次调用实时计算
type StatsService interface {
	Dashboard(ctx context.Context) (*dto.DashboardStatsResponse, error)
}

type statsService struct {
	cfg    *config.VisitConfig
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(cfg *config.VisitConfig, repo *repository.Repository, now Clock, logger *zap.Logger) StatsService {
	return &statsService{cfg: cfg, repo: repo, now: now, logger: logger}
}

func (s *statsService) Dashboard(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	requests, err := s.repo.VisitorRequest.List(ctx)
	if err != nil {
		s.logger.Error("统计：查询访客申请失败", zap.Error(err))
		return nil, err
	}
	activeUsers, err := s.repo.User.CountActive(ctx)
	if err != nil {
		s.logger.Error("统计：查询活跃用户失败", zap.Error(err))
		return nil, err
	}
	warehouses, err := s.repo.Warehouse.Count(ctx)
	if err != nil {
		s.logger.Error("统计：查询仓库数量失败", zap.Error(err))
		return nil, err
	}

	stats := ComputeDashboardStats(requests, activeUsers, warehouses, s.now(), s.cfg.Location())
	return &stats, nil
}
