package client

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fatymarishu/gatepass/internal/dto"
)

// AdminOverview 管理后台首页所需数据
type AdminOverview struct {
	Warehouses []dto.WarehouseResponse
	Requests   []dto.VisitorRequestResponse
	Stats      *dto.DashboardStatsResponse
}

// LoadAdminOverview 并发拉取仓库、申请列表与统计
// 任一请求失败即整体失败，返回第一个错误
func (c *Client) LoadAdminOverview(ctx context.Context) (*AdminOverview, error) {
	var out AdminOverview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := c.ListWarehouses(gctx)
		out.Warehouses = list
		return err
	})
	g.Go(func() error {
		list, err := c.ListRequests(gctx, dto.VisitorRequestFilter{})
		out.Requests = list
		return err
	})
	g.Go(func() error {
		stats, err := c.DashboardStats(gctx)
		out.Stats = stats
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshStats 后台刷新统计；失败时记录日志并保留上一次的值
func (c *Client) RefreshStats(ctx context.Context, prev *dto.DashboardStatsResponse) *dto.DashboardStatsResponse {
	stats, err := c.DashboardStats(ctx)
	if err != nil {
		c.logger.Warn("刷新统计失败，沿用旧值", zap.Error(err))
		return prev
	}
	return stats
}

// ApproverOverview 审批人首页：待审批与已处理
type ApproverOverview struct {
	Pending  []dto.VisitorRequestResponse
	Approved []dto.VisitorRequestResponse
	Rejected []dto.VisitorRequestResponse
}

// LoadApproverOverview 并发拉取当前会话审批人名下三类申请
func (c *Client) LoadApproverOverview(ctx context.Context) (*ApproverOverview, error) {
	approverID := ""
	if c.session != nil {
		approverID = c.session.UserID
	}

	var out ApproverOverview
	g, gctx := errgroup.WithContext(ctx)
	targets := []struct {
		status string
		dst    *[]dto.VisitorRequestResponse
	}{
		{"pending", &out.Pending},
		{"approved", &out.Approved},
		{"rejected", &out.Rejected},
	}
	for _, t := range targets {
		g.Go(func() error {
			list, err := c.ListForApprover(gctx, approverID, t.status)
			*t.dst = list
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
