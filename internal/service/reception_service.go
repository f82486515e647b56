package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fatymarishu/gatepass/config"
	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/repository"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
	"github.com/fatymarishu/gatepass/pkg/mq"
)

// ReceptionService 前台登记业务接口
//
// 只维护到访状态、到达/离开时间与准时情况，从不修改审批状态。
type ReceptionService interface {
	RecordStatus(ctx context.Context, id string, req *dto.UpdateVisitStatusRequest, actor Actor) (*dto.VisitorRequestResponse, error)
	// ListToday warehouseID 为空时使用操作人的仓库归属；两者都为空则不限仓库
	ListToday(ctx context.Context, warehouseID string, actor Actor) ([]dto.VisitorRequestResponse, error)
	ListAll(ctx context.Context, warehouseID string, actor Actor) ([]dto.VisitorRequestResponse, error)
	TodayStats(ctx context.Context, warehouseID string, actor Actor) (*dto.ReceptionStatsResponse, error)
}

type receptionService struct {
	cfg       *config.VisitConfig
	repo      *repository.Repository
	publisher mq.Publisher
	now       Clock
	logger    *zap.Logger
}

// NewReceptionService 创建 ReceptionService 实例
func NewReceptionService(
	cfg *config.VisitConfig,
	repo *repository.Repository,
	publisher mq.Publisher,
	now Clock,
	logger *zap.Logger,
) ReceptionService {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return &receptionService{cfg: cfg, repo: repo, publisher: publisher, now: now, logger: logger}
}

// ────────────────────── RecordStatus ──────────────────────

func (s *receptionService) RecordStatus(ctx context.Context, id string, in *dto.UpdateVisitStatusRequest, actor Actor) (*dto.VisitorRequestResponse, error) {
	req, err := s.repo.VisitorRequest.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "访客申请", id)
	}

	loc := s.cfg.Location()
	v := apperrors.NewValidation()

	visitStatus := req.VisitStatus
	if in.VisitStatus != nil {
		parsed, ok := model.ParseVisitStatus(*in.VisitStatus)
		if !ok {
			v.Add("visitStatus", "到访状态取值应为 pending、visited 或 no_show")
		}
		visitStatus = parsed
	}

	arrivedAt := req.ArrivedAt
	arrivalChanged := false
	if in.ArrivedAt != nil {
		t, err := parseReceptionTime(*in.ArrivedAt, req.VisitDate, loc)
		if err != nil {
			v.Add("arrivedAt", "时间格式应为 HH:MM 或 RFC3339")
		}
		arrivedAt = t
		arrivalChanged = true
	}

	checkedOutAt := req.CheckedOutAt
	if in.CheckedOutAt != nil {
		t, err := parseReceptionTime(*in.CheckedOutAt, req.VisitDate, loc)
		if err != nil {
			v.Add("checkedOutAt", "时间格式应为 HH:MM 或 RFC3339")
		}
		checkedOutAt = t
	}

	punctuality := req.Punctuality
	punctualityGiven := false
	if in.Punctuality != nil {
		punctualityGiven = true
		if *in.Punctuality == "" {
			punctuality = ""
		} else if parsed, ok := model.ParsePunctuality(*in.Punctuality); ok {
			punctuality = parsed
		} else {
			v.Add("punctuality", "准时情况取值应为 on_time 或 late")
		}
	}

	if !v.Empty() {
		return nil, v
	}

	// 组合约束
	if checkedOutAt != nil && arrivedAt == nil {
		v.Add("checkedOutAt", "需先登记到达时间")
	}
	if checkedOutAt != nil && arrivedAt != nil && checkedOutAt.Before(*arrivedAt) {
		v.Add("checkedOutAt", "离开时间不能早于到达时间")
	}
	if visitStatus == model.VisitNoShow && arrivedAt != nil {
		v.Add("visitStatus", "已登记到达的访客不能标记为未到访")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	// 登记到达但未指定到访状态时视为已到访
	if arrivalChanged && arrivedAt != nil && in.VisitStatus == nil && visitStatus == model.VisitPending {
		visitStatus = model.VisitVisited
	}
	// 未指定准时情况时按时间段开始时间推导
	if arrivalChanged && !punctualityGiven {
		punctuality = derivePunctuality(arrivedAt, req, loc)
	}

	req.VisitStatus = visitStatus
	req.ArrivedAt = arrivedAt
	req.CheckedOutAt = checkedOutAt
	req.Punctuality = punctuality
	req.Stamp(actor.UserID, false)

	if err := s.repo.VisitorRequest.Update(ctx, req); err != nil {
		s.logger.Error("更新到访状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("到访状态已更新",
		zap.String("request_id", id),
		zap.String("visit_status", string(req.VisitStatus)),
		zap.String("actor_id", actor.UserID),
	)
	publishRequestEvent(ctx, s.publisher, s.logger, mq.EventVisitUpdated, req, actor.UserID, s.now())

	resp := toVisitorRequestResponse(req)
	return &resp, nil
}

// parseReceptionTime 空串表示清除；"HH:MM" 按访问日期在业务时区补全
func parseReceptionTime(raw string, visitDate time.Time, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if clockPattern.MatchString(raw) {
		t, err := combineDateClock(visitDate, raw, loc)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// combineDateClock 将 DATE 与 "HH:MM" 组合为 loc 时区的时刻
func combineDateClock(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, hm.Hour(), hm.Minute(), 0, 0, loc), nil
}

func derivePunctuality(arrivedAt *time.Time, req *model.VisitorRequest, loc *time.Location) model.Punctuality {
	if arrivedAt == nil || req.SlotFrom == "" {
		return ""
	}
	start, err := combineDateClock(req.VisitDate, req.SlotFrom, loc)
	if err != nil {
		return ""
	}
	if arrivedAt.After(start) {
		return model.PunctualityLate
	}
	return model.PunctualityOnTime
}

// ────────────────────── 列表与统计 ──────────────────────

func (s *receptionService) scope(warehouseID string, actor Actor) string {
	if warehouseID != "" {
		return warehouseID
	}
	return actor.WarehouseID
}

func (s *receptionService) today(ctx context.Context, warehouseID string, actor Actor) ([]model.VisitorRequest, error) {
	day := calendarDay(s.now(), s.cfg.Location())
	list, err := s.repo.VisitorRequest.ListByDate(ctx, day, s.scope(warehouseID, actor))
	if err != nil {
		s.logger.Error("查询当日访客失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *receptionService) ListToday(ctx context.Context, warehouseID string, actor Actor) ([]dto.VisitorRequestResponse, error) {
	list, err := s.today(ctx, warehouseID, actor)
	if err != nil {
		return nil, err
	}
	return toVisitorRequestResponses(list), nil
}

func (s *receptionService) ListAll(ctx context.Context, warehouseID string, actor Actor) ([]dto.VisitorRequestResponse, error) {
	list, err := s.repo.VisitorRequest.List(ctx)
	if err != nil {
		s.logger.Error("列出访客失败", zap.Error(err))
		return nil, err
	}
	return toVisitorRequestResponses(FilterByWarehouse(list, s.scope(warehouseID, actor))), nil
}

func (s *receptionService) TodayStats(ctx context.Context, warehouseID string, actor Actor) (*dto.ReceptionStatsResponse, error) {
	list, err := s.today(ctx, warehouseID, actor)
	if err != nil {
		return nil, err
	}
	stats := ComputeReceptionStats(list)
	return &stats, nil
}
