package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/repository"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
)

// 当日时刻 "HH:MM"，24 小时制，补零后可按字典序比较
var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// TimeSlotService 时间段业务接口
type TimeSlotService interface {
	List(ctx context.Context, warehouseID string) ([]dto.TimeSlotResponse, error)
	Create(ctx context.Context, warehouseID string, req *dto.TimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error)
	Update(ctx context.Context, id string, req *dto.TimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error)
	Delete(ctx context.Context, id string) error
}

type timeSlotService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeSlotService 创建 TimeSlotService 实例
func NewTimeSlotService(repo *repository.Repository, logger *zap.Logger) TimeSlotService {
	return &timeSlotService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *timeSlotService) List(ctx context.Context, warehouseID string) ([]dto.TimeSlotResponse, error) {
	if _, err := requireWarehouse(ctx, s.repo, warehouseID); err != nil {
		return nil, err
	}

	slots, err := s.repo.TimeSlot.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		s.logger.Error("列出时间段失败", zap.String("warehouse_id", warehouseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, toTimeSlotResponse(&slots[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *timeSlotService) Create(ctx context.Context, warehouseID string, req *dto.TimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error) {
	if err := validateTimeSlot(req); err != nil {
		return nil, err
	}
	if _, err := requireWarehouse(ctx, s.repo, warehouseID); err != nil {
		return nil, err
	}

	slot := &model.TimeSlot{
		WarehouseID: warehouseID,
		Name:        strings.TrimSpace(req.Name),
		StartTime:   req.From,
		EndTime:     req.To,
	}
	slot.Stamp(callerID, true)

	if err := s.repo.TimeSlot.Create(ctx, slot); err != nil {
		s.logger.Error("创建时间段失败", zap.Error(err))
		return nil, err
	}

	resp := toTimeSlotResponse(slot)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *timeSlotService) Update(ctx context.Context, id string, req *dto.TimeSlotRequest, callerID string) (*dto.TimeSlotResponse, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("时间段", id)
		}
		s.logger.Error("查询时间段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := validateTimeSlot(req); err != nil {
		return nil, err
	}

	slot.Name = strings.TrimSpace(req.Name)
	slot.StartTime = req.From
	slot.EndTime = req.To
	slot.Stamp(callerID, false)

	if err := s.repo.TimeSlot.Update(ctx, slot); err != nil {
		s.logger.Error("更新时间段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toTimeSlotResponse(slot)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 不影响引用该时间段的申请，它们保留创建时的快照
func (s *timeSlotService) Delete(ctx context.Context, id string) error {
	if err := s.repo.TimeSlot.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("时间段", id)
		}
		s.logger.Error("删除时间段失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// validateTimeSlot 一次列出所有违规字段
func validateTimeSlot(req *dto.TimeSlotRequest) error {
	v := apperrors.NewValidation()

	if strings.TrimSpace(req.Name) == "" {
		v.Add("name", "名称不能为空")
	}
	if req.From == "" {
		v.Add("from", "开始时间不能为空")
	} else if !clockPattern.MatchString(req.From) {
		v.Add("from", "开始时间格式应为 HH:MM")
	}
	if req.To == "" {
		v.Add("to", "结束时间不能为空")
	} else if !clockPattern.MatchString(req.To) {
		v.Add("to", "结束时间格式应为 HH:MM")
	}
	if !v.Has("from") && !v.Has("to") && req.From >= req.To {
		v.Add("to", "结束时间必须晚于开始时间")
	}

	return v.OrNil()
}

func toTimeSlotResponse(slot *model.TimeSlot) dto.TimeSlotResponse {
	return dto.TimeSlotResponse{
		ID:          slot.TimeSlotID,
		WarehouseID: slot.WarehouseID,
		Name:        slot.Name,
		From:        slot.StartTime,
		To:          slot.EndTime,
		CreatedAt:   dto.FormatTime(slot.CreatedAt),
		UpdatedAt:   dto.FormatTime(slot.UpdatedAt),
	}
}
