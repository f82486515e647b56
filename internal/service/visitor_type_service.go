package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/repository"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
)

// VisitorTypeService 访客类型业务接口
type VisitorTypeService interface {
	ListActive(ctx context.Context) ([]dto.VisitorTypeResponse, error)
	ListDisabled(ctx context.Context) ([]dto.VisitorTypeResponse, error)
	// GetByID 停用的类型同样可查，供历史申请解析
	GetByID(ctx context.Context, id string) (*dto.VisitorTypeResponse, error)
	Create(ctx context.Context, req *dto.CreateVisitorTypeRequest, callerID string) (*dto.VisitorTypeResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateVisitorTypeRequest, callerID string) (*dto.VisitorTypeResponse, error)
	SetActive(ctx context.Context, id string, active bool, callerID string) (*dto.VisitorTypeResponse, error)
}

type visitorTypeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewVisitorTypeService 创建 VisitorTypeService 实例
func NewVisitorTypeService(repo *repository.Repository, logger *zap.Logger) VisitorTypeService {
	return &visitorTypeService{repo: repo, logger: logger}
}

func (s *visitorTypeService) ListActive(ctx context.Context) ([]dto.VisitorTypeResponse, error) {
	list, err := s.repo.VisitorType.List(ctx, false)
	if err != nil {
		s.logger.Error("列出访客类型失败", zap.Error(err))
		return nil, err
	}
	return toVisitorTypeResponses(list), nil
}

func (s *visitorTypeService) ListDisabled(ctx context.Context) ([]dto.VisitorTypeResponse, error) {
	list, err := s.repo.VisitorType.List(ctx, true)
	if err != nil {
		s.logger.Error("列出访客类型失败", zap.Error(err))
		return nil, err
	}
	disabled := make([]model.VisitorType, 0, len(list))
	for _, vt := range list {
		if !vt.IsActive {
			disabled = append(disabled, vt)
		}
	}
	return toVisitorTypeResponses(disabled), nil
}

func (s *visitorTypeService) GetByID(ctx context.Context, id string) (*dto.VisitorTypeResponse, error) {
	vt, err := s.repo.VisitorType.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "访客类型", id)
	}
	resp := toVisitorTypeResponse(vt)
	return &resp, nil
}

func (s *visitorTypeService) Create(ctx context.Context, req *dto.CreateVisitorTypeRequest, callerID string) (*dto.VisitorTypeResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "名称不能为空")
	}

	vt := &model.VisitorType{
		Name:        name,
		Description: req.Description,
		IsActive:    true,
	}
	vt.Stamp(callerID, true)

	if err := s.repo.VisitorType.Create(ctx, vt); err != nil {
		s.logger.Error("创建访客类型失败", zap.Error(err))
		return nil, translateRepoErr(err, "访客类型", name)
	}
	resp := toVisitorTypeResponse(vt)
	return &resp, nil
}

func (s *visitorTypeService) Update(ctx context.Context, id string, req *dto.UpdateVisitorTypeRequest, callerID string) (*dto.VisitorTypeResponse, error) {
	vt, err := s.repo.VisitorType.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "访客类型", id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("name", "名称不能为空")
		}
		vt.Name = name
	}
	if req.Description != nil {
		vt.Description = *req.Description
	}
	vt.Stamp(callerID, false)

	if err := s.repo.VisitorType.Update(ctx, vt); err != nil {
		s.logger.Error("更新访客类型失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toVisitorTypeResponse(vt)
	return &resp, nil
}

// SetActive 停用/启用；重复操作幂等
func (s *visitorTypeService) SetActive(ctx context.Context, id string, active bool, callerID string) (*dto.VisitorTypeResponse, error) {
	vt, err := s.repo.VisitorType.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("访客类型", id)
		}
		s.logger.Error("查询访客类型失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if vt.IsActive != active {
		vt.IsActive = active
		vt.Stamp(callerID, false)
		if err := s.repo.VisitorType.Update(ctx, vt); err != nil {
			s.logger.Error("更新访客类型状态失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		s.logger.Info("访客类型状态已变更", zap.String("id", id), zap.Bool("active", active))
	}

	resp := toVisitorTypeResponse(vt)
	return &resp, nil
}

func toVisitorTypeResponse(vt *model.VisitorType) dto.VisitorTypeResponse {
	return dto.VisitorTypeResponse{
		ID:          vt.VisitorTypeID,
		Name:        vt.Name,
		Description: vt.Description,
		IsActive:    vt.IsActive,
		CreatedAt:   dto.FormatTime(vt.CreatedAt),
	}
}

func toVisitorTypeResponses(list []model.VisitorType) []dto.VisitorTypeResponse {
	result := make([]dto.VisitorTypeResponse, 0, len(list))
	for i := range list {
		result = append(result, toVisitorTypeResponse(&list[i]))
	}
	return result
}
