package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/repository"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
)

// WarehouseService 仓库业务接口
type WarehouseService interface {
	List(ctx context.Context) ([]dto.WarehouseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error)
	Create(ctx context.Context, req *dto.CreateWarehouseRequest, callerID string) (*dto.WarehouseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateWarehouseRequest, callerID string) (*dto.WarehouseResponse, error)
	// Delete 级联删除该仓库的时间段与审批步骤；历史申请保留快照
	Delete(ctx context.Context, id string) error
}

type warehouseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWarehouseService 创建 WarehouseService 实例
func NewWarehouseService(repo *repository.Repository, logger *zap.Logger) WarehouseService {
	return &warehouseService{repo: repo, logger: logger}
}

func (s *warehouseService) List(ctx context.Context) ([]dto.WarehouseResponse, error) {
	list, err := s.repo.Warehouse.List(ctx)
	if err != nil {
		s.logger.Error("列出仓库失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.WarehouseResponse, 0, len(list))
	for i := range list {
		result = append(result, toWarehouseResponse(&list[i]))
	}
	return result, nil
}

func (s *warehouseService) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	w, err := s.repo.Warehouse.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "仓库", id)
	}
	resp := toWarehouseResponse(w)
	return &resp, nil
}

func (s *warehouseService) Create(ctx context.Context, req *dto.CreateWarehouseRequest, callerID string) (*dto.WarehouseResponse, error) {
	w := &model.Warehouse{Name: req.Name, Location: req.Location}
	w.Stamp(callerID, true)

	if err := s.repo.Warehouse.Create(ctx, w); err != nil {
		s.logger.Error("创建仓库失败", zap.Error(err))
		return nil, translateRepoErr(err, "仓库", req.Name)
	}

	s.logger.Info("仓库已创建", zap.String("warehouse_id", w.WarehouseID), zap.String("name", w.Name))
	resp := toWarehouseResponse(w)
	return &resp, nil
}

func (s *warehouseService) Update(ctx context.Context, id string, req *dto.UpdateWarehouseRequest, callerID string) (*dto.WarehouseResponse, error) {
	w, err := s.repo.Warehouse.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "仓库", id)
	}

	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Location != nil {
		w.Location = *req.Location
	}
	w.Stamp(callerID, false)

	if err := s.repo.Warehouse.Update(ctx, w); err != nil {
		s.logger.Error("更新仓库失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toWarehouseResponse(w)
	return &resp, nil
}

func (s *warehouseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Warehouse.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("仓库", id)
		}
		s.logger.Error("删除仓库失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("仓库已删除", zap.String("warehouse_id", id))
	return nil
}

func toWarehouseResponse(w *model.Warehouse) dto.WarehouseResponse {
	return dto.WarehouseResponse{
		ID:        w.WarehouseID,
		Name:      w.Name,
		Location:  w.Location,
		CreatedAt: dto.FormatTime(w.CreatedAt),
		UpdatedAt: dto.FormatTime(w.UpdatedAt),
	}
}

// requireWarehouse 确认仓库存在
func requireWarehouse(ctx context.Context, repo *repository.Repository, id string) (*model.Warehouse, error) {
	w, err := repo.Warehouse.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "仓库", id)
	}
	return w, nil
}
