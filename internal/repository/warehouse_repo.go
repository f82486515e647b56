package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/internal/model"
)

// WarehouseRepository 仓库数据访问接口
type WarehouseRepository interface {
	Create(ctx context.Context, w *model.Warehouse) error
	GetByID(ctx context.Context, id string) (*model.Warehouse, error)
	List(ctx context.Context) ([]model.Warehouse, error)
	Update(ctx context.Context, w *model.Warehouse) error
	// Delete 同一事务内删除仓库及其时间段、审批步骤
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type warehouseRepo struct {
	db *gorm.DB
}

// NewWarehouseRepo 创建 WarehouseRepository 实例
func NewWarehouseRepo(db *gorm.DB) WarehouseRepository {
	return &warehouseRepo{db: db}
}

func (r *warehouseRepo) Create(ctx context.Context, w *model.Warehouse) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *warehouseRepo) GetByID(ctx context.Context, id string) (*model.Warehouse, error) {
	var w model.Warehouse
	if err := r.db.WithContext(ctx).Where("warehouse_id = ?", id).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *warehouseRepo) List(ctx context.Context) ([]model.Warehouse, error) {
	var list []model.Warehouse
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *warehouseRepo) Update(ctx context.Context, w *model.Warehouse) error {
	return r.db.WithContext(ctx).Save(w).Error
}

func (r *warehouseRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("warehouse_id = ?", id).Delete(&model.TimeSlot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("warehouse_id = ?", id).Delete(&model.WorkflowStep{}).Error; err != nil {
			return err
		}
		res := tx.Where("warehouse_id = ?", id).Delete(&model.Warehouse{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *warehouseRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Warehouse{}).Count(&n).Error
	return n, err
}
