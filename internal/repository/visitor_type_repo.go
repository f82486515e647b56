package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/internal/model"
)

// VisitorTypeRepository 访客类型数据访问接口
type VisitorTypeRepository interface {
	Create(ctx context.Context, vt *model.VisitorType) error
	GetByID(ctx context.Context, id string) (*model.VisitorType, error)
	List(ctx context.Context, includeInactive bool) ([]model.VisitorType, error)
	Update(ctx context.Context, vt *model.VisitorType) error
}

type visitorTypeRepo struct {
	db *gorm.DB
}

// NewVisitorTypeRepo 创建 VisitorTypeRepository 实例
func NewVisitorTypeRepo(db *gorm.DB) VisitorTypeRepository {
	return &visitorTypeRepo{db: db}
}

func (r *visitorTypeRepo) Create(ctx context.Context, vt *model.VisitorType) error {
	return r.db.WithContext(ctx).Create(vt).Error
}

func (r *visitorTypeRepo) GetByID(ctx context.Context, id string) (*model.VisitorType, error) {
	var vt model.VisitorType
	if err := r.db.WithContext(ctx).Where("visitor_type_id = ?", id).First(&vt).Error; err != nil {
		return nil, err
	}
	return &vt, nil
}

func (r *visitorTypeRepo) List(ctx context.Context, includeInactive bool) ([]model.VisitorType, error) {
	var list []model.VisitorType
	db := r.db.WithContext(ctx)
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *visitorTypeRepo) Update(ctx context.Context, vt *model.VisitorType) error {
	return r.db.WithContext(ctx).Save(vt).Error
}
