package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/internal/model"
)

// VisitorRequestRepository 访客申请数据访问接口
type VisitorRequestRepository interface {
	Create(ctx context.Context, req *model.VisitorRequest) error
	GetByID(ctx context.Context, id string) (*model.VisitorRequest, error)
	GetByTrackingCode(ctx context.Context, code string) (*model.VisitorRequest, error)
	// List 全部申请，按创建时间倒序
	List(ctx context.Context) ([]model.VisitorRequest, error)
	// ListByDate 指定日期的申请；warehouseID 为空时不限仓库
	ListByDate(ctx context.Context, date time.Time, warehouseID string) ([]model.VisitorRequest, error)
	// ListByChains 属于任一审批链的申请
	ListByChains(ctx context.Context, keys []ChainKey) ([]model.VisitorRequest, error)
	Update(ctx context.Context, req *model.VisitorRequest) error
	// Decide 仅当申请仍为 pending 且停在 fromStepNo 时写入审批结果，返回是否命中
	Decide(ctx context.Context, req *model.VisitorRequest, fromStepNo int) (bool, error)
	CreateApproval(ctx context.Context, a *model.VisitorRequestApproval) error
	ListApprovals(ctx context.Context, requestID string) ([]model.VisitorRequestApproval, error)
}

type visitorRequestRepo struct {
	db *gorm.DB
}

// NewVisitorRequestRepo 创建 VisitorRequestRepository 实例
func NewVisitorRequestRepo(db *gorm.DB) VisitorRequestRepository {
	return &visitorRequestRepo{db: db}
}

func (r *visitorRequestRepo) Create(ctx context.Context, req *model.VisitorRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *visitorRequestRepo) GetByID(ctx context.Context, id string) (*model.VisitorRequest, error) {
	var req model.VisitorRequest
	if err := r.db.WithContext(ctx).Where("visitor_request_id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *visitorRequestRepo) GetByTrackingCode(ctx context.Context, code string) (*model.VisitorRequest, error) {
	var req model.VisitorRequest
	if err := r.db.WithContext(ctx).Where("tracking_code = ?", code).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *visitorRequestRepo) List(ctx context.Context) ([]model.VisitorRequest, error) {
	var list []model.VisitorRequest
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *visitorRequestRepo) ListByDate(ctx context.Context, date time.Time, warehouseID string) ([]model.VisitorRequest, error) {
	var list []model.VisitorRequest
	db := r.db.WithContext(ctx).Where("visit_date = ?", date.Format("2006-01-02"))
	if warehouseID != "" {
		db = db.Where("warehouse_id = ?", warehouseID)
	}
	err := db.Order("slot_from ASC, created_at ASC").Find(&list).Error
	return list, err
}

func (r *visitorRequestRepo) ListByChains(ctx context.Context, keys []ChainKey) ([]model.VisitorRequest, error) {
	var list []model.VisitorRequest
	if len(keys) == 0 {
		return list, nil
	}
	db := r.db.WithContext(ctx)
	cond := r.db.Where("warehouse_id = ? AND visitor_type_id = ?", keys[0].WarehouseID, keys[0].VisitorTypeID)
	for _, k := range keys[1:] {
		cond = cond.Or("warehouse_id = ? AND visitor_type_id = ?", k.WarehouseID, k.VisitorTypeID)
	}
	err := db.Where(cond).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *visitorRequestRepo) Update(ctx context.Context, req *model.VisitorRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *visitorRequestRepo) Decide(ctx context.Context, req *model.VisitorRequest, fromStepNo int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.VisitorRequest{}).
		Where("visitor_request_id = ? AND status = ? AND current_step_no = ?",
			req.VisitorRequestID, model.StatusPending, fromStepNo).
		Updates(map[string]interface{}{
			"status":          req.Status,
			"current_step_no": req.CurrentStepNo,
			"updated_at":      req.UpdatedAt,
			"updated_by":      req.UpdatedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *visitorRequestRepo) CreateApproval(ctx context.Context, a *model.VisitorRequestApproval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *visitorRequestRepo) ListApprovals(ctx context.Context, requestID string) ([]model.VisitorRequestApproval, error) {
	var list []model.VisitorRequestApproval
	err := r.db.WithContext(ctx).
		Where("visitor_request_id = ?", requestID).
		Order("acted_at ASC").
		Find(&list).Error
	return list, err
}
