package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/internal/model"
)

// ChainKey 审批链键
type ChainKey struct {
	WarehouseID   string
	VisitorTypeID string
}

// WorkflowRepository 审批步骤数据访问接口
type WorkflowRepository interface {
	Create(ctx context.Context, step *model.WorkflowStep) error
	GetByID(ctx context.Context, id string) (*model.WorkflowStep, error)
	// ListByWarehouse 返回仓库全部步骤（含访客类型与审批人），按访客类型、步骤号排序
	ListByWarehouse(ctx context.Context, warehouseID string) ([]model.WorkflowStep, error)
	// ListChain 返回单条审批链，按步骤号升序
	ListChain(ctx context.Context, warehouseID, visitorTypeID string) ([]model.WorkflowStep, error)
	ListByApprover(ctx context.Context, approverID string) ([]model.WorkflowStep, error)
	// StepExists 判断该链上是否已有该步骤号，excludeID 非空时排除自身
	StepExists(ctx context.Context, key ChainKey, stepNo int, excludeID string) (bool, error)
	Update(ctx context.Context, step *model.WorkflowStep) error
	Delete(ctx context.Context, id string) error
}

type workflowRepo struct {
	db *gorm.DB
}

// NewWorkflowRepo 创建 WorkflowRepository 实例
func NewWorkflowRepo(db *gorm.DB) WorkflowRepository {
	return &workflowRepo{db: db}
}

func (r *workflowRepo) Create(ctx context.Context, step *model.WorkflowStep) error {
	return r.db.WithContext(ctx).Omit("VisitorType", "Approver").Create(step).Error
}

func (r *workflowRepo) GetByID(ctx context.Context, id string) (*model.WorkflowStep, error) {
	var step model.WorkflowStep
	err := r.db.WithContext(ctx).
		Preload("VisitorType").
		Preload("Approver").
		Where("workflow_step_id = ?", id).
		First(&step).Error
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *workflowRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]model.WorkflowStep, error) {
	var steps []model.WorkflowStep
	err := r.db.WithContext(ctx).
		Preload("VisitorType").
		Preload("Approver").
		Where("warehouse_id = ?", warehouseID).
		Order("visitor_type_id ASC, step_no ASC").
		Find(&steps).Error
	return steps, err
}

func (r *workflowRepo) ListChain(ctx context.Context, warehouseID, visitorTypeID string) ([]model.WorkflowStep, error) {
	var steps []model.WorkflowStep
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND visitor_type_id = ?", warehouseID, visitorTypeID).
		Order("step_no ASC").
		Find(&steps).Error
	return steps, err
}

func (r *workflowRepo) ListByApprover(ctx context.Context, approverID string) ([]model.WorkflowStep, error) {
	var steps []model.WorkflowStep
	err := r.db.WithContext(ctx).
		Where("approver_id = ?", approverID).
		Order("warehouse_id ASC, visitor_type_id ASC, step_no ASC").
		Find(&steps).Error
	return steps, err
}

func (r *workflowRepo) StepExists(ctx context.Context, key ChainKey, stepNo int, excludeID string) (bool, error) {
	var n int64
	db := r.db.WithContext(ctx).Model(&model.WorkflowStep{}).
		Where("warehouse_id = ? AND visitor_type_id = ? AND step_no = ?", key.WarehouseID, key.VisitorTypeID, stepNo)
	if excludeID != "" {
		db = db.Where("workflow_step_id <> ?", excludeID)
	}
	if err := db.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *workflowRepo) Update(ctx context.Context, step *model.WorkflowStep) error {
	return r.db.WithContext(ctx).Omit("VisitorType", "Approver").Save(step).Error
}

func (r *workflowRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("workflow_step_id = ?", id).Delete(&model.WorkflowStep{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
