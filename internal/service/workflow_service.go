package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/repository"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
)

// WorkflowService 审批流程配置业务接口
//
// 审批链以 (仓库, 访客类型) 为键；链内步骤号唯一，允许空号，
// 审批时按步骤号数值升序依次进行，删除步骤不重新编号。
type WorkflowService interface {
	// List 返回 visitorTypeId → 审批链，链内按 stepNo 升序
	List(ctx context.Context, warehouseID string) (dto.WorkflowMap, error)
	AddStep(ctx context.Context, req *dto.CreateWorkflowStepRequest, callerID string) (*dto.WorkflowStepResponse, error)
	UpdateStep(ctx context.Context, id string, req *dto.UpdateWorkflowStepRequest, callerID string) (*dto.WorkflowStepResponse, error)
	DeleteStep(ctx context.Context, id string) error
}

type workflowService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWorkflowService 创建 WorkflowService 实例
func NewWorkflowService(repo *repository.Repository, logger *zap.Logger) WorkflowService {
	return &workflowService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *workflowService) List(ctx context.Context, warehouseID string) (dto.WorkflowMap, error) {
	if _, err := requireWarehouse(ctx, s.repo, warehouseID); err != nil {
		return nil, err
	}

	steps, err := s.repo.Workflow.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		s.logger.Error("列出审批步骤失败", zap.String("warehouse_id", warehouseID), zap.Error(err))
		return nil, err
	}
	return groupWorkflowSteps(steps), nil
}

// groupWorkflowSteps 按访客类型分组，组内按步骤号升序
func groupWorkflowSteps(steps []model.WorkflowStep) dto.WorkflowMap {
	result := make(dto.WorkflowMap)
	for i := range steps {
		step := &steps[i]
		group, ok := result[step.VisitorTypeID]
		if !ok {
			group = dto.WorkflowGroup{VisitorTypeID: step.VisitorTypeID}
			if step.VisitorType != nil {
				group.VisitorType = step.VisitorType.Name
			}
		}
		group.Steps = append(group.Steps, toWorkflowStepResponse(step))
		result[step.VisitorTypeID] = group
	}
	for key, group := range result {
		sort.Slice(group.Steps, func(i, j int) bool { return group.Steps[i].StepNo < group.Steps[j].StepNo })
		result[key] = group
	}
	return result
}

// ────────────────────── AddStep ──────────────────────

func (s *workflowService) AddStep(ctx context.Context, req *dto.CreateWorkflowStepRequest, callerID string) (*dto.WorkflowStepResponse, error) {
	v := apperrors.NewValidation()
	if strings.TrimSpace(req.WarehouseID) == "" {
		v.Add("warehouse_id", "仓库不能为空")
	}
	if strings.TrimSpace(req.VisitorTypeID) == "" {
		v.Add("visitor_type_id", "访客类型不能为空")
	}
	if strings.TrimSpace(req.ApproverID) == "" {
		v.Add("approver", "审批人不能为空")
	}
	if req.StepNo < 1 {
		v.Add("step_no", "步骤号必须为正整数")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if _, err := requireWarehouse(ctx, s.repo, req.WarehouseID); err != nil {
		return nil, err
	}
	vt, err := s.repo.VisitorType.GetByID(ctx, req.VisitorTypeID)
	if err != nil {
		return nil, translateRepoErr(err, "访客类型", req.VisitorTypeID)
	}
	approver, err := s.requireApprover(ctx, req.ApproverID)
	if err != nil {
		return nil, err
	}

	key := repository.ChainKey{WarehouseID: req.WarehouseID, VisitorTypeID: req.VisitorTypeID}
	if err := s.ensureStepFree(ctx, key, req.StepNo, ""); err != nil {
		return nil, err
	}

	step := &model.WorkflowStep{
		WarehouseID:   req.WarehouseID,
		VisitorTypeID: req.VisitorTypeID,
		StepNo:        req.StepNo,
		ApproverID:    approver.UserID,
	}
	step.Stamp(callerID, true)

	if err := s.repo.Workflow.Create(ctx, step); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("该审批链已存在相同步骤号")
		}
		s.logger.Error("创建审批步骤失败", zap.Error(err))
		return nil, err
	}

	step.VisitorType = vt
	step.Approver = approver
	s.logger.Info("审批步骤已添加",
		zap.String("warehouse_id", step.WarehouseID),
		zap.String("visitor_type_id", step.VisitorTypeID),
		zap.Int("step_no", step.StepNo),
	)
	resp := toWorkflowStepResponse(step)
	return &resp, nil
}

// ────────────────────── UpdateStep ──────────────────────

func (s *workflowService) UpdateStep(ctx context.Context, id string, req *dto.UpdateWorkflowStepRequest, callerID string) (*dto.WorkflowStepResponse, error) {
	step, err := s.repo.Workflow.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("审批步骤", id)
		}
		s.logger.Error("查询审批步骤失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	v := apperrors.NewValidation()
	if req.StepNo != nil && *req.StepNo < 1 {
		v.Add("step_no", "步骤号必须为正整数")
	}
	if req.ApproverID != nil && strings.TrimSpace(*req.ApproverID) == "" {
		v.Add("approver", "审批人不能为空")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if req.ApproverID != nil && *req.ApproverID != step.ApproverID {
		approver, err := s.requireApprover(ctx, *req.ApproverID)
		if err != nil {
			return nil, err
		}
		step.ApproverID = approver.UserID
		step.Approver = approver
	}
	if req.StepNo != nil && *req.StepNo != step.StepNo {
		key := repository.ChainKey{WarehouseID: step.WarehouseID, VisitorTypeID: step.VisitorTypeID}
		if err := s.ensureStepFree(ctx, key, *req.StepNo, step.WorkflowStepID); err != nil {
			return nil, err
		}
		step.StepNo = *req.StepNo
	}
	step.Stamp(callerID, false)

	if err := s.repo.Workflow.Update(ctx, step); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("该审批链已存在相同步骤号")
		}
		s.logger.Error("更新审批步骤失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toWorkflowStepResponse(step)
	return &resp, nil
}

// ────────────────────── DeleteStep ──────────────────────

func (s *workflowService) DeleteStep(ctx context.Context, id string) error {
	if err := s.repo.Workflow.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("审批步骤", id)
		}
		s.logger.Error("删除审批步骤失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// requireApprover 审批人必须是启用状态的 Approver
func (s *workflowService) requireApprover(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("approver", "审批人不存在")
		}
		s.logger.Error("查询审批人失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !user.IsActiveApprover() {
		return nil, apperrors.Validation("approver", "审批人必须是启用状态的 Approver")
	}
	return user, nil
}

func (s *workflowService) ensureStepFree(ctx context.Context, key repository.ChainKey, stepNo int, excludeID string) error {
	exists, err := s.repo.Workflow.StepExists(ctx, key, stepNo, excludeID)
	if err != nil {
		s.logger.Error("检查审批步骤失败", zap.Error(err))
		return err
	}
	if exists {
		return apperrors.Conflict("该审批链已存在相同步骤号")
	}
	return nil
}

func toWorkflowStepResponse(step *model.WorkflowStep) dto.WorkflowStepResponse {
	resp := dto.WorkflowStepResponse{
		ID:            step.WorkflowStepID,
		WarehouseID:   step.WarehouseID,
		VisitorTypeID: step.VisitorTypeID,
		StepNo:        step.StepNo,
		ApproverID:    step.ApproverID,
	}
	if step.Approver != nil {
		resp.Approver = step.Approver.Name
	}
	return resp
}
