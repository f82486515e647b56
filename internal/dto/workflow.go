package dto

// ── 审批流程模块 DTO ──

// CreateWorkflowStepRequest 新增审批步骤（字段命名沿用前端约定的 snake_case）
type CreateWorkflowStepRequest struct {
	WarehouseID   string `json:"warehouse_id"`
	VisitorTypeID string `json:"visitor_type_id"`
	StepNo        int    `json:"step_no"`
	ApproverID    string `json:"approver"`
}

// UpdateWorkflowStepRequest 修改审批步骤
type UpdateWorkflowStepRequest struct {
	StepNo     *int    `json:"step_no"`
	ApproverID *string `json:"approver"`
}

// WorkflowStepResponse 审批步骤
type WorkflowStepResponse struct {
	ID            string `json:"id"`
	WarehouseID   string `json:"warehouseId"`
	VisitorTypeID string `json:"visitorTypeId"`
	StepNo        int    `json:"stepNo"`
	ApproverID    string `json:"approverId"`
	Approver      string `json:"approver"` // 审批人姓名
}

// WorkflowGroup 某访客类型下的完整审批链，Steps 按 StepNo 升序
type WorkflowGroup struct {
	VisitorTypeID string                 `json:"visitorTypeId"`
	VisitorType   string                 `json:"visitorType"`
	Steps         []WorkflowStepResponse `json:"steps"`
}

// WorkflowMap visitorTypeId → 审批链
type WorkflowMap map[string]WorkflowGroup
