package model

// WorkflowStep 审批链中的一步 — 对应 warehouse_workflow_steps
// 以 (WarehouseID, VisitorTypeID) 为键，StepNo 在键内唯一，按数值升序依次审批（允许空号）
type WorkflowStep struct {
	WorkflowStepID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WarehouseID    string `gorm:"type:uuid;not null"                             json:"warehouseId"`
	VisitorTypeID  string `gorm:"type:uuid;not null"                             json:"visitorTypeId"`
	StepNo         int    `gorm:"not null"                                       json:"stepNo"`
	ApproverID     string `gorm:"type:uuid;not null;index"                       json:"approverId"`
	BaseModel

	// 关联
	VisitorType *VisitorType `gorm:"foreignKey:VisitorTypeID;references:VisitorTypeID" json:"-"`
	Approver    *User        `gorm:"foreignKey:ApproverID;references:UserID"           json:"-"`
}

// TableName 指定表名
func (WorkflowStep) TableName() string { return "warehouse_workflow_steps" }

// NextStepNo 返回 steps 中大于 current 的最小步骤号；不存在时返回 0
// steps 不要求有序
func NextStepNo(steps []WorkflowStep, current int) int {
	next := 0
	for _, s := range steps {
		if s.StepNo > current && (next == 0 || s.StepNo < next) {
			next = s.StepNo
		}
	}
	return next
}
