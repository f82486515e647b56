package model

import (
	"time"

	"gorm.io/datatypes"
)

// ── 审批状态 ──

// RequestStatus 审批状态，仅由审批流转修改
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// 合法流转：pending → approved | rejected；终态不可再流转
var statusTransitions = map[RequestStatus][]RequestStatus{
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransitionTo 判断状态流转是否合法
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseRequestStatus 解析审批状态
func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return RequestStatus(s), true
	}
	return "", false
}

// ── 到访状态（前台维护，与审批状态正交）──

// VisitStatus 到访状态
type VisitStatus string

const (
	VisitPending VisitStatus = "pending"
	VisitVisited VisitStatus = "visited"
	VisitNoShow  VisitStatus = "no_show"
)

// ParseVisitStatus 解析到访状态
func ParseVisitStatus(s string) (VisitStatus, bool) {
	switch VisitStatus(s) {
	case VisitPending, VisitVisited, VisitNoShow:
		return VisitStatus(s), true
	}
	return "", false
}

// Punctuality 准时情况，空串表示未记录
type Punctuality string

const (
	PunctualityOnTime Punctuality = "on_time"
	PunctualityLate   Punctuality = "late"
)

// ParsePunctuality 解析准时情况
func ParsePunctuality(s string) (Punctuality, bool) {
	switch Punctuality(s) {
	case PunctualityOnTime, PunctualityLate:
		return Punctuality(s), true
	}
	return "", false
}

// AccompanyingPerson 随行人员
type AccompanyingPerson struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// VisitorRequest 访客申请 — 对应 visitor_requests
//
// VisitorTypeName / WarehouseName / TimeSlotName / SlotFrom / SlotTo 为创建时写入的快照，
// 被引用的时间段或访客类型删除后历史记录仍可展示
type VisitorRequest struct {
	VisitorRequestID    string                                  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TrackingCode        string                                  `gorm:"type:varchar(32);not null;uniqueIndex"          json:"trackingCode"`
	Name                string                                  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email               string                                  `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone               string                                  `gorm:"type:varchar(30);not null"                      json:"phone"`
	VisitorTypeID       string                                  `gorm:"type:uuid;not null"                             json:"visitorTypeId"`
	VisitorTypeName     string                                  `gorm:"type:varchar(100);not null"                     json:"visitorTypeName"`
	WarehouseID         string                                  `gorm:"type:uuid;not null"                             json:"warehouseId"`
	WarehouseName       string                                  `gorm:"type:varchar(100);not null"                     json:"warehouseName"`
	WarehouseTimeSlotID string                                  `gorm:"type:uuid;not null"                             json:"warehouseTimeSlotId"`
	TimeSlotName        string                                  `gorm:"type:varchar(50);not null"                      json:"timeSlotName"`
	SlotFrom            string                                  `gorm:"type:varchar(5);not null"                       json:"slotFrom"`
	SlotTo              string                                  `gorm:"type:varchar(5);not null"                       json:"slotTo"`
	VisitDate           time.Time                               `gorm:"type:date;not null"                             json:"date"`
	Purpose             string                                  `gorm:"type:text;not null"                             json:"purpose"`
	Accompanying        datatypes.JSONSlice[AccompanyingPerson] `gorm:"type:jsonb;not null"                            json:"accompanying"`
	Status              RequestStatus                           `gorm:"type:varchar(20);not null"                      json:"status"`
	CurrentStepNo       int                                     `gorm:"not null"                                       json:"currentStepNo"`
	VisitStatus         VisitStatus                             `gorm:"type:varchar(20);not null"                      json:"visitStatus"`
	ArrivedAt           *time.Time                              `                                                      json:"arrivedAt,omitempty"`
	CheckedOutAt        *time.Time                              `                                                      json:"checkedOutAt,omitempty"`
	Punctuality         Punctuality                             `gorm:"type:varchar(20);not null"                      json:"punctuality,omitempty"`
	BaseModel
}

// TableName 指定表名
func (VisitorRequest) TableName() string { return "visitor_requests" }

// SlotDisplay 时间段展示文本；快照缺失时为 "-"
func (r *VisitorRequest) SlotDisplay() string {
	if r.SlotFrom == "" || r.SlotTo == "" {
		return "-"
	}
	return r.SlotFrom + " - " + r.SlotTo
}

// InSession 已到达且未离开
func (r *VisitorRequest) InSession() bool {
	return r.ArrivedAt != nil && r.CheckedOutAt == nil
}

// ApprovalDecision 审批动作
type ApprovalDecision string

const (
	DecisionApproved ApprovalDecision = "approved"
	DecisionRejected ApprovalDecision = "rejected"
)

// VisitorRequestApproval 审批记录 — 对应 visitor_request_approvals
type VisitorRequestApproval struct {
	ApprovalID       string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VisitorRequestID string           `gorm:"type:uuid;not null;index"                       json:"visitorRequestId"`
	StepNo           int              `gorm:"not null"                                       json:"stepNo"`
	ApproverID       string           `gorm:"type:uuid;not null"                             json:"approverId"`
	Decision         ApprovalDecision `gorm:"type:varchar(20);not null"                      json:"decision"`
	ActedAt          time.Time        `gorm:"not null"                                       json:"actedAt"`
}

// TableName 指定表名
func (VisitorRequestApproval) TableName() string { return "visitor_request_approvals" }
