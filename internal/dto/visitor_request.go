package dto

// ── 访客申请模块 DTO ──

// AccompanyingPerson 随行人员
type AccompanyingPerson struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// VisitorRequestForm 创建/修改访客申请
// 校验全部在 Service 完成（一次返回全部违规字段）
type VisitorRequestForm struct {
	Name                string               `json:"name"`
	Email               string               `json:"email"`
	Phone               string               `json:"phone"`
	VisitorTypeID       string               `json:"visitorTypeId"`
	WarehouseID         string               `json:"warehouseId"`
	WarehouseTimeSlotID string               `json:"warehouseTimeSlotId"`
	Date                string               `json:"date"` // "2006-01-02"
	Purpose             string               `json:"purpose"`
	Accompanying        []AccompanyingPerson `json:"accompanying"`
}

// VisitorRequestFilter 管理员列表筛选，三项条件取交集
type VisitorRequestFilter struct {
	Search string `form:"search"`
	Status string `form:"status"`
	Date   string `form:"date"`
}

// VisitorRequestResponse 访客申请详情
type VisitorRequestResponse struct {
	ID                  string               `json:"id"`
	TrackingCode        string               `json:"trackingCode"`
	Name                string               `json:"name"`
	Email               string               `json:"email"`
	Phone               string               `json:"phone"`
	VisitorTypeID       string               `json:"visitorTypeId"`
	VisitorTypeName     string               `json:"visitorTypeName"`
	WarehouseID         string               `json:"warehouseId"`
	WarehouseName       string               `json:"warehouseName"`
	WarehouseTimeSlotID string               `json:"warehouseTimeSlotId"`
	TimeSlotName        string               `json:"timeSlotName"`
	TimeSlot            string               `json:"timeSlot"` // "09:00 - 11:00" 或 "-"
	Date                string               `json:"date"`
	Purpose             string               `json:"purpose"`
	Accompanying        []AccompanyingPerson `json:"accompanying"`
	Status              string               `json:"status"`
	CurrentStepNo       int                  `json:"currentStepNo"`
	VisitStatus         string               `json:"visitStatus"`
	ArrivedAt           *string              `json:"arrivedAt"`
	CheckedOutAt        *string              `json:"checkedOutAt"`
	Punctuality         string               `json:"punctuality"`
	CreatedAt           string               `json:"createdAt"`
	UpdatedAt           string               `json:"updatedAt"`
}

// TrackResponse 公开查询结果（不含联系方式）
type TrackResponse struct {
	TrackingCode  string `json:"trackingCode"`
	Name          string `json:"name"`
	VisitorType   string `json:"visitorTypeName"`
	Warehouse     string `json:"warehouseName"`
	TimeSlot      string `json:"timeSlot"`
	Date          string `json:"date"`
	Status        string `json:"status"`
	CurrentStepNo int    `json:"currentStepNo"`
	VisitStatus   string `json:"visitStatus"`
	UpdatedAt     string `json:"updatedAt"`
}
