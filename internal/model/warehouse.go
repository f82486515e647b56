package model

// Warehouse 仓库（园区）表 — 对应 warehouses
type Warehouse struct {
	WarehouseID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Location    string `gorm:"type:varchar(200);not null"                     json:"location"`
	BaseModel
}

// TableName 指定表名
func (Warehouse) TableName() string { return "warehouses" }
