package model

// VisitorType 访客类型 — 对应 visitor_types
// IsActive=false 为停用（软删除），历史申请仍可通过 ID 解析
type VisitorType struct {
	VisitorTypeID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description   string `gorm:"type:text;not null;default:''"                  json:"description"`
	IsActive      bool   `gorm:"not null"                                       json:"isActive"`
	BaseModel
}

// TableName 指定表名
func (VisitorType) TableName() string { return "visitor_types" }
