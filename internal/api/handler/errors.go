package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
	"github.com/fatymarishu/gatepass/pkg/response"
)

// 业务错误码
const (
	codeValidation   = 10001
	codeAuth         = 10002
	codeForbidden    = 10003
	codeNotFound     = 10404
	codeConflict     = 10409
	codeInvalidState = 10410
)

// respondError 按错误类别映射 HTTP 状态码；未分类错误一律 500
func respondError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		response.ValidationFailed(c, ve.Fields)
		return
	}

	msg := err.Error()
	var be *apperrors.Error
	if errors.As(err, &be) {
		msg = be.Message
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		response.NotFound(c, codeNotFound, msg)
	case apperrors.KindConflict:
		response.Conflict(c, codeConflict, msg)
	case apperrors.KindInvalidState:
		response.Error(c, http.StatusConflict, codeInvalidState, msg)
	case apperrors.KindAuth:
		response.Unauthorized(c, codeAuth, msg)
	case apperrors.KindForbidden:
		response.Forbidden(c, codeForbidden, msg)
	case apperrors.KindTransient:
		response.ServiceUnavailable(c, msg)
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// bindFailed 请求体或查询参数绑定失败
func bindFailed(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.BadRequest(c, codeValidation, "参数校验失败")
}
