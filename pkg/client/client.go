// Package client 是 Gatepass REST 接口的 Go 客户端。
//
// 会话由调用方显式持有：登录得到 Session，传入 New；登出或收到 401 时会话失效。
// 列表接口统一解包 {data: [...]}，data 缺失或不是数组时视为空列表。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
)

// 与服务端 handler 保持一致的业务码
const codeInvalidState = 10410

// Session 登录态
type Session struct {
	Token      string
	RedirectTo string
	UserID     string
	Role       string

	mu      sync.RWMutex
	revoked bool
}

// Valid 会话是否仍可用
func (s *Session) Valid() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.revoked && s.Token != ""
}

func (s *Session) revoke() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.revoked = true
	s.mu.Unlock()
}

func (s *Session) bearer() string {
	if !s.Valid() {
		return ""
	}
	return s.Token
}

// Client REST 客户端
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	logger  *zap.Logger
}

// New 创建客户端；session 为 nil 时只能访问公开接口
func New(baseURL string, session *Session, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: session,
		logger:  zap.NewNop(),
	}
}

// WithLogger 设置日志器，仅用于尽力而为的后台刷新
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	c.logger = logger
	return c
}

// Session 当前会话
func (c *Client) Session() *Session { return c.session }

// envelope 服务端统一响应结构
type envelope struct {
	Success bool              `json:"success"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Fields  map[string]string `json:"fields"`
}

// ── 请求执行 ──

type call struct {
	method string
	path   string
	body   interface{}
	login  bool // 登录请求的 401 表示凭证错误，不清除会话
}

// do 执行请求并返回 data 字段原文
func (c *Client) do(ctx context.Context, req call) (json.RawMessage, error) {
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("序列化请求失败: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.bearer(); token != "" && !req.login {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transient("读取响应失败", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		if decodeErr != nil {
			// 非 JSON 的成功响应（如文件下载）原样返回
			return raw, nil
		}
		return env.Data, nil
	}

	if resp.StatusCode == http.StatusUnauthorized && !req.login {
		c.session.revoke()
		return nil, apperrors.Auth("会话已过期，请重新登录")
	}
	return nil, statusError(resp.StatusCode, env)
}

func transportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Transient("请求超时", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Transient("请求超时", err)
	}
	return apperrors.Transient("网络错误", err)
}

// statusError 按 HTTP 状态码还原业务错误类别
func statusError(status int, env envelope) error {
	msg := env.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusBadRequest:
		v := apperrors.NewValidation()
		for field, m := range env.Fields {
			v.Add(field, m)
		}
		if v.Empty() {
			v.Add("request", msg)
		}
		return v
	case status == http.StatusUnauthorized:
		return apperrors.Auth(msg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case status == http.StatusNotFound:
		return &apperrors.Error{Kind: apperrors.KindNotFound, Message: msg}
	case status == http.StatusConflict:
		if env.Code == codeInvalidState {
			return apperrors.InvalidState(msg)
		}
		return apperrors.Conflict(msg)
	case status >= http.StatusInternalServerError:
		return apperrors.Transient(msg, nil)
	default:
		return fmt.Errorf("HTTP %d: %s", status, msg)
	}
}

// ── 解包 ──

// decodeList data 缺失、为 null 或不是数组时返回空列表
func decodeList[T any](data json.RawMessage) []T {
	items := []T{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return items
	}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return []T{}
	}
	return items
}

func decodeOne[T any](data json.RawMessage) (*T, error) {
	var v T
	if len(bytes.TrimSpace(data)) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return &v, nil
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	data, err := c.do(ctx, call{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	return decodeList[T](data), nil
}

func one[T any](ctx context.Context, c *Client, method, path string, body interface{}) (*T, error) {
	data, err := c.do(ctx, call{method: method, path: path, body: body})
	if err != nil {
		return nil, err
	}
	return decodeOne[T](data)
}
