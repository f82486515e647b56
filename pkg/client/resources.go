package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/fatymarishu/gatepass/internal/dto"
)

// ── 认证 ──

// Login 登录并返回新会话
// 凭证错误返回 AuthError，且不影响任何已有会话
func Login(ctx context.Context, baseURL string, timeout time.Duration, email, password string) (*Session, error) {
	c := New(baseURL, nil, timeout)
	data, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   dto.LoginRequest{Email: email, Password: password},
		login:  true,
	})
	if err != nil {
		return nil, err
	}
	resp, err := decodeOne[dto.LoginResponse](data)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:      resp.Token,
		RedirectTo: resp.RedirectTo,
		UserID:     resp.User.ID,
		Role:       resp.User.Role,
	}, nil
}

// Logout 注销会话；服务端失败时本地会话同样失效
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.revoke()
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/logout"})
	return err
}

// Me 当前用户
func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	return one[dto.UserResponse](ctx, c, http.MethodGet, "/auth/me", nil)
}

// ── 仓库 ──

func (c *Client) ListWarehouses(ctx context.Context) ([]dto.WarehouseResponse, error) {
	return list[dto.WarehouseResponse](ctx, c, "/warehouse/getall")
}

func (c *Client) CreateWarehouse(ctx context.Context, req dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	return one[dto.WarehouseResponse](ctx, c, http.MethodPost, "/warehouse/create", req)
}

func (c *Client) UpdateWarehouse(ctx context.Context, id string, req dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	return one[dto.WarehouseResponse](ctx, c, http.MethodPut, "/warehouse/"+url.PathEscape(id), req)
}

func (c *Client) DeleteWarehouse(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/warehouse/" + url.PathEscape(id)})
	return err
}

// ── 时间段 ──

func (c *Client) ListTimeSlots(ctx context.Context, warehouseID string) ([]dto.TimeSlotResponse, error) {
	return list[dto.TimeSlotResponse](ctx, c, "/warehouse-time-slots/"+url.PathEscape(warehouseID))
}

func (c *Client) CreateTimeSlot(ctx context.Context, warehouseID string, req dto.TimeSlotRequest) (*dto.TimeSlotResponse, error) {
	return one[dto.TimeSlotResponse](ctx, c, http.MethodPost, "/warehouse-time-slots/warehouse/"+url.PathEscape(warehouseID), req)
}

func (c *Client) UpdateTimeSlot(ctx context.Context, id string, req dto.TimeSlotRequest) (*dto.TimeSlotResponse, error) {
	return one[dto.TimeSlotResponse](ctx, c, http.MethodPut, "/warehouse-time-slots/"+url.PathEscape(id), req)
}

func (c *Client) DeleteTimeSlot(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/warehouse-time-slots/" + url.PathEscape(id)})
	return err
}

// ── 审批流程 ──

// ListWorkflows 返回 visitorTypeId → 审批链
func (c *Client) ListWorkflows(ctx context.Context, warehouseID string) (dto.WorkflowMap, error) {
	m, err := one[dto.WorkflowMap](ctx, c, http.MethodGet, "/warehouse-workflow/"+url.PathEscape(warehouseID), nil)
	if err != nil {
		return nil, err
	}
	if *m == nil {
		return dto.WorkflowMap{}, nil
	}
	return *m, nil
}

func (c *Client) AddWorkflowStep(ctx context.Context, req dto.CreateWorkflowStepRequest) (*dto.WorkflowStepResponse, error) {
	return one[dto.WorkflowStepResponse](ctx, c, http.MethodPost, "/warehouse-workflow", req)
}

func (c *Client) UpdateWorkflowStep(ctx context.Context, id string, req dto.UpdateWorkflowStepRequest) (*dto.WorkflowStepResponse, error) {
	return one[dto.WorkflowStepResponse](ctx, c, http.MethodPut, "/warehouse-workflow/"+url.PathEscape(id), req)
}

func (c *Client) DeleteWorkflowStep(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/warehouse-workflow/" + url.PathEscape(id)})
	return err
}

// ── 访客类型 ──

func (c *Client) ListVisitorTypes(ctx context.Context) ([]dto.VisitorTypeResponse, error) {
	return list[dto.VisitorTypeResponse](ctx, c, "/visitortypes/getall")
}

func (c *Client) ListDisabledVisitorTypes(ctx context.Context) ([]dto.VisitorTypeResponse, error) {
	return list[dto.VisitorTypeResponse](ctx, c, "/visitortypes/getall/disabled")
}

func (c *Client) GetVisitorType(ctx context.Context, id string) (*dto.VisitorTypeResponse, error) {
	return one[dto.VisitorTypeResponse](ctx, c, http.MethodGet, "/visitortypes/"+url.PathEscape(id), nil)
}

func (c *Client) CreateVisitorType(ctx context.Context, req dto.CreateVisitorTypeRequest) (*dto.VisitorTypeResponse, error) {
	return one[dto.VisitorTypeResponse](ctx, c, http.MethodPost, "/visitortypes/create", req)
}

func (c *Client) UpdateVisitorType(ctx context.Context, id string, req dto.UpdateVisitorTypeRequest) (*dto.VisitorTypeResponse, error) {
	return one[dto.VisitorTypeResponse](ctx, c, http.MethodPut, "/visitortypes/"+url.PathEscape(id), req)
}

func (c *Client) DisableVisitorType(ctx context.Context, id string) (*dto.VisitorTypeResponse, error) {
	return one[dto.VisitorTypeResponse](ctx, c, http.MethodPut, "/visitortypes/"+url.PathEscape(id)+"/disable", nil)
}

func (c *Client) EnableVisitorType(ctx context.Context, id string) (*dto.VisitorTypeResponse, error) {
	return one[dto.VisitorTypeResponse](ctx, c, http.MethodPut, "/visitortypes/"+url.PathEscape(id)+"/enable", nil)
}

// ── 用户 ──

func (c *Client) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	return list[dto.UserResponse](ctx, c, "/users/getall")
}

func (c *Client) GetUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	return one[dto.UserResponse](ctx, c, http.MethodGet, "/users/"+url.PathEscape(id), nil)
}

func (c *Client) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	return one[dto.UserResponse](ctx, c, http.MethodPost, "/users/create", req)
}

func (c *Client) UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	return one[dto.UserResponse](ctx, c, http.MethodPut, "/users/"+url.PathEscape(id), req)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/users/" + url.PathEscape(id)})
	return err
}

// ── 访客申请 ──

// SubmitRequest 提交申请；未登录客户端走公开表单
func (c *Client) SubmitRequest(ctx context.Context, form dto.VisitorRequestForm) (*dto.VisitorRequestResponse, error) {
	if form.Accompanying == nil {
		form.Accompanying = []dto.AccompanyingPerson{}
	}
	return one[dto.VisitorRequestResponse](ctx, c, http.MethodPost, "/visitors/create", form)
}

func (c *Client) Track(ctx context.Context, code string) (*dto.TrackResponse, error) {
	return one[dto.TrackResponse](ctx, c, http.MethodGet, "/visitors/track/"+url.PathEscape(code), nil)
}

// DownloadInvite 已通过申请的 iCalendar 文本
func (c *Client) DownloadInvite(ctx context.Context, code string) ([]byte, error) {
	data, err := c.do(ctx, call{method: http.MethodGet, path: "/visitors/track/" + url.PathEscape(code) + "/ics"})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ListRequests 管理员列表，筛选条件取交集
func (c *Client) ListRequests(ctx context.Context, filter dto.VisitorRequestFilter) ([]dto.VisitorRequestResponse, error) {
	return list[dto.VisitorRequestResponse](ctx, c, "/visitors/getall"+filterQuery(filter))
}

func (c *Client) GetRequest(ctx context.Context, id string) (*dto.VisitorRequestResponse, error) {
	return one[dto.VisitorRequestResponse](ctx, c, http.MethodGet, "/visitors/"+url.PathEscape(id), nil)
}

func (c *Client) UpdateRequest(ctx context.Context, id string, form dto.VisitorRequestForm) (*dto.VisitorRequestResponse, error) {
	return one[dto.VisitorRequestResponse](ctx, c, http.MethodPut, "/visitors/"+url.PathEscape(id), form)
}

func (c *Client) Approve(ctx context.Context, id string) (*dto.VisitorRequestResponse, error) {
	return one[dto.VisitorRequestResponse](ctx, c, http.MethodPut, "/visitors/"+url.PathEscape(id)+"/approve", nil)
}

func (c *Client) Reject(ctx context.Context, id string) (*dto.VisitorRequestResponse, error) {
	return one[dto.VisitorRequestResponse](ctx, c, http.MethodPut, "/visitors/"+url.PathEscape(id)+"/reject", nil)
}

// ListForApprover 审批人名下申请；status 为空时返回全部
func (c *Client) ListForApprover(ctx context.Context, approverID, status string) ([]dto.VisitorRequestResponse, error) {
	path := "/visitors/user/" + url.PathEscape(approverID)
	if status != "" {
		path += "/" + url.PathEscape(status)
	}
	return list[dto.VisitorRequestResponse](ctx, c, path)
}

// ExportRequests 导出 xlsx 文件内容
func (c *Client) ExportRequests(ctx context.Context, filter dto.VisitorRequestFilter) ([]byte, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/visitors/export" + filterQuery(filter)})
}

func filterQuery(filter dto.VisitorRequestFilter) string {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Date != "" {
		q.Set("date", filter.Date)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ── 前台 ──

func receptionQuery(warehouseID string) string {
	if warehouseID == "" {
		return ""
	}
	return "?" + url.Values{"warehouse_id": {warehouseID}}.Encode()
}

func (c *Client) ListToday(ctx context.Context, warehouseID string) ([]dto.VisitorRequestResponse, error) {
	return list[dto.VisitorRequestResponse](ctx, c, "/visitors/receptionist/today"+receptionQuery(warehouseID))
}

func (c *Client) ListAllVisitors(ctx context.Context, warehouseID string) ([]dto.VisitorRequestResponse, error) {
	return list[dto.VisitorRequestResponse](ctx, c, "/visitors/receptionist/all"+receptionQuery(warehouseID))
}

func (c *Client) ReceptionStats(ctx context.Context, warehouseID string) (*dto.ReceptionStatsResponse, error) {
	return one[dto.ReceptionStatsResponse](ctx, c, http.MethodGet, "/visitors/receptionist/stats"+receptionQuery(warehouseID), nil)
}

func (c *Client) RecordVisit(ctx context.Context, id string, req dto.UpdateVisitStatusRequest) (*dto.VisitorRequestResponse, error) {
	return one[dto.VisitorRequestResponse](ctx, c, http.MethodPut, "/visitors/receptionist/update/"+url.PathEscape(id), req)
}

// ── 统计 ──

func (c *Client) DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	return one[dto.DashboardStatsResponse](ctx, c, http.MethodGet, "/stats/dashboard", nil)
}
