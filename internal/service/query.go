package service

import (
	"strings"
	"time"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/repository"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
)

// ── 纯过滤函数：只读，不修改传入的切片元素 ──

// RequestFilter 管理员视图筛选条件，零值表示不过滤
type RequestFilter struct {
	Search string
	Status model.RequestStatus
	Date   string // "2006-01-02"
}

// parseRequestFilter 校验查询参数
func parseRequestFilter(in *dto.VisitorRequestFilter) (RequestFilter, error) {
	var f RequestFilter
	if in == nil {
		return f, nil
	}
	v := apperrors.NewValidation()

	f.Search = strings.TrimSpace(in.Search)
	if in.Status != "" && in.Status != "all" {
		status, ok := model.ParseRequestStatus(in.Status)
		if !ok {
			v.Add("status", "状态取值应为 pending、approved 或 rejected")
		}
		f.Status = status
	}
	if in.Date != "" {
		if _, err := time.Parse(dateLayout, in.Date); err != nil {
			v.Add("date", "日期格式应为 YYYY-MM-DD")
		}
		f.Date = in.Date
	}
	return f, v.OrNil()
}

// FilterRequests 搜索、状态、日期三项取交集
// 搜索匹配姓名、访客类型、仓库名、追踪码，大小写不敏感
func FilterRequests(list []model.VisitorRequest, f RequestFilter) []model.VisitorRequest {
	needle := strings.ToLower(f.Search)
	result := make([]model.VisitorRequest, 0, len(list))
	for _, r := range list {
		if needle != "" && !matchesSearch(&r, needle) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Date != "" && r.VisitDate.Format(dateLayout) != f.Date {
			continue
		}
		result = append(result, r)
	}
	return result
}

func matchesSearch(r *model.VisitorRequest, needle string) bool {
	for _, field := range []string{r.Name, r.VisitorTypeName, r.WarehouseName, r.TrackingCode} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// PartitionByStatus 按审批状态分组，三个状态键始终存在
func PartitionByStatus(list []model.VisitorRequest) map[model.RequestStatus][]model.VisitorRequest {
	result := map[model.RequestStatus][]model.VisitorRequest{
		model.StatusPending:  {},
		model.StatusApproved: {},
		model.StatusRejected: {},
	}
	for _, r := range list {
		result[r.Status] = append(result[r.Status], r)
	}
	return result
}

// ChainKeys 步骤所属审批链去重
func ChainKeys(steps []model.WorkflowStep) []repository.ChainKey {
	seen := make(map[repository.ChainKey]bool, len(steps))
	keys := make([]repository.ChainKey, 0, len(steps))
	for _, s := range steps {
		k := repository.ChainKey{WarehouseID: s.WarehouseID, VisitorTypeID: s.VisitorTypeID}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// ScopeToApprover 仅保留审批链包含 approverID 的申请
func ScopeToApprover(list []model.VisitorRequest, steps []model.WorkflowStep, approverID string) []model.VisitorRequest {
	chains := make(map[repository.ChainKey]bool)
	for _, s := range steps {
		if s.ApproverID == approverID {
			chains[repository.ChainKey{WarehouseID: s.WarehouseID, VisitorTypeID: s.VisitorTypeID}] = true
		}
	}
	result := make([]model.VisitorRequest, 0, len(list))
	for _, r := range list {
		if chains[repository.ChainKey{WarehouseID: r.WarehouseID, VisitorTypeID: r.VisitorTypeID}] {
			result = append(result, r)
		}
	}
	return result
}

// FilterByWarehouse warehouseID 为空时原样返回
func FilterByWarehouse(list []model.VisitorRequest, warehouseID string) []model.VisitorRequest {
	if warehouseID == "" {
		return list
	}
	result := make([]model.VisitorRequest, 0, len(list))
	for _, r := range list {
		if r.WarehouseID == warehouseID {
			result = append(result, r)
		}
	}
	return result
}

// ── 统计 ──

// ComputeDashboardStats 管理员看板；approvedToday 以 updatedAt 在 loc 时区的日期判断
func ComputeDashboardStats(list []model.VisitorRequest, activeUsers, warehouses int64, now time.Time, loc *time.Location) dto.DashboardStatsResponse {
	today := calendarDay(now, loc)
	stats := dto.DashboardStatsResponse{
		TotalWarehouses: int(warehouses),
		ActiveUsers:     int(activeUsers),
	}
	for _, r := range list {
		switch r.Status {
		case model.StatusPending:
			stats.PendingRequests++
		case model.StatusApproved:
			if sameDay(calendarDay(r.UpdatedAt, loc), today) {
				stats.ApprovedToday++
			}
		}
	}
	return stats
}

// ComputeReceptionStats 前台当日统计，list 应已限定为当天
func ComputeReceptionStats(list []model.VisitorRequest) dto.ReceptionStatsResponse {
	stats := dto.ReceptionStatsResponse{TodayVisitors: len(list)}
	for i := range list {
		r := &list[i]
		switch r.VisitStatus {
		case model.VisitVisited:
			stats.VisitedCount++
		case model.VisitNoShow:
			stats.NoShowCount++
		default:
			stats.PendingCount++
		}
		if r.InSession() {
			stats.ActiveSessions++
		}
	}
	return stats
}
