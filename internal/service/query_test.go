package service

import (
	"testing"
	"time"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/model"
)

func sampleRequests() []model.VisitorRequest {
	day := func(s string) time.Time { d, _ := time.Parse(dateLayout, s); return d }
	return []model.VisitorRequest{
		{VisitorRequestID: "r1", Name: "Asha", VisitorTypeName: "Supplier", WarehouseName: "Main Depot", TrackingCode: "GPAAAA0001", Status: model.StatusPending, VisitDate: day("2026-03-10"), WarehouseID: "wh-a", VisitorTypeID: "vt-1"},
		{VisitorRequestID: "r2", Name: "Zed", VisitorTypeName: "Auditor", WarehouseName: "North Hub", TrackingCode: "GPBBBB0002", Status: model.StatusApproved, VisitDate: day("2026-03-10"), WarehouseID: "wh-b", VisitorTypeID: "vt-2"},
		{VisitorRequestID: "r3", Name: "Mira", VisitorTypeName: "Supplier", WarehouseName: "Main Depot", TrackingCode: "GPCCCC0003", Status: model.StatusRejected, VisitDate: day("2026-03-11"), WarehouseID: "wh-a", VisitorTypeID: "vt-1"},
	}
}

func TestFilterRequests(t *testing.T) {
	list := sampleRequests()

	tests := []struct {
		name   string
		filter RequestFilter
		want   []string
	}{
		{"无条件", RequestFilter{}, []string{"r1", "r2", "r3"}},
		{"按仓库名搜索", RequestFilter{Search: "main depot"}, []string{"r1", "r3"}},
		{"按追踪码搜索", RequestFilter{Search: "bbbb"}, []string{"r2"}},
		{"搜索与状态取交集", RequestFilter{Search: "zed", Status: model.StatusPending}, nil},
		{"状态与日期", RequestFilter{Status: model.StatusRejected, Date: "2026-03-11"}, []string{"r3"}},
		{"日期", RequestFilter{Date: "2026-03-10"}, []string{"r1", "r2"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterRequests(list, tc.filter)
			if len(got) != len(tc.want) {
				t.Fatalf("期望 %v，实际 %d 条", tc.want, len(got))
			}
			for i, r := range got {
				if r.VisitorRequestID != tc.want[i] {
					t.Errorf("第 %d 条期望 %s，实际 %s", i, tc.want[i], r.VisitorRequestID)
				}
			}
		})
	}
}

func TestParseRequestFilter(t *testing.T) {
	f, err := parseRequestFilter(&dto.VisitorRequestFilter{Status: "all", Search: "  asha "})
	if err != nil {
		t.Fatalf("status=all 应通过: %v", err)
	}
	if f.Status != "" || f.Search != "asha" {
		t.Errorf("解析结果不符: %+v", f)
	}

	if _, err := parseRequestFilter(&dto.VisitorRequestFilter{Date: "10/03/2026"}); err == nil {
		t.Error("非法日期应报错")
	}
	if f, err := parseRequestFilter(nil); err != nil || f != (RequestFilter{}) {
		t.Error("nil 过滤条件应视为不过滤")
	}
}

func TestPartitionByStatus(t *testing.T) {
	groups := PartitionByStatus(sampleRequests()[:1])
	for _, s := range []model.RequestStatus{model.StatusPending, model.StatusApproved, model.StatusRejected} {
		if _, ok := groups[s]; !ok {
			t.Errorf("状态 %s 应始终存在", s)
		}
	}
	if len(groups[model.StatusPending]) != 1 || len(groups[model.StatusApproved]) != 0 {
		t.Errorf("分组结果不符: %v", groups)
	}
}

func TestScopeToApprover(t *testing.T) {
	steps := []model.WorkflowStep{
		{WarehouseID: "wh-a", VisitorTypeID: "vt-1", StepNo: 1, ApproverID: "u1"},
		{WarehouseID: "wh-b", VisitorTypeID: "vt-2", StepNo: 1, ApproverID: "u2"},
	}
	got := ScopeToApprover(sampleRequests(), steps, "u1")
	if len(got) != 2 || got[0].VisitorRequestID != "r1" || got[1].VisitorRequestID != "r3" {
		t.Errorf("期望 r1、r3，实际 %+v", got)
	}
	if keys := ChainKeys(append(steps, steps[0])); len(keys) != 2 {
		t.Errorf("ChainKeys 应去重，实际 %d", len(keys))
	}
}

func TestFilterByWarehouse(t *testing.T) {
	list := sampleRequests()
	if got := FilterByWarehouse(list, ""); len(got) != 3 {
		t.Errorf("空仓库应原样返回，实际 %d", len(got))
	}
	if got := FilterByWarehouse(list, "wh-b"); len(got) != 1 || got[0].VisitorRequestID != "r2" {
		t.Errorf("期望仅 r2，实际 %+v", got)
	}
}

func TestComputeDashboardStats(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	list := sampleRequests()
	// r2 在当地 3-10 通过；额外一条在当地 3-09 通过
	list[1].UpdatedAt = time.Date(2026, 3, 9, 19, 0, 0, 0, time.UTC) // 3-10 00:30 IST
	list = append(list, model.VisitorRequest{Status: model.StatusApproved, BaseModel: model.BaseModel{UpdatedAt: time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)}})

	stats := ComputeDashboardStats(list, 4, 2, testNow, loc)
	want := dto.DashboardStatsResponse{TotalWarehouses: 2, PendingRequests: 1, ApprovedToday: 1, ActiveUsers: 4}
	if stats != want {
		t.Errorf("期望 %+v，实际 %+v", want, stats)
	}
}

func TestCalendarDay(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	got := calendarDay(time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC), loc)
	if got.Format(dateLayout) != "2026-03-11" {
		t.Errorf("UTC 19:00 在 IST 已是次日，实际 %s", got.Format(dateLayout))
	}
}
