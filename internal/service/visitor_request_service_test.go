package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/model"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
	"github.com/fatymarishu/gatepass/pkg/mq"
)

// ── 测试辅助 ──

// depot 一套可提交申请的基础数据：仓库 + 时间段 + 访客类型 + 单步审批
type depot struct {
	warehouse   *model.Warehouse
	slot        *model.TimeSlot
	visitorType *model.VisitorType
	approver    *model.User
}

func setupTestVisitorRequestService() (*visitorRequestService, *testEnv, depot) {
	env := newTestEnv()
	d := depot{
		warehouse:   env.addWarehouse("Main Depot", "City A"),
		visitorType: env.addVisitorType("Supplier", true),
		approver:    env.addUser("U1", model.RoleApprover, true),
	}
	d.slot = env.addSlot(d.warehouse.WarehouseID, "Morning", "09:00", "11:00")
	env.addStep(d.warehouse.WarehouseID, d.visitorType.VisitorTypeID, 1, d.approver.UserID)

	svc := NewVisitorRequestService(env.visit, env.repo, env.publisher, env.clock(), env.logger).(*visitorRequestService)
	return svc, env, d
}

func validForm(d depot) *dto.VisitorRequestForm {
	return &dto.VisitorRequestForm{
		Name:                "Asha Rao",
		Email:               "asha@example.com",
		Phone:               "+91 98765 43210",
		VisitorTypeID:       d.visitorType.VisitorTypeID,
		WarehouseID:         d.warehouse.WarehouseID,
		WarehouseTimeSlotID: d.slot.TimeSlotID,
		Date:                "2026-03-10",
		Purpose:             "Delivery",
	}
}

func approverActor(u *model.User) Actor {
	return Actor{UserID: u.UserID, Role: u.Role}
}

// ── Create 测试 ──

func TestVisitorRequestService_Create_Success(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()

	result, err := svc.Create(context.Background(), validForm(d), "")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != "pending" {
		t.Errorf("期望 status=pending，实际=%s", result.Status)
	}
	if result.VisitStatus != "pending" {
		t.Errorf("期望 visitStatus=pending，实际=%s", result.VisitStatus)
	}
	if result.CurrentStepNo != 1 {
		t.Errorf("期望 currentStepNo=1，实际=%d", result.CurrentStepNo)
	}
	if !strings.HasPrefix(result.TrackingCode, "GP") || len(result.TrackingCode) != 10 {
		t.Errorf("追踪码格式不符: %s", result.TrackingCode)
	}
	if result.WarehouseName != "Main Depot" || result.VisitorTypeName != "Supplier" || result.TimeSlot != "09:00 - 11:00" {
		t.Errorf("快照字段不符: %+v", result)
	}
	if got := env.publisher.types(); len(got) != 1 || got[0] != mq.EventRequestCreated {
		t.Errorf("期望发布 created 事件，实际 %v", got)
	}
}

func TestVisitorRequestService_Create_ListsAllViolations(t *testing.T) {
	svc, _, _ := setupTestVisitorRequestService()

	_, err := svc.Create(context.Background(), &dto.VisitorRequestForm{
		Email: "not-an-email",
		Phone: "123",
		Date:  "2026-03-09",
		Accompanying: []dto.AccompanyingPerson{
			{Name: "", Email: "bad@", Phone: "12"},
		},
	}, "")
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	for _, f := range []string{
		"name", "email", "phone", "visitorTypeId", "warehouseId", "warehouseTimeSlotId", "date",
		"accompanying[0].name", "accompanying[0].email", "accompanying[0].phone",
	} {
		if !ve.Has(f) {
			t.Errorf("期望字段 %s 报错，实际: %v", f, ve.Fields)
		}
	}
}

func TestVisitorRequestService_Create_DateGranularity(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	// 当地时间 23:59，同一天的申请仍然有效
	env.now = time.Date(2026, 3, 10, 18, 29, 0, 0, time.UTC)

	form := validForm(d)
	if _, err := svc.Create(context.Background(), form, ""); err != nil {
		t.Fatalf("当天日期应通过: %v", err)
	}

	form.Date = "2026-03-09"
	_, err := svc.Create(context.Background(), form, "")
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) || !ve.Has("date") {
		t.Errorf("早于今天期望 date 报错，实际: %v", err)
	}

	// 跨过当地零点后，前一天即为过去
	env.now = time.Date(2026, 3, 10, 18, 31, 0, 0, time.UTC)
	form.Date = "2026-03-10"
	if _, err := svc.Create(context.Background(), form, ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("当地已是 3-11，3-10 应被拒绝，实际: %v", err)
	}
}

func TestVisitorRequestService_Create_AccompanyingLimit(t *testing.T) {
	svc, _, d := setupTestVisitorRequestService()

	people := func(n int) []dto.AccompanyingPerson {
		out := make([]dto.AccompanyingPerson, n)
		for i := range out {
			out[i] = dto.AccompanyingPerson{Name: "P"}
		}
		return out
	}

	form := validForm(d)
	form.Accompanying = people(6)
	if _, err := svc.Create(context.Background(), form, ""); err != nil {
		t.Fatalf("公开表单 6 人应通过: %v", err)
	}

	form.Accompanying = people(7)
	_, err := svc.Create(context.Background(), form, "")
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) || !strings.Contains(ve.Fields["accompanying"], "6") {
		t.Errorf("公开表单 7 人期望报错并提示上限 6，实际: %v", err)
	}

	form.Accompanying = people(4)
	_, err = svc.Create(context.Background(), form, "admin-001")
	if !errors.As(err, &ve) || !strings.Contains(ve.Fields["accompanying"], "3") {
		t.Errorf("后台 4 人期望报错并提示上限 3，实际: %v", err)
	}
}

func TestVisitorRequestService_Create_NoWorkflowConfigured(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	auditor := env.addVisitorType("Auditor", true)

	form := validForm(d)
	form.VisitorTypeID = auditor.VisitorTypeID
	_, err := svc.Create(context.Background(), form, "")
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) || !ve.Has("visitorTypeId") {
		t.Errorf("未配置审批链期望 visitorTypeId 报错，实际: %v", err)
	}
}

func TestVisitorRequestService_Create_ReferenceChecks(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()

	form := validForm(d)
	form.WarehouseID = "nonexistent"
	if _, err := svc.Create(context.Background(), form, ""); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("未知仓库期望 NotFound，实际: %v", err)
	}

	other := env.addWarehouse("North Hub", "City B")
	foreign := env.addSlot(other.WarehouseID, "Night", "20:00", "22:00")
	form = validForm(d)
	form.WarehouseTimeSlotID = foreign.TimeSlotID
	var ve *apperrors.ValidationError
	if _, err := svc.Create(context.Background(), form, ""); !errors.As(err, &ve) || !ve.Has("warehouseTimeSlotId") {
		t.Errorf("其他仓库的时间段期望报错，实际: %v", err)
	}

	d.visitorType.IsActive = false
	form = validForm(d)
	if _, err := svc.Create(context.Background(), form, ""); !errors.As(err, &ve) || !ve.Has("visitorTypeId") {
		t.Errorf("停用的访客类型期望报错，实际: %v", err)
	}
}

// ── 审批流转测试 ──

func TestVisitorRequestService_Scenario_CreateThenApprove(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validForm(d), "")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	env.now = testNow.Add(2 * time.Hour)
	approved, err := svc.Approve(ctx, created.ID, approverActor(d.approver))
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if approved.Status != "approved" {
		t.Errorf("期望 status=approved，实际=%s", approved.Status)
	}
	if approved.UpdatedAt != dto.FormatTime(env.now) {
		t.Errorf("期望 updatedAt 刷新为 %s，实际=%s", dto.FormatTime(env.now), approved.UpdatedAt)
	}
	if len(env.requests.approvals) != 1 || env.requests.approvals[0].Decision != model.DecisionApproved {
		t.Errorf("期望写入一条审批记录，实际 %+v", env.requests.approvals)
	}

	// 再次审批
	_, err = svc.Approve(ctx, created.ID, approverActor(d.approver))
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("重复审批期望 InvalidState，实际: %v", err)
	}
	_, err = svc.Reject(ctx, created.ID, approverActor(d.approver))
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("已通过后驳回期望 InvalidState，实际: %v", err)
	}
	stored, _ := svc.GetByID(ctx, created.ID)
	if stored.Status != "approved" {
		t.Errorf("非法流转后状态应保持 approved，实际=%s", stored.Status)
	}
}

func TestVisitorRequestService_Reject(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validForm(d), "")

	rejected, err := svc.Reject(ctx, created.ID, approverActor(d.approver))
	if err != nil {
		t.Fatalf("Reject 应成功: %v", err)
	}
	if rejected.Status != "rejected" {
		t.Errorf("期望 status=rejected，实际=%s", rejected.Status)
	}
	if got := env.publisher.types(); got[len(got)-1] != mq.EventRequestRejected {
		t.Errorf("期望最后一个事件为 rejected，实际 %v", got)
	}
}

func TestVisitorRequestService_OnlyApproverRoleMayDecide(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validForm(d), "")
	admin := env.addUser("Admin", model.RoleAdmin, true)

	_, err := svc.Approve(ctx, created.ID, Actor{UserID: admin.UserID, Role: model.RoleAdmin})
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("管理员审批期望 Forbidden，实际: %v", err)
	}
}

func TestVisitorRequestService_Sequential_MultiStep(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	ctx := context.Background()
	u2 := env.addUser("U2", model.RoleApprover, true)
	env.addStep(d.warehouse.WarehouseID, d.visitorType.VisitorTypeID, 5, u2.UserID)

	created, _ := svc.Create(ctx, validForm(d), "")

	// 第 5 步的审批人不能越过第 1 步
	if _, err := svc.Approve(ctx, created.ID, approverActor(u2)); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("越级审批期望 Forbidden，实际: %v", err)
	}

	step1, err := svc.Approve(ctx, created.ID, approverActor(d.approver))
	if err != nil {
		t.Fatalf("第 1 步审批应成功: %v", err)
	}
	if step1.Status != "pending" || step1.CurrentStepNo != 5 {
		t.Errorf("期望推进到第 5 步且仍为 pending，实际 status=%s step=%d", step1.Status, step1.CurrentStepNo)
	}

	// 第 1 步审批人不能再审批第 5 步
	if _, err := svc.Approve(ctx, created.ID, approverActor(d.approver)); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("非当前步骤审批人期望 Forbidden，实际: %v", err)
	}

	final, err := svc.Approve(ctx, created.ID, approverActor(u2))
	if err != nil {
		t.Fatalf("最后一步审批应成功: %v", err)
	}
	if final.Status != "approved" {
		t.Errorf("最后一步通过后期望 approved，实际=%s", final.Status)
	}

	want := []string{mq.EventRequestCreated, mq.EventRequestAdvanced, mq.EventRequestApproved}
	got := env.publisher.types()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("事件序列期望 %v，实际 %v", want, got)
	}
}

func TestVisitorRequestService_Sequential_RejectAtAnyStep(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	ctx := context.Background()
	u2 := env.addUser("U2", model.RoleApprover, true)
	env.addStep(d.warehouse.WarehouseID, d.visitorType.VisitorTypeID, 2, u2.UserID)

	created, _ := svc.Create(ctx, validForm(d), "")
	if _, err := svc.Approve(ctx, created.ID, approverActor(d.approver)); err != nil {
		t.Fatalf("第 1 步审批应成功: %v", err)
	}
	rejected, err := svc.Reject(ctx, created.ID, approverActor(u2))
	if err != nil {
		t.Fatalf("第 2 步驳回应成功: %v", err)
	}
	if rejected.Status != "rejected" || rejected.CurrentStepNo != 2 {
		t.Errorf("期望 rejected@2，实际 %s@%d", rejected.Status, rejected.CurrentStepNo)
	}
}

func TestVisitorRequestService_Sequential_DeletedCurrentStepFallsThrough(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	ctx := context.Background()
	u2 := env.addUser("U2", model.RoleApprover, true)
	env.addStep(d.warehouse.WarehouseID, d.visitorType.VisitorTypeID, 3, u2.UserID)

	created, _ := svc.Create(ctx, validForm(d), "")
	for id, s := range env.workflow.steps {
		if s.StepNo == 1 {
			delete(env.workflow.steps, id)
		}
	}

	result, err := svc.Approve(ctx, created.ID, approverActor(u2))
	if err != nil {
		t.Fatalf("当前步骤被删除后应由下一步审批人处理: %v", err)
	}
	if result.Status != "approved" {
		t.Errorf("期望 approved，实际=%s", result.Status)
	}
}

func TestVisitorRequestService_AnyStep_SingleApprovalResolves(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	svc.cfg.SequentialApproval = false
	ctx := context.Background()
	u2 := env.addUser("U2", model.RoleApprover, true)
	outsider := env.addUser("U3", model.RoleApprover, true)
	env.addStep(d.warehouse.WarehouseID, d.visitorType.VisitorTypeID, 2, u2.UserID)

	created, _ := svc.Create(ctx, validForm(d), "")

	if _, err := svc.Approve(ctx, created.ID, approverActor(outsider)); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("审批链外的审批人期望 Forbidden，实际: %v", err)
	}

	result, err := svc.Approve(ctx, created.ID, approverActor(u2))
	if err != nil {
		t.Fatalf("任一步审批人均可审批: %v", err)
	}
	if result.Status != "approved" {
		t.Errorf("非顺序模式一次通过即 approved，实际=%s", result.Status)
	}
}

func TestVisitorRequestService_Approve_StorageFailureLeavesStatus(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validForm(d), "")

	env.requests.failNext = errMockStorage
	if _, err := svc.Approve(ctx, created.ID, approverActor(d.approver)); !errors.Is(err, errMockStorage) {
		t.Fatalf("期望透传存储错误，实际: %v", err)
	}
	stored, _ := svc.GetByID(ctx, created.ID)
	if stored.Status != "pending" {
		t.Errorf("保存失败时状态应保持 pending，实际=%s", stored.Status)
	}
}

func TestVisitorRequestService_ConcurrentDecisionsResolveOnce(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	svc.cfg.SequentialApproval = false
	ctx := context.Background()
	u2 := env.addUser("U2", model.RoleApprover, true)
	env.addStep(d.warehouse.WarehouseID, d.visitorType.VisitorTypeID, 2, u2.UserID)

	created, _ := svc.Create(ctx, validForm(d), "")

	// 两个审批人都读到 pending 之后才开始写入
	gate := &sync.WaitGroup{}
	gate.Add(2)
	env.requests.mu.Lock()
	env.requests.loadGate = gate
	env.requests.mu.Unlock()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Approve(ctx, created.ID, approverActor(d.approver))
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Reject(ctx, created.ID, approverActor(u2))
	}()
	wg.Wait()

	env.requests.mu.Lock()
	env.requests.loadGate = nil
	env.requests.mu.Unlock()

	succeeded, stale := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrInvalidState):
			stale++
		default:
			t.Fatalf("意外错误: %v", err)
		}
	}
	if succeeded != 1 || stale != 1 {
		t.Fatalf("期望 1 次成功 1 次 InvalidState，实际 成功=%d 冲突=%d", succeeded, stale)
	}

	approvals, _ := env.requests.ListApprovals(ctx, created.ID)
	if len(approvals) != 1 {
		t.Errorf("期望 1 条审批记录，实际=%d", len(approvals))
	}

	terminal := 0
	for _, typ := range env.publisher.types() {
		if typ == mq.EventRequestApproved || typ == mq.EventRequestRejected {
			terminal++
		}
	}
	if terminal != 1 {
		t.Errorf("期望 1 个终态事件，实际=%d", terminal)
	}

	stored, _ := svc.GetByID(ctx, created.ID)
	won := "approved"
	if errs[0] != nil {
		won = "rejected"
	}
	if stored.Status != won {
		t.Errorf("落库状态应与成功的一方一致，期望=%s 实际=%s", won, stored.Status)
	}
}

func TestVisitorRequestService_StaleStepIsRejected(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	ctx := context.Background()
	u2 := env.addUser("U2", model.RoleApprover, true)
	env.addStep(d.warehouse.WarehouseID, d.visitorType.VisitorTypeID, 2, u2.UserID)

	created, _ := svc.Create(ctx, validForm(d), "")
	stale, _ := env.requests.GetByID(ctx, created.ID)

	if _, err := svc.Approve(ctx, created.ID, approverActor(d.approver)); err != nil {
		t.Fatalf("第一步审批失败: %v", err)
	}

	// 旧快照仍停在第一步，条件更新不应命中
	stale.Status = model.StatusApproved
	ok, err := env.requests.Decide(ctx, stale, stale.CurrentStepNo)
	if err != nil {
		t.Fatalf("Decide 返回错误: %v", err)
	}
	if ok {
		t.Error("申请已推进到下一步，旧快照的写入应被拒绝")
	}
}

// ── Update 测试 ──

func TestVisitorRequestService_Update(t *testing.T) {
	svc, _, d := setupTestVisitorRequestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validForm(d), "")

	form := validForm(d)
	form.Phone = "+91 90000 00000"
	form.Date = "2026-03-12"
	updated, err := svc.Update(ctx, created.ID, form, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if updated.Phone != "+91 90000 00000" || updated.Date != "2026-03-12" {
		t.Errorf("更新未生效: %+v", updated)
	}
	if updated.TrackingCode != created.TrackingCode {
		t.Error("追踪码不应变化")
	}

	if _, err := svc.Approve(ctx, created.ID, approverActor(d.approver)); err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, form, "admin-001"); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Errorf("已审批的申请期望 InvalidState，实际: %v", err)
	}
}

// ── 查询测试 ──

func TestVisitorRequestService_Track(t *testing.T) {
	svc, _, d := setupTestVisitorRequestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validForm(d), "")

	result, err := svc.Track(ctx, strings.ToLower(created.TrackingCode))
	if err != nil {
		t.Fatalf("Track 应成功: %v", err)
	}
	if result.Status != "pending" || result.Warehouse != "Main Depot" {
		t.Errorf("查询结果不符: %+v", result)
	}

	if _, err := svc.Track(ctx, "GPNOPE"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("未知追踪码期望 NotFound，实际: %v", err)
	}
}

func TestVisitorRequestService_List_AndSemantics(t *testing.T) {
	svc, _, d := setupTestVisitorRequestService()
	ctx := context.Background()

	form := validForm(d)
	form.Name = "Zed Approved"
	approvedReq, _ := svc.Create(ctx, form, "")
	if _, err := svc.Approve(ctx, approvedReq.ID, approverActor(d.approver)); err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	form.Name = "Pat Pending"
	if _, err := svc.Create(ctx, form, ""); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	result, err := svc.List(ctx, &dto.VisitorRequestFilter{Search: "zed", Status: "pending"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("搜索命中已通过申请、状态为 pending 时期望为空，实际 %d 条", len(result))
	}

	result, _ = svc.List(ctx, &dto.VisitorRequestFilter{Search: "ZED"})
	if len(result) != 1 || result[0].Name != "Zed Approved" {
		t.Errorf("大小写不敏感搜索期望 1 条，实际 %+v", result)
	}

	if _, err := svc.List(ctx, &dto.VisitorRequestFilter{Status: "archived"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("未知状态期望 ValidationError，实际: %v", err)
	}
}

func TestVisitorRequestService_ListForApprover(t *testing.T) {
	svc, env, d := setupTestVisitorRequestService()
	ctx := context.Background()
	outsider := env.addUser("U9", model.RoleApprover, true)

	a, _ := svc.Create(ctx, validForm(d), "")
	if _, err := svc.Create(ctx, validForm(d), ""); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if _, err := svc.Reject(ctx, a.ID, approverActor(d.approver)); err != nil {
		t.Fatalf("Reject 应成功: %v", err)
	}

	all, _ := svc.ListForApprover(ctx, d.approver.UserID, "")
	if len(all) != 2 {
		t.Errorf("期望 2 条，实际 %d", len(all))
	}
	pending, _ := svc.ListForApprover(ctx, d.approver.UserID, model.StatusPending)
	rejected, _ := svc.ListForApprover(ctx, d.approver.UserID, model.StatusRejected)
	approved, _ := svc.ListForApprover(ctx, d.approver.UserID, model.StatusApproved)
	if len(pending) != 1 || len(rejected) != 1 || len(approved) != 0 {
		t.Errorf("分组期望 1/1/0，实际 %d/%d/%d", len(pending), len(rejected), len(approved))
	}

	none, err := svc.ListForApprover(ctx, outsider.UserID, "")
	if err != nil || len(none) != 0 {
		t.Errorf("不在任何审批链上的审批人期望空列表，实际 %d, err=%v", len(none), err)
	}
}

// ── 追踪码测试 ──

func TestNewTrackingCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := newTrackingCode("GP")
		if len(code) != 10 || code != strings.ToUpper(code) {
			t.Fatalf("追踪码格式不符: %s", code)
		}
		if seen[code] {
			t.Fatalf("追踪码重复: %s", code)
		}
		seen[code] = true
	}
}
