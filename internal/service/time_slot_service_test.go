package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fatymarishu/gatepass/internal/dto"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
)

// ── 测试辅助 ──

func setupTestTimeSlotService() (TimeSlotService, *testEnv) {
	env := newTestEnv()
	return NewTimeSlotService(env.repo, env.logger), env
}

// ── Create 测试 ──

func TestTimeSlotService_Create_Success(t *testing.T) {
	svc, env := setupTestTimeSlotService()
	w := env.addWarehouse("Main Depot", "City A")

	result, err := svc.Create(context.Background(), w.WarehouseID, &dto.TimeSlotRequest{
		Name: "Morning", From: "09:00", To: "11:00",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.ID == "" {
		t.Error("期望生成 ID")
	}
	if result.From != "09:00" || result.To != "11:00" {
		t.Errorf("期望 09:00-11:00，实际=%s-%s", result.From, result.To)
	}
	if result.WarehouseID != w.WarehouseID {
		t.Errorf("期望 WarehouseID=%s，实际=%s", w.WarehouseID, result.WarehouseID)
	}
}

func TestTimeSlotService_Create_FromNotBeforeTo(t *testing.T) {
	svc, env := setupTestTimeSlotService()
	w := env.addWarehouse("Main Depot", "City A")

	for _, tc := range []struct{ from, to string }{
		{"11:00", "09:00"},
		{"09:00", "09:00"},
	} {
		_, err := svc.Create(context.Background(), w.WarehouseID, &dto.TimeSlotRequest{
			Name: "Bad", From: tc.from, To: tc.to,
		}, "admin-001")
		var ve *apperrors.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s-%s 期望 ValidationError，实际: %v", tc.from, tc.to, err)
		}
		if !ve.Has("to") {
			t.Errorf("期望 to 字段报错，实际: %v", ve.Fields)
		}
	}
	if len(env.slots.slots) != 0 {
		t.Errorf("校验失败时不应写入，实际 %d 条", len(env.slots.slots))
	}
}

func TestTimeSlotService_Create_ListsAllMissingFields(t *testing.T) {
	svc, env := setupTestTimeSlotService()
	w := env.addWarehouse("Main Depot", "City A")

	_, err := svc.Create(context.Background(), w.WarehouseID, &dto.TimeSlotRequest{}, "admin-001")
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	for _, f := range []string{"name", "from", "to"} {
		if !ve.Has(f) {
			t.Errorf("期望字段 %s 报错", f)
		}
	}
}

func TestTimeSlotService_Create_BadFormat(t *testing.T) {
	svc, env := setupTestTimeSlotService()
	w := env.addWarehouse("Main Depot", "City A")

	_, err := svc.Create(context.Background(), w.WarehouseID, &dto.TimeSlotRequest{
		Name: "Morning", From: "9:00", To: "25:00",
	}, "admin-001")
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) || !ve.Has("from") || !ve.Has("to") {
		t.Fatalf("期望 from/to 格式错误，实际: %v", err)
	}
}

func TestTimeSlotService_Create_UnknownWarehouse(t *testing.T) {
	svc, _ := setupTestTimeSlotService()

	_, err := svc.Create(context.Background(), "nonexistent", &dto.TimeSlotRequest{
		Name: "Morning", From: "09:00", To: "11:00",
	}, "admin-001")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("期望 NotFound，实际: %v", err)
	}
}

// ── List 测试 ──

func TestTimeSlotService_List_OrderedAndScoped(t *testing.T) {
	svc, env := setupTestTimeSlotService()
	w := env.addWarehouse("Main Depot", "City A")
	other := env.addWarehouse("North Hub", "City B")
	env.addSlot(w.WarehouseID, "Afternoon", "14:00", "16:00")
	env.addSlot(w.WarehouseID, "Morning", "09:00", "11:00")
	env.addSlot(other.WarehouseID, "Night", "20:00", "22:00")

	result, err := svc.List(context.Background(), w.WarehouseID)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("期望 2 条，实际 %d", len(result))
	}
	if result[0].Name != "Morning" {
		t.Errorf("期望按开始时间升序，首条=%s", result[0].Name)
	}
}

func TestTimeSlotService_List_EmptyWarehouse(t *testing.T) {
	svc, env := setupTestTimeSlotService()
	w := env.addWarehouse("Main Depot", "City A")

	result, err := svc.List(context.Background(), w.WarehouseID)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if result == nil || len(result) != 0 {
		t.Errorf("期望空切片，实际 %v", result)
	}
}

// ── Update 测试 ──

func TestTimeSlotService_Update_Success(t *testing.T) {
	svc, env := setupTestTimeSlotService()
	w := env.addWarehouse("Main Depot", "City A")
	slot := env.addSlot(w.WarehouseID, "Morning", "09:00", "11:00")

	result, err := svc.Update(context.Background(), slot.TimeSlotID, &dto.TimeSlotRequest{
		Name: "Early", From: "08:00", To: "10:00",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Name != "Early" || result.From != "08:00" {
		t.Errorf("更新未生效: %+v", result)
	}
}

func TestTimeSlotService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestTimeSlotService()

	_, err := svc.Update(context.Background(), "nonexistent", &dto.TimeSlotRequest{
		Name: "Early", From: "08:00", To: "10:00",
	}, "admin-001")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("期望 NotFound，实际: %v", err)
	}
}

func TestTimeSlotService_Update_Invalid(t *testing.T) {
	svc, env := setupTestTimeSlotService()
	w := env.addWarehouse("Main Depot", "City A")
	slot := env.addSlot(w.WarehouseID, "Morning", "09:00", "11:00")

	_, err := svc.Update(context.Background(), slot.TimeSlotID, &dto.TimeSlotRequest{
		Name: "Morning", From: "12:00", To: "11:00",
	}, "admin-001")
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	if env.slots.slots[slot.TimeSlotID].StartTime != "09:00" {
		t.Error("校验失败时不应修改原记录")
	}
}

// ── Delete 测试 ──

func TestTimeSlotService_Delete_Twice(t *testing.T) {
	svc, env := setupTestTimeSlotService()
	w := env.addWarehouse("Main Depot", "City A")
	slot := env.addSlot(w.WarehouseID, "Morning", "09:00", "11:00")

	if err := svc.Delete(context.Background(), slot.TimeSlotID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if err := svc.Delete(context.Background(), slot.TimeSlotID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("重复删除期望 NotFound，实际: %v", err)
	}
}
