package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatymarishu/gatepass/internal/model"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
)

func TestCalendarInvite_Approved(t *testing.T) {
	svc, env, _ := setupTestVisitorRequestService()
	req := env.addRequest("wh-a", "2026-03-10")

	out, err := svc.CalendarInvite(context.Background(), strings.ToLower(req.TrackingCode))
	if err != nil {
		t.Fatalf("CalendarInvite 应成功: %v", err)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"UID:" + req.TrackingCode + "@gatepass",
		"DTSTART:20260310T033000Z", // 09:00 IST
		"DTEND:20260310T053000Z",   // 11:00 IST
		"STATUS:CONFIRMED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("日历内容缺少 %q", want)
		}
	}
}

func TestCalendarInvite_AllDayWithoutSlot(t *testing.T) {
	env := newTestEnv()
	req := env.addRequest("wh-a", "2026-03-10")
	req.SlotFrom, req.SlotTo = "", ""

	out, err := buildInvite(req, env.visit.Location(), testNow)
	if err != nil {
		t.Fatalf("buildInvite 应成功: %v", err)
	}
	if !strings.Contains(out, "DTSTART;VALUE=DATE:20260310") {
		t.Errorf("时间段缺失时应生成全天事件:\n%s", out)
	}
}

func TestCalendarInvite_NotApproved(t *testing.T) {
	svc, env, _ := setupTestVisitorRequestService()
	req := env.addRequest("wh-a", "2026-03-10")
	req.Status = model.StatusPending
	_ = env.requests.Update(context.Background(), req)

	if _, err := svc.CalendarInvite(context.Background(), req.TrackingCode); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Errorf("未通过的申请期望 InvalidState，实际: %v", err)
	}
	if _, err := svc.CalendarInvite(context.Background(), "GPMISSING"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("未知追踪码期望 NotFound，实际: %v", err)
	}
}
