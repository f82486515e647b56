package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/config"
	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/repository"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
	"github.com/fatymarishu/gatepass/pkg/mq"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
)

// 追踪码随机部分长度与唯一键冲突重试次数
const (
	trackingCodeLength  = 8
	trackingCodeRetries = 3
)

// VisitorRequestService 访客申请生命周期接口
//
// 审批状态机：pending → approved | rejected，终态不可再流转。
// 对非 pending 申请的审批操作返回 InvalidState，状态保持不变。
type VisitorRequestService interface {
	// Create callerID 为空表示公开申请表单，随行人员上限不同
	Create(ctx context.Context, form *dto.VisitorRequestForm, callerID string) (*dto.VisitorRequestResponse, error)
	// Update 仅允许修改 pending 状态的申请
	Update(ctx context.Context, id string, form *dto.VisitorRequestForm, callerID string) (*dto.VisitorRequestResponse, error)
	GetByID(ctx context.Context, id string) (*dto.VisitorRequestResponse, error)
	Track(ctx context.Context, code string) (*dto.TrackResponse, error)
	Approve(ctx context.Context, id string, actor Actor) (*dto.VisitorRequestResponse, error)
	Reject(ctx context.Context, id string, actor Actor) (*dto.VisitorRequestResponse, error)
	// List 管理员视图：搜索、状态、日期三项条件取交集
	List(ctx context.Context, filter *dto.VisitorRequestFilter) ([]dto.VisitorRequestResponse, error)
	// ListForApprover 审批链包含该审批人的申请；status 为空时不按状态过滤
	ListForApprover(ctx context.Context, approverID string, status model.RequestStatus) ([]dto.VisitorRequestResponse, error)
	// CalendarInvite 已通过申请的 iCalendar 邀请
	CalendarInvite(ctx context.Context, code string) (string, error)
}

type visitorRequestService struct {
	cfg       *config.VisitConfig
	repo      *repository.Repository
	publisher mq.Publisher
	now       Clock
	logger    *zap.Logger
}

// NewVisitorRequestService 创建 VisitorRequestService 实例
func NewVisitorRequestService(
	cfg *config.VisitConfig,
	repo *repository.Repository,
	publisher mq.Publisher,
	now Clock,
	logger *zap.Logger,
) VisitorRequestService {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return &visitorRequestService{cfg: cfg, repo: repo, publisher: publisher, now: now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Create
// ═══════════════════════════════════════════════════════════

func (s *visitorRequestService) Create(ctx context.Context, form *dto.VisitorRequestForm, callerID string) (*dto.VisitorRequestResponse, error) {
	visitDate, err := s.validateForm(form, s.accompanyingLimit(callerID))
	if err != nil {
		return nil, err
	}

	req := &model.VisitorRequest{
		Status:      model.StatusPending,
		VisitStatus: model.VisitPending,
	}
	if err := s.bind(ctx, req, form, visitDate); err != nil {
		return nil, err
	}
	req.Stamp(callerID, true)

	if err := s.insertWithTrackingCode(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("访客申请已创建",
		zap.String("request_id", req.VisitorRequestID),
		zap.String("tracking_code", req.TrackingCode),
		zap.Int("current_step_no", req.CurrentStepNo),
	)
	s.publish(ctx, mq.EventRequestCreated, req, callerID)

	resp := toVisitorRequestResponse(req)
	return &resp, nil
}

// insertWithTrackingCode 追踪码撞唯一键时重新生成
func (s *visitorRequestService) insertWithTrackingCode(ctx context.Context, req *model.VisitorRequest) error {
	var err error
	for attempt := 0; attempt < trackingCodeRetries; attempt++ {
		req.TrackingCode = newTrackingCode(s.cfg.TrackingPrefix)
		err = s.repo.VisitorRequest.Create(ctx, req)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	s.logger.Error("创建访客申请失败", zap.Error(err))
	return err
}

// newTrackingCode 前缀 + 8 位大写十六进制
func newTrackingCode(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:trackingCodeLength])
}

// ═══════════════════════════════════════════════════════════
// Update
// ═══════════════════════════════════════════════════════════

func (s *visitorRequestService) Update(ctx context.Context, id string, form *dto.VisitorRequestForm, callerID string) (*dto.VisitorRequestResponse, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.StatusPending {
		return nil, apperrors.InvalidState(fmt.Sprintf("申请已%s，不能修改", statusLabel(req.Status)))
	}

	visitDate, err := s.validateForm(form, s.accompanyingLimit(callerID))
	if err != nil {
		return nil, err
	}

	chainChanged := req.WarehouseID != form.WarehouseID || req.VisitorTypeID != form.VisitorTypeID
	currentStep := req.CurrentStepNo
	if err := s.bind(ctx, req, form, visitDate); err != nil {
		return nil, err
	}
	if !chainChanged {
		// 审批链未变化时保留审批进度
		req.CurrentStepNo = currentStep
	}
	req.Stamp(callerID, false)

	if err := s.repo.VisitorRequest.Update(ctx, req); err != nil {
		s.logger.Error("更新访客申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toVisitorRequestResponse(req)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// 校验与引用解析
// ═══════════════════════════════════════════════════════════

func (s *visitorRequestService) accompanyingLimit(callerID string) int {
	if callerID == "" {
		return s.cfg.MaxAccompanyingPublic
	}
	return s.cfg.MaxAccompanyingConsole
}

// validateForm 字段级校验，一次返回全部违规字段；成功时返回访问日期
func (s *visitorRequestService) validateForm(form *dto.VisitorRequestForm, maxAccompanying int) (time.Time, error) {
	v := apperrors.NewValidation()

	if strings.TrimSpace(form.Name) == "" {
		v.Add("name", "姓名不能为空")
	}
	checkEmail(v, "email", form.Email, true)
	checkPhone(v, "phone", form.Phone, true)
	if strings.TrimSpace(form.VisitorTypeID) == "" {
		v.Add("visitorTypeId", "请选择访客类型")
	}
	if strings.TrimSpace(form.WarehouseID) == "" {
		v.Add("warehouseId", "请选择仓库")
	}
	if strings.TrimSpace(form.WarehouseTimeSlotID) == "" {
		v.Add("warehouseTimeSlotId", "请选择时间段")
	}

	var visitDate time.Time
	if form.Date == "" {
		v.Add("date", "请选择访问日期")
	} else if d, err := time.Parse(dateLayout, form.Date); err != nil {
		v.Add("date", "日期格式应为 YYYY-MM-DD")
	} else if today := calendarDay(s.now(), s.cfg.Location()); d.Before(today) {
		v.Add("date", "访问日期不能早于今天")
	} else {
		visitDate = d
	}

	if len(form.Accompanying) > maxAccompanying {
		v.Add("accompanying", fmt.Sprintf("随行人员最多 %d 人", maxAccompanying))
	}
	for i, p := range form.Accompanying {
		prefix := fmt.Sprintf("accompanying[%d].", i)
		if strings.TrimSpace(p.Name) == "" {
			v.Add(prefix+"name", "随行人员姓名不能为空")
		}
		checkEmail(v, prefix+"email", p.Email, false)
		checkPhone(v, prefix+"phone", p.Phone, false)
	}

	return visitDate, v.OrNil()
}

func checkEmail(v *apperrors.ValidationError, field, value string, required bool) {
	value = strings.TrimSpace(value)
	switch {
	case value == "" && required:
		v.Add(field, "邮箱不能为空")
	case value != "" && !emailPattern.MatchString(value):
		v.Add(field, "邮箱格式不正确")
	}
}

func checkPhone(v *apperrors.ValidationError, field, value string, required bool) {
	value = strings.TrimSpace(value)
	switch {
	case value == "" && required:
		v.Add(field, "手机号不能为空")
	case value != "" && !phonePattern.MatchString(value):
		v.Add(field, "手机号格式不正确")
	}
}

// bind 解析仓库、访客类型、时间段与审批链，写入表单字段与展示快照
func (s *visitorRequestService) bind(ctx context.Context, req *model.VisitorRequest, form *dto.VisitorRequestForm, visitDate time.Time) error {
	warehouse, err := requireWarehouse(ctx, s.repo, form.WarehouseID)
	if err != nil {
		return err
	}
	vt, err := s.repo.VisitorType.GetByID(ctx, form.VisitorTypeID)
	if err != nil {
		return translateRepoErr(err, "访客类型", form.VisitorTypeID)
	}
	slot, err := s.repo.TimeSlot.GetByID(ctx, form.WarehouseTimeSlotID)
	if err != nil {
		return translateRepoErr(err, "时间段", form.WarehouseTimeSlotID)
	}

	v := apperrors.NewValidation()
	if !vt.IsActive {
		v.Add("visitorTypeId", "该访客类型已停用")
	}
	if slot.WarehouseID != warehouse.WarehouseID {
		v.Add("warehouseTimeSlotId", "时间段不属于所选仓库")
	}
	if err := v.OrNil(); err != nil {
		return err
	}

	chain, err := s.repo.Workflow.ListChain(ctx, warehouse.WarehouseID, vt.VisitorTypeID)
	if err != nil {
		s.logger.Error("查询审批链失败", zap.Error(err))
		return err
	}
	first := model.NextStepNo(chain, 0)
	if first == 0 {
		return apperrors.Validation("visitorTypeId", "该仓库尚未为此访客类型配置审批流程")
	}

	req.Name = strings.TrimSpace(form.Name)
	req.Email = strings.TrimSpace(form.Email)
	req.Phone = strings.TrimSpace(form.Phone)
	req.VisitorTypeID = vt.VisitorTypeID
	req.VisitorTypeName = vt.Name
	req.WarehouseID = warehouse.WarehouseID
	req.WarehouseName = warehouse.Name
	req.WarehouseTimeSlotID = slot.TimeSlotID
	req.TimeSlotName = slot.Name
	req.SlotFrom = slot.StartTime
	req.SlotTo = slot.EndTime
	req.VisitDate = visitDate
	req.Purpose = strings.TrimSpace(form.Purpose)
	req.Accompanying = toModelAccompanying(form.Accompanying)
	req.CurrentStepNo = first
	return nil
}

// ═══════════════════════════════════════════════════════════
// 查询
// ═══════════════════════════════════════════════════════════

func (s *visitorRequestService) load(ctx context.Context, id string) (*model.VisitorRequest, error) {
	req, err := s.repo.VisitorRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("访客申请", id)
		}
		s.logger.Error("查询访客申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return req, nil
}

func (s *visitorRequestService) GetByID(ctx context.Context, id string) (*dto.VisitorRequestResponse, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toVisitorRequestResponse(req)
	return &resp, nil
}

func (s *visitorRequestService) Track(ctx context.Context, code string) (*dto.TrackResponse, error) {
	req, err := s.repo.VisitorRequest.GetByTrackingCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, translateRepoErr(err, "追踪码", code)
	}
	return &dto.TrackResponse{
		TrackingCode:  req.TrackingCode,
		Name:          req.Name,
		VisitorType:   req.VisitorTypeName,
		Warehouse:     req.WarehouseName,
		TimeSlot:      req.SlotDisplay(),
		Date:          req.VisitDate.Format(dateLayout),
		Status:        string(req.Status),
		CurrentStepNo: req.CurrentStepNo,
		VisitStatus:   string(req.VisitStatus),
		UpdatedAt:     dto.FormatTime(req.UpdatedAt),
	}, nil
}

func (s *visitorRequestService) List(ctx context.Context, filter *dto.VisitorRequestFilter) ([]dto.VisitorRequestResponse, error) {
	f, err := parseRequestFilter(filter)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.VisitorRequest.List(ctx)
	if err != nil {
		s.logger.Error("列出访客申请失败", zap.Error(err))
		return nil, err
	}
	return toVisitorRequestResponses(FilterRequests(list, f)), nil
}

func (s *visitorRequestService) ListForApprover(ctx context.Context, approverID string, status model.RequestStatus) ([]dto.VisitorRequestResponse, error) {
	steps, err := s.repo.Workflow.ListByApprover(ctx, approverID)
	if err != nil {
		s.logger.Error("查询审批人步骤失败", zap.String("approver_id", approverID), zap.Error(err))
		return nil, err
	}
	keys := ChainKeys(steps)
	if len(keys) == 0 {
		return []dto.VisitorRequestResponse{}, nil
	}

	list, err := s.repo.VisitorRequest.ListByChains(ctx, keys)
	if err != nil {
		s.logger.Error("查询审批人申请失败", zap.String("approver_id", approverID), zap.Error(err))
		return nil, err
	}
	list = ScopeToApprover(list, steps, approverID)
	if status != "" {
		list = PartitionByStatus(list)[status]
	}
	return toVisitorRequestResponses(list), nil
}

// ═══════════════════════════════════════════════════════════
// Approve / Reject
// ═══════════════════════════════════════════════════════════

func (s *visitorRequestService) Approve(ctx context.Context, id string, actor Actor) (*dto.VisitorRequestResponse, error) {
	return s.decide(ctx, id, actor, model.DecisionApproved)
}

func (s *visitorRequestService) Reject(ctx context.Context, id string, actor Actor) (*dto.VisitorRequestResponse, error) {
	return s.decide(ctx, id, actor, model.DecisionRejected)
}

// decide 审批一步
//
// 顺序审批：只有 currentStepNo 对应步骤的审批人可操作；通过后推进到下一个更大的步骤号，
// 最后一步通过时申请变为 approved；任一步驳回即为 rejected。
// 非顺序审批：审批链上任一审批人均可操作，一次通过或驳回即结束。
func (s *visitorRequestService) decide(ctx context.Context, id string, actor Actor, decision model.ApprovalDecision) (*dto.VisitorRequestResponse, error) {
	if !actor.Role.Can(model.CapDecideRequests) {
		return nil, apperrors.Forbidden("仅审批人可审批访客申请")
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.StatusPending {
		return nil, apperrors.InvalidState(fmt.Sprintf("申请已%s，不能重复审批", statusLabel(req.Status)))
	}

	chain, err := s.repo.Workflow.ListChain(ctx, req.WarehouseID, req.VisitorTypeID)
	if err != nil {
		s.logger.Error("查询审批链失败", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}

	stepNo, err := s.actingStep(req, chain, actor.UserID)
	if err != nil {
		return nil, err
	}

	next := model.StatusRejected
	eventType := mq.EventRequestRejected
	nextStepNo := stepNo
	if decision == model.DecisionApproved {
		next = model.StatusApproved
		eventType = mq.EventRequestApproved
		if following := model.NextStepNo(chain, stepNo); s.cfg.SequentialApproval && following != 0 {
			next = model.StatusPending
			eventType = mq.EventRequestAdvanced
			nextStepNo = following
		}
	}
	if next != model.StatusPending && !req.Status.CanTransitionTo(next) {
		return nil, apperrors.InvalidState("非法的状态流转")
	}

	fromStepNo := req.CurrentStepNo
	now := s.now().UTC()
	req.Status = next
	req.CurrentStepNo = nextStepNo
	req.UpdatedAt = now
	req.Stamp(actor.UserID, false)

	// 读取之后可能已有其他审批人落库，条件更新未命中即视为已被处理
	errStale := apperrors.InvalidState("申请已被其他审批人处理，请刷新后重试")
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		ok, err := tx.VisitorRequest.Decide(ctx, req, fromStepNo)
		if err != nil {
			return err
		}
		if !ok {
			return errStale
		}
		return tx.VisitorRequest.CreateApproval(ctx, &model.VisitorRequestApproval{
			VisitorRequestID: req.VisitorRequestID,
			StepNo:           stepNo,
			ApproverID:       actor.UserID,
			Decision:         decision,
			ActedAt:          now,
		})
	})
	if errors.Is(err, errStale) {
		s.logger.Warn("并发审批冲突", zap.String("request_id", id), zap.String("approver_id", actor.UserID))
		return nil, err
	}
	if err != nil {
		s.logger.Error("保存审批结果失败", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("访客申请已审批",
		zap.String("request_id", id),
		zap.String("approver_id", actor.UserID),
		zap.String("decision", string(decision)),
		zap.Int("step_no", stepNo),
		zap.String("status", string(req.Status)),
	)
	s.publish(ctx, eventType, req, actor.UserID)

	resp := toVisitorRequestResponse(req)
	return &resp, nil
}

// actingStep 确定审批人本次操作的步骤号
func (s *visitorRequestService) actingStep(req *model.VisitorRequest, chain []model.WorkflowStep, approverID string) (int, error) {
	if len(chain) == 0 {
		return 0, apperrors.InvalidState("该申请的审批流程已被移除")
	}

	if !s.cfg.SequentialApproval {
		for _, step := range chain {
			if step.ApproverID == approverID {
				return step.StepNo, nil
			}
		}
		return 0, apperrors.Forbidden("你不在该申请的审批链上")
	}

	// 当前步骤被删除时顺延到下一个存在的步骤
	current := req.CurrentStepNo
	if !hasStep(chain, current) {
		current = model.NextStepNo(chain, current)
		if current == 0 {
			return 0, apperrors.InvalidState("该申请的审批流程已被移除")
		}
	}
	for _, step := range chain {
		if step.StepNo == current {
			if step.ApproverID != approverID {
				return 0, apperrors.Forbidden(fmt.Sprintf("当前处于第 %d 步，不由你审批", current))
			}
			return current, nil
		}
	}
	return 0, apperrors.InvalidState("该申请的审批流程已被移除")
}

func hasStep(chain []model.WorkflowStep, stepNo int) bool {
	for _, step := range chain {
		if step.StepNo == stepNo {
			return true
		}
	}
	return false
}

// ── 事件 ──

// publish 尽力而为，失败只记录日志
func (s *visitorRequestService) publish(ctx context.Context, eventType string, req *model.VisitorRequest, actorID string) {
	publishRequestEvent(ctx, s.publisher, s.logger, eventType, req, actorID, s.now())
}

func publishRequestEvent(ctx context.Context, p mq.Publisher, logger *zap.Logger, eventType string, req *model.VisitorRequest, actorID string, at time.Time) {
	err := p.Publish(ctx, mq.Event{
		Type:          eventType,
		RequestID:     req.VisitorRequestID,
		TrackingCode:  req.TrackingCode,
		WarehouseID:   req.WarehouseID,
		Status:        string(req.Status),
		VisitStatus:   string(req.VisitStatus),
		CurrentStepNo: req.CurrentStepNo,
		ActorID:       actorID,
		OccurredAt:    at.UTC(),
	})
	if err != nil {
		logger.Warn("发布访客申请事件失败",
			zap.String("type", eventType),
			zap.String("request_id", req.VisitorRequestID),
			zap.Error(err),
		)
	}
}

// ── 转换 ──

func statusLabel(s model.RequestStatus) string {
	switch s {
	case model.StatusApproved:
		return "通过"
	case model.StatusRejected:
		return "驳回"
	default:
		return "处于待审批"
	}
}

func toModelAccompanying(list []dto.AccompanyingPerson) []model.AccompanyingPerson {
	result := make([]model.AccompanyingPerson, 0, len(list))
	for _, p := range list {
		result = append(result, model.AccompanyingPerson{
			Name:  strings.TrimSpace(p.Name),
			Email: strings.TrimSpace(p.Email),
			Phone: strings.TrimSpace(p.Phone),
		})
	}
	return result
}

func toVisitorRequestResponse(req *model.VisitorRequest) dto.VisitorRequestResponse {
	accompanying := make([]dto.AccompanyingPerson, 0, len(req.Accompanying))
	for _, p := range req.Accompanying {
		accompanying = append(accompanying, dto.AccompanyingPerson{Name: p.Name, Email: p.Email, Phone: p.Phone})
	}
	return dto.VisitorRequestResponse{
		ID:                  req.VisitorRequestID,
		TrackingCode:        req.TrackingCode,
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		VisitorTypeID:       req.VisitorTypeID,
		VisitorTypeName:     req.VisitorTypeName,
		WarehouseID:         req.WarehouseID,
		WarehouseName:       req.WarehouseName,
		WarehouseTimeSlotID: req.WarehouseTimeSlotID,
		TimeSlotName:        req.TimeSlotName,
		TimeSlot:            req.SlotDisplay(),
		Date:                req.VisitDate.Format(dateLayout),
		Purpose:             req.Purpose,
		Accompanying:        accompanying,
		Status:              string(req.Status),
		CurrentStepNo:       req.CurrentStepNo,
		VisitStatus:         string(req.VisitStatus),
		ArrivedAt:           dto.FormatTimePtr(req.ArrivedAt),
		CheckedOutAt:        dto.FormatTimePtr(req.CheckedOutAt),
		Punctuality:         string(req.Punctuality),
		CreatedAt:           dto.FormatTime(req.CreatedAt),
		UpdatedAt:           dto.FormatTime(req.UpdatedAt),
	}
}

func toVisitorRequestResponses(list []model.VisitorRequest) []dto.VisitorRequestResponse {
	result := make([]dto.VisitorRequestResponse, 0, len(list))
	for i := range list {
		result = append(result, toVisitorRequestResponse(&list[i]))
	}
	return result
}
