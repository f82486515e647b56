package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatymarishu/gatepass/config"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/repository"
	"github.com/fatymarishu/gatepass/pkg/mq"
)

var mockSeq int

func nextID(prefix string) string {
	mockSeq++
	return fmt.Sprintf("%s-%d", prefix, mockSeq)
}

// ── Mock WarehouseRepository ──

type mockWarehouseRepo struct {
	warehouses map[string]*model.Warehouse
	slots      *mockTimeSlotRepo
	workflow   *mockWorkflowRepo
}

func newMockWarehouseRepo() *mockWarehouseRepo {
	return &mockWarehouseRepo{warehouses: make(map[string]*model.Warehouse)}
}

func (m *mockWarehouseRepo) Create(_ context.Context, w *model.Warehouse) error {
	if w.WarehouseID == "" {
		w.WarehouseID = nextID("wh")
	}
	m.warehouses[w.WarehouseID] = w
	return nil
}

func (m *mockWarehouseRepo) GetByID(_ context.Context, id string) (*model.Warehouse, error) {
	if w, ok := m.warehouses[id]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWarehouseRepo) List(_ context.Context) ([]model.Warehouse, error) {
	var result []model.Warehouse
	for _, w := range m.warehouses {
		result = append(result, *w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockWarehouseRepo) Update(_ context.Context, w *model.Warehouse) error {
	m.warehouses[w.WarehouseID] = w
	return nil
}

func (m *mockWarehouseRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.warehouses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.warehouses, id)
	if m.slots != nil {
		for sid, s := range m.slots.slots {
			if s.WarehouseID == id {
				delete(m.slots.slots, sid)
			}
		}
	}
	if m.workflow != nil {
		for wid, s := range m.workflow.steps {
			if s.WarehouseID == id {
				delete(m.workflow.steps, wid)
			}
		}
	}
	return nil
}

func (m *mockWarehouseRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.warehouses)), nil
}

// ── Mock TimeSlotRepository ──

type mockTimeSlotRepo struct {
	slots map[string]*model.TimeSlot
}

func newMockTimeSlotRepo() *mockTimeSlotRepo {
	return &mockTimeSlotRepo{slots: make(map[string]*model.TimeSlot)}
}

func (m *mockTimeSlotRepo) Create(_ context.Context, slot *model.TimeSlot) error {
	if slot.TimeSlotID == "" {
		slot.TimeSlotID = nextID("ts")
	}
	m.slots[slot.TimeSlotID] = slot
	return nil
}

func (m *mockTimeSlotRepo) GetByID(_ context.Context, id string) (*model.TimeSlot, error) {
	if s, ok := m.slots[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]model.TimeSlot, error) {
	var result []model.TimeSlot
	for _, s := range m.slots {
		if s.WarehouseID == warehouseID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockTimeSlotRepo) Update(_ context.Context, slot *model.TimeSlot) error {
	m.slots[slot.TimeSlotID] = slot
	return nil
}

func (m *mockTimeSlotRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.slots[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.slots, id)
	return nil
}

// ── Mock WorkflowRepository ──

type mockWorkflowRepo struct {
	steps        map[string]*model.WorkflowStep
	users        *mockUserRepo
	visitorTypes *mockVisitorTypeRepo
}

func newMockWorkflowRepo() *mockWorkflowRepo {
	return &mockWorkflowRepo{steps: make(map[string]*model.WorkflowStep)}
}

func (m *mockWorkflowRepo) Create(_ context.Context, step *model.WorkflowStep) error {
	for _, s := range m.steps {
		if s.WarehouseID == step.WarehouseID && s.VisitorTypeID == step.VisitorTypeID && s.StepNo == step.StepNo {
			return gorm.ErrDuplicatedKey
		}
	}
	if step.WorkflowStepID == "" {
		step.WorkflowStepID = nextID("step")
	}
	m.steps[step.WorkflowStepID] = step
	return nil
}

// preload 模拟 Preload("VisitorType").Preload("Approver")
func (m *mockWorkflowRepo) preload(step model.WorkflowStep) model.WorkflowStep {
	if m.users != nil {
		if u, ok := m.users.users[step.ApproverID]; ok {
			step.Approver = u
		}
	}
	if m.visitorTypes != nil {
		if vt, ok := m.visitorTypes.types[step.VisitorTypeID]; ok {
			step.VisitorType = vt
		}
	}
	return step
}

func (m *mockWorkflowRepo) GetByID(_ context.Context, id string) (*model.WorkflowStep, error) {
	if s, ok := m.steps[id]; ok {
		loaded := m.preload(*s)
		return &loaded, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkflowRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]model.WorkflowStep, error) {
	var result []model.WorkflowStep
	for _, s := range m.steps {
		if s.WarehouseID == warehouseID {
			result = append(result, m.preload(*s))
		}
	}
	// 故意不排序，由 Service 保证顺序
	return result, nil
}

func (m *mockWorkflowRepo) ListChain(_ context.Context, warehouseID, visitorTypeID string) ([]model.WorkflowStep, error) {
	var result []model.WorkflowStep
	for _, s := range m.steps {
		if s.WarehouseID == warehouseID && s.VisitorTypeID == visitorTypeID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StepNo < result[j].StepNo })
	return result, nil
}

func (m *mockWorkflowRepo) ListByApprover(_ context.Context, approverID string) ([]model.WorkflowStep, error) {
	var result []model.WorkflowStep
	for _, s := range m.steps {
		if s.ApproverID == approverID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockWorkflowRepo) StepExists(_ context.Context, key repository.ChainKey, stepNo int, excludeID string) (bool, error) {
	for id, s := range m.steps {
		if id == excludeID {
			continue
		}
		if s.WarehouseID == key.WarehouseID && s.VisitorTypeID == key.VisitorTypeID && s.StepNo == stepNo {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockWorkflowRepo) Update(_ context.Context, step *model.WorkflowStep) error {
	stored := *step
	stored.Approver, stored.VisitorType = nil, nil
	m.steps[step.WorkflowStepID] = &stored
	return nil
}

func (m *mockWorkflowRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.steps[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.steps, id)
	return nil
}

// ── Mock VisitorTypeRepository ──

type mockVisitorTypeRepo struct {
	types map[string]*model.VisitorType
}

func newMockVisitorTypeRepo() *mockVisitorTypeRepo {
	return &mockVisitorTypeRepo{types: make(map[string]*model.VisitorType)}
}

func (m *mockVisitorTypeRepo) Create(_ context.Context, vt *model.VisitorType) error {
	if vt.VisitorTypeID == "" {
		vt.VisitorTypeID = nextID("vt")
	}
	m.types[vt.VisitorTypeID] = vt
	return nil
}

func (m *mockVisitorTypeRepo) GetByID(_ context.Context, id string) (*model.VisitorType, error) {
	if vt, ok := m.types[id]; ok {
		return vt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVisitorTypeRepo) List(_ context.Context, includeInactive bool) ([]model.VisitorType, error) {
	var result []model.VisitorType
	for _, vt := range m.types {
		if !includeInactive && !vt.IsActive {
			continue
		}
		result = append(result, *vt)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockVisitorTypeRepo) Update(_ context.Context, vt *model.VisitorType) error {
	m.types[vt.VisitorTypeID] = vt
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role model.Role) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		result = append(result, *u)
	}
	return result, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) CountActive(_ context.Context) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}

// ── Mock VisitorRequestRepository ──

type mockVisitorRequestRepo struct {
	requests  map[string]*model.VisitorRequest
	approvals []model.VisitorRequestApproval
	failNext  error // 非空时下一次 Update/Decide 返回该错误

	mu       sync.Mutex
	loadGate *sync.WaitGroup // 非空时 GetByID 读到数据后等待其他并发读取到齐
}

func newMockVisitorRequestRepo() *mockVisitorRequestRepo {
	return &mockVisitorRequestRepo{requests: make(map[string]*model.VisitorRequest)}
}

func (m *mockVisitorRequestRepo) Create(_ context.Context, req *model.VisitorRequest) error {
	for _, r := range m.requests {
		if r.TrackingCode == req.TrackingCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if req.VisitorRequestID == "" {
		req.VisitorRequestID = nextID("req")
	}
	stored := *req
	m.requests[req.VisitorRequestID] = &stored
	return nil
}

func (m *mockVisitorRequestRepo) GetByID(_ context.Context, id string) (*model.VisitorRequest, error) {
	m.mu.Lock()
	r, ok := m.requests[id]
	var copied model.VisitorRequest
	if ok {
		copied = *r
	}
	gate := m.loadGate
	m.mu.Unlock()

	if gate != nil {
		gate.Done()
		gate.Wait()
	}
	if ok {
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVisitorRequestRepo) GetByTrackingCode(_ context.Context, code string) (*model.VisitorRequest, error) {
	for _, r := range m.requests {
		if r.TrackingCode == code {
			copied := *r
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVisitorRequestRepo) List(_ context.Context) ([]model.VisitorRequest, error) {
	var result []model.VisitorRequest
	for _, r := range m.requests {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].VisitorRequestID < result[j].VisitorRequestID })
	return result, nil
}

func (m *mockVisitorRequestRepo) ListByDate(_ context.Context, date time.Time, warehouseID string) ([]model.VisitorRequest, error) {
	var result []model.VisitorRequest
	for _, r := range m.requests {
		if r.VisitDate.Format("2006-01-02") != date.Format("2006-01-02") {
			continue
		}
		if warehouseID != "" && r.WarehouseID != warehouseID {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockVisitorRequestRepo) ListByChains(_ context.Context, keys []repository.ChainKey) ([]model.VisitorRequest, error) {
	want := make(map[repository.ChainKey]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var result []model.VisitorRequest
	for _, r := range m.requests {
		if want[repository.ChainKey{WarehouseID: r.WarehouseID, VisitorTypeID: r.VisitorTypeID}] {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockVisitorRequestRepo) Update(_ context.Context, req *model.VisitorRequest) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	stored := *req
	m.requests[req.VisitorRequestID] = &stored
	return nil
}

func (m *mockVisitorRequestRepo) Decide(_ context.Context, req *model.VisitorRequest, fromStepNo int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return false, err
	}
	cur, ok := m.requests[req.VisitorRequestID]
	if !ok || cur.Status != model.StatusPending || cur.CurrentStepNo != fromStepNo {
		return false, nil
	}
	stored := *req
	m.requests[req.VisitorRequestID] = &stored
	return true, nil
}

func (m *mockVisitorRequestRepo) CreateApproval(_ context.Context, a *model.VisitorRequestApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals = append(m.approvals, *a)
	return nil
}

func (m *mockVisitorRequestRepo) ListApprovals(_ context.Context, requestID string) ([]model.VisitorRequestApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.VisitorRequestApproval
	for _, a := range m.approvals {
		if a.VisitorRequestID == requestID {
			result = append(result, a)
		}
	}
	return result, nil
}

// ── Mock Publisher / Revoker ──

type mockPublisher struct {
	mu     sync.Mutex
	events []mq.Event
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, e mq.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type mockRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func (r *mockRevoker) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if r.err != nil {
		return r.err
	}
	if r.revoked == nil {
		r.revoked = make(map[string]time.Duration)
	}
	r.revoked[jti] = ttl
	return nil
}

var errMockStorage = errors.New("mock storage failure")

// ── 测试环境 ──

// testEnv 组装全部 mock 仓储
type testEnv struct {
	repo         *repository.Repository
	warehouses   *mockWarehouseRepo
	slots        *mockTimeSlotRepo
	workflow     *mockWorkflowRepo
	visitorTypes *mockVisitorTypeRepo
	users        *mockUserRepo
	requests     *mockVisitorRequestRepo
	publisher    *mockPublisher
	visit        *config.VisitConfig
	logger       *zap.Logger
	now          time.Time
}

// 2026-03-10 10:00 Asia/Kolkata
var testNow = time.Date(2026, 3, 10, 4, 30, 0, 0, time.UTC)

func newTestEnv() *testEnv {
	env := &testEnv{
		warehouses:   newMockWarehouseRepo(),
		slots:        newMockTimeSlotRepo(),
		workflow:     newMockWorkflowRepo(),
		visitorTypes: newMockVisitorTypeRepo(),
		users:        newMockUserRepo(),
		requests:     newMockVisitorRequestRepo(),
		publisher:    &mockPublisher{},
		visit: &config.VisitConfig{
			Timezone:               "Asia/Kolkata",
			MaxAccompanyingPublic:  6,
			MaxAccompanyingConsole: 3,
			SequentialApproval:     true,
			TrackingPrefix:         "GP",
		},
		logger: zap.NewNop(),
		now:    testNow,
	}
	env.warehouses.slots = env.slots
	env.warehouses.workflow = env.workflow
	env.workflow.users = env.users
	env.workflow.visitorTypes = env.visitorTypes

	env.repo = &repository.Repository{
		Warehouse:      env.warehouses,
		TimeSlot:       env.slots,
		Workflow:       env.workflow,
		VisitorType:    env.visitorTypes,
		User:           env.users,
		VisitorRequest: env.requests,
	}
	return env
}

func (e *testEnv) clock() Clock {
	return func() time.Time { return e.now }
}

// ── 基础数据 ──

func (e *testEnv) addWarehouse(name, location string) *model.Warehouse {
	w := &model.Warehouse{Name: name, Location: location}
	_ = e.warehouses.Create(context.Background(), w)
	return w
}

func (e *testEnv) addSlot(warehouseID, name, from, to string) *model.TimeSlot {
	s := &model.TimeSlot{WarehouseID: warehouseID, Name: name, StartTime: from, EndTime: to}
	_ = e.slots.Create(context.Background(), s)
	return s
}

func (e *testEnv) addVisitorType(name string, active bool) *model.VisitorType {
	vt := &model.VisitorType{Name: name, IsActive: active}
	_ = e.visitorTypes.Create(context.Background(), vt)
	return vt
}

func (e *testEnv) addUser(name string, role model.Role, active bool) *model.User {
	u := &model.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Role:     role,
		IsActive: active,
	}
	_ = e.users.Create(context.Background(), u)
	return u
}

func (e *testEnv) addStep(warehouseID, visitorTypeID string, stepNo int, approverID string) *model.WorkflowStep {
	s := &model.WorkflowStep{WarehouseID: warehouseID, VisitorTypeID: visitorTypeID, StepNo: stepNo, ApproverID: approverID}
	_ = e.workflow.Create(context.Background(), s)
	return s
}
