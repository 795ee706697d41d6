package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"medique-api/internal/domain/entity"
	"medique-api/internal/domain/gateway"
	"medique-api/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the database shared by the fake
// repositories. Every repository call takes the store mutex, so fakes are
// safe under concurrent use; the *gorm.DB argument is ignored.
type memStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*entity.User
	doctors      map[uuid.UUID]*entity.Doctor
	appointments map[uuid.UUID]*entity.Appointment
	auditLogs    []entity.AuditLog
	seq          int64
	base         time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uuid.UUID]*entity.User),
		doctors:      make(map[uuid.UUID]*entity.Doctor),
		appointments: make(map[uuid.UUID]*entity.Appointment),
		base:         time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) nextTime() time.Time {
	s.seq++
	return s.base.Add(time.Duration(s.seq) * time.Second)
}

func (s *memStore) addUser(name, email string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &entity.User{ID: uuid.New(), Name: name, Email: email, Gender: "Not Selected", DOB: "Not Selected", CreatedAt: s.nextTime()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addDoctor(name string, fees string, available bool) *entity.Doctor {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &entity.Doctor{
		ID:          uuid.New(),
		Name:        name,
		Email:       name + "@clinic.test",
		Speciality:  "General physician",
		Available:   available,
		Fees:        mustDecimal(fees),
		SlotsBooked: entity.SlotMap{},
		CreatedAt:   s.nextTime(),
	}
	s.doctors[d.ID] = d
	return d
}

func (s *memStore) doctor(id uuid.UUID) entity.Doctor {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := *s.doctors[id]
	d.SlotsBooked = d.SlotsBooked.Clone()
	return d
}

func (s *memStore) appointment(id uuid.UUID) entity.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.appointments[id]
}

func (s *memStore) liveAppointments(doctorID uuid.UUID, date, slotTime string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && a.SlotDate == date && a.SlotTime == slotTime && !a.Cancelled {
			n++
		}
	}
	return n
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// --- transactor ---

type fakeTransactor struct {
	err error
}

func (f *fakeTransactor) Conn(ctx context.Context) *gorm.DB { return nil }

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// --- users ---

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(_ *gorm.DB, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = r.s.nextTime()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Update(_ *gorm.DB, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Count(_ *gorm.DB) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

// --- doctors ---

type fakeDoctorRepo struct{ s *memStore }

func (r *fakeDoctorRepo) Create(_ *gorm.DB, doctor *entity.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.doctors {
		if d.Email == doctor.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_doctors_email"}
		}
	}
	doctor.ID = uuid.New()
	doctor.CreatedAt = r.s.nextTime()
	cp := *doctor
	cp.SlotsBooked = doctor.SlotsBooked.Clone()
	r.s.doctors[doctor.ID] = &cp
	return nil
}

func (r *fakeDoctorRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	cp.SlotsBooked = d.SlotsBooked.Clone()
	return &cp, nil
}

func (r *fakeDoctorRepo) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error) {
	return r.FindByID(db, id)
}

func (r *fakeDoctorRepo) FindAll(_ *gorm.DB) ([]entity.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Doctor, 0, len(r.s.doctors))
	for _, d := range r.s.doctors {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeDoctorRepo) UpdateSlots(_ *gorm.DB, id uuid.UUID, slots entity.SlotMap) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.SlotsBooked = slots.Clone()
	return nil
}

func (r *fakeDoctorRepo) UpdateAvailability(_ *gorm.DB, id uuid.UUID, available bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Available = available
	return nil
}

func (r *fakeDoctorRepo) Count(_ *gorm.DB) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.doctors)), nil
}

// --- appointments ---

// fakeAppointmentRepo enforces the live-slot uniqueness the real partial
// unique index provides.
type fakeAppointmentRepo struct{ s *memStore }

func (r *fakeAppointmentRepo) Create(_ *gorm.DB, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.appointments {
		if existing.DoctorID == a.DoctorID && existing.SlotDate == a.SlotDate &&
			existing.SlotTime == a.SlotTime && !existing.Cancelled {
			return &pgconn.PgError{Code: "23505", ConstraintName: activeSlotIndex}
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = r.s.nextTime()
	cp := *a
	cp.Doctor, cp.User = nil, nil
	r.s.appointments[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) withRelations(a *entity.Appointment) entity.Appointment {
	cp := *a
	if d, ok := r.s.doctors[a.DoctorID]; ok {
		dc := *d
		cp.Doctor = &dc
	}
	if u, ok := r.s.users[a.UserID]; ok {
		uc := *u
		cp.User = &uc
	}
	return cp
}

func (r *fakeAppointmentRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	cp := r.withRelations(a)
	return &cp, nil
}

func (r *fakeAppointmentRepo) sorted(filter func(*entity.Appointment) bool) []entity.Appointment {
	out := []entity.Appointment{}
	for _, a := range r.s.appointments {
		if filter(a) {
			out = append(out, r.withRelations(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeAppointmentRepo) FindByUserID(_ *gorm.DB, userID uuid.UUID) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(a *entity.Appointment) bool { return a.UserID == userID }), nil
}

func (r *fakeAppointmentRepo) FindAll(_ *gorm.DB) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(*entity.Appointment) bool { return true }), nil
}

func (r *fakeAppointmentRepo) FindLatest(_ *gorm.DB, limit int) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted(func(*entity.Appointment) bool { return true })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeAppointmentRepo) MarkCancelled(_ *gorm.DB, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok || a.Cancelled {
		return 0, nil
	}
	a.Cancelled = true
	return 1, nil
}

func (r *fakeAppointmentRepo) MarkPaid(_ *gorm.DB, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok || a.Payment {
		return 0, nil
	}
	a.Payment = true
	return 1, nil
}

func (r *fakeAppointmentRepo) Count(_ *gorm.DB) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.appointments)), nil
}

// --- audit ---

type fakeAuditLogRepo struct{ s *memStore }

func (r *fakeAuditLogRepo) Create(_ *gorm.DB, log *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = int64(len(r.s.auditLogs) + 1)
	log.CreatedAt = r.s.nextTime()
	r.s.auditLogs = append(r.s.auditLogs, *log)
	return nil
}

func (r *fakeAuditLogRepo) Find(_ *gorm.DB, filter entity.AuditLogFilter) ([]entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.AuditLog
	for i := len(r.s.auditLogs) - 1; i >= 0; i-- {
		l := r.s.auditLogs[i]
		switch {
		case filter.Action != "" && l.Action != filter.Action,
			filter.ActorID != nil && (l.ActorID == nil || *l.ActorID != *filter.ActorID),
			filter.Entity != "" && l.EntityName() != filter.Entity,
			filter.EntityID != "" && l.EntityID() != filter.EntityID:
			continue
		}
		out = append(out, l)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeAuditLogRepo) FindByID(_ *gorm.DB, id int64) (*entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.auditLogs {
		if r.s.auditLogs[i].ID == id {
			cp := r.s.auditLogs[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) auditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.auditLogs))
	for i, l := range s.auditLogs {
		out[i] = l.Action
	}
	return out
}

// --- collaborators ---

type notifierCall struct {
	kind    string
	notice  service.AppointmentNotice
	byAdmin bool
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifierCall
}

func (f *fakeNotifier) record(c notifierCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeNotifier) BookingConfirmed(n service.AppointmentNotice) {
	f.record(notifierCall{kind: "booked", notice: n})
}

func (f *fakeNotifier) BookingCancelled(n service.AppointmentNotice, byAdmin bool) {
	f.record(notifierCall{kind: "cancelled", notice: n, byAdmin: byAdmin})
}

func (f *fakeNotifier) PaymentConfirmed(n service.AppointmentNotice) {
	f.record(notifierCall{kind: "paid", notice: n})
}

func (f *fakeNotifier) Stop() {}

func (f *fakeNotifier) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

type fakePaymentGateway struct {
	mu      sync.Mutex
	orders  map[string]*gateway.PaymentOrder
	created []gateway.PaymentOrder
	err     error
}

func newFakePaymentGateway() *fakePaymentGateway {
	return &fakePaymentGateway{orders: make(map[string]*gateway.PaymentOrder)}
}

func (f *fakePaymentGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*gateway.PaymentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	order := &gateway.PaymentOrder{
		ID:       "order_" + uuid.NewString()[:8],
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   gateway.OrderStatusCreated,
	}
	f.orders[order.ID] = order
	f.created = append(f.created, *order)
	cp := *order
	return &cp, nil
}

func (f *fakePaymentGateway) FetchOrder(ctx context.Context, orderID string) (*gateway.PaymentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, errors.New("order not found")
	}
	cp := *order
	return &cp, nil
}

func (f *fakePaymentGateway) setStatus(orderID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[orderID].Status = status
}

type fakeImageStore struct {
	uploads int
	err     error
}

func (f *fakeImageStore) Upload(ctx context.Context, fileName string, content io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads++
	return "https://images.test/" + fileName, nil
}

// --- wiring ---

type testEnv struct {
	store       *memStore
	tx          *fakeTransactor
	log         *logrus.Logger
	users       *fakeUserRepo
	doctors     *fakeDoctorRepo
	appts       *fakeAppointmentRepo
	auditRepo   *fakeAuditLogRepo
	audit       service.AuditService
	notifier    *fakeNotifier
	slotLock    *service.SlotLockService
	gateway     *fakePaymentGateway
	imageStore  *fakeImageStore
	appointment AppointmentUsecase
	payment     PaymentUsecase
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := newMemStore()
	env := &testEnv{
		store:      store,
		tx:         &fakeTransactor{},
		log:        log,
		users:      &fakeUserRepo{s: store},
		doctors:    &fakeDoctorRepo{s: store},
		appts:      &fakeAppointmentRepo{s: store},
		auditRepo:  &fakeAuditLogRepo{s: store},
		notifier:   &fakeNotifier{},
		slotLock:   service.NewSlotLockService(log),
		gateway:    newFakePaymentGateway(),
		imageStore: &fakeImageStore{},
	}
	t.Cleanup(env.slotLock.Stop)

	env.audit = service.NewAuditService(log, env.auditRepo)
	env.appointment = NewAppointmentUsecase(env.tx, log, env.appts, env.doctors, env.users, env.audit, env.slotLock, env.notifier)
	env.payment = NewPaymentUsecase(env.tx, log, env.appts, env.users, env.audit, env.gateway, env.notifier, "INR")
	return env
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
