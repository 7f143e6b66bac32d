package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace-booking/internal/domain/entity"
	"marketplace-booking/internal/domain/repository"
	"marketplace-booking/internal/domain/scheduling"
	"marketplace-booking/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// memStore is the in-memory stand-in for PostgreSQL. Repositories ignore the
// *gorm.DB they are handed; transactions serialize on txMu and roll the
// whole store back when the callback fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users        map[uuid.UUID]entity.User
	contractors  map[int64]entity.Contractor
	services     map[int64]entity.Service
	availability map[int64][]entity.WeeklyAvailability
	blocked      map[int64]entity.BlockedSlot
	bookings     map[int64]entity.Booking
	audit        []entity.AuditLog
	nextID       int64

	locks       int
	clientLocks int

	// bookingWriteErr replaces booking inserts and schedule updates, the way
	// the exclusion constraint rejects a write that slipped past the checker.
	bookingWriteErr error
	// userRace is committed by "another request" right before the next user
	// insert, which then fails with a unique violation.
	userRace *entity.User
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uuid.UUID]entity.User),
		contractors:  make(map[int64]entity.Contractor),
		services:     make(map[int64]entity.Service),
		availability: make(map[int64][]entity.WeeklyAvailability),
		blocked:      make(map[int64]entity.BlockedSlot),
		bookings:     make(map[int64]entity.Booking),
		nextID:       1000,
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	users        map[uuid.UUID]entity.User
	availability map[int64][]entity.WeeklyAvailability
	blocked      map[int64]entity.BlockedSlot
	bookings     map[int64]entity.Booking
	audit        []entity.AuditLog
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		users:        make(map[uuid.UUID]entity.User, len(s.users)),
		availability: make(map[int64][]entity.WeeklyAvailability, len(s.availability)),
		blocked:      make(map[int64]entity.BlockedSlot, len(s.blocked)),
		bookings:     make(map[int64]entity.Booking, len(s.bookings)),
		audit:        append([]entity.AuditLog(nil), s.audit...),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.availability {
		snap.availability[k] = append([]entity.WeeklyAvailability(nil), v...)
	}
	for k, v := range s.blocked {
		snap.blocked[k] = v
	}
	for k, v := range s.bookings {
		snap.bookings[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.availability = snap.availability
	s.blocked = snap.blocked
	s.bookings = snap.bookings
	s.audit = snap.audit
}

func (s *memStore) booking(id int64) entity.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *memStore) putBooking(b entity.Booking) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.id()
	}
	if b.EndsAt.IsZero() {
		b.EndsAt = b.ScheduledAt.Add(b.Duration())
	}
	s.bookings[b.ID] = b
	return b.ID
}

func (s *memStore) deleteBooking(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bookings, id)
}

func (s *memStore) putBlocked(b entity.BlockedSlot) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.id()
	}
	s.blocked[b.ID] = b
	return b.ID
}

func (s *memStore) auditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]string, 0, len(s.audit))
	for _, l := range s.audit {
		actions = append(actions, l.Action)
	}
	return actions
}

// Transactor and lock

type memTransactor struct{ s *memStore }

func (t memTransactor) DB(ctx context.Context) *gorm.DB { return nil }

func (t memTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	snap := t.s.snapshot()
	if err := fn(nil); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func (t memTransactor) ReadSnapshot(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type memLock struct{ s *memStore }

func (l memLock) Lock(db *gorm.DB, contractorID int64) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.locks++
	return nil
}

func (l memLock) LockClient(db *gorm.DB, clientID uuid.UUID) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.clientLocks++
	return nil
}

// Repositories

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(db *gorm.DB, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if winner := r.s.userRace; winner != nil {
		r.s.userRace = nil
		r.s.users[winner.ID] = *winner
		return &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memUserRepo) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUserRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

type memContractorRepo struct{ s *memStore }

func (r memContractorRepo) FindByID(db *gorm.DB, id int64) (*entity.Contractor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.contractors[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r memContractorRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Contractor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.contractors {
		if c.UserID == userID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

type memServiceRepo struct{ s *memStore }

func (r memServiceRepo) FindByID(db *gorm.DB, id int64) (*entity.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, nil
	}
	svc.Contractor = r.s.contractors[svc.ContractorID]
	return &svc, nil
}

type memAvailabilityRepo struct{ s *memStore }

func (r memAvailabilityRepo) FindByContractorID(db *gorm.DB, contractorID int64) ([]entity.WeeklyAvailability, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entity.WeeklyAvailability(nil), r.s.availability[contractorID]...), nil
}

func (r memAvailabilityRepo) Replace(db *gorm.DB, contractorID int64, rows []entity.WeeklyAvailability) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := make([]entity.WeeklyAvailability, len(rows))
	for i, row := range rows {
		row.ContractorID = contractorID
		row.ID = r.s.id()
		stored[i] = row
	}
	r.s.availability[contractorID] = stored
	return nil
}

type memBlockedRepo struct{ s *memStore }

func (r memBlockedRepo) Create(db *gorm.DB, slot *entity.BlockedSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	slot.ID = r.s.id()
	r.s.blocked[slot.ID] = *slot
	return nil
}

func (r memBlockedRepo) FindByID(db *gorm.DB, id int64) (*entity.BlockedSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.blocked[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (r memBlockedRepo) filter(contractorID int64, keep func(date string) bool) []entity.BlockedSlot {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.BlockedSlot
	for _, b := range r.s.blocked {
		if b.ContractorID == contractorID && keep(b.Date.Format("2006-01-02")) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (r memBlockedRepo) FindByContractorAndDate(db *gorm.DB, contractorID int64, date time.Time) ([]entity.BlockedSlot, error) {
	day := date.Format("2006-01-02")
	return r.filter(contractorID, func(d string) bool { return d == day }), nil
}

func (r memBlockedRepo) FindByContractorInRange(db *gorm.DB, contractorID int64, from, to time.Time) ([]entity.BlockedSlot, error) {
	lo, hi := from.Format("2006-01-02"), to.Format("2006-01-02")
	return r.filter(contractorID, func(d string) bool { return d >= lo && d <= hi }), nil
}

func (r memBlockedRepo) FindByContractorFrom(db *gorm.DB, contractorID int64, from time.Time) ([]entity.BlockedSlot, error) {
	lo := from.Format("2006-01-02")
	return r.filter(contractorID, func(d string) bool { return d >= lo }), nil
}

func (r memBlockedRepo) Delete(db *gorm.DB, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blocked[id]; !ok {
		return 0, nil
	}
	delete(r.s.blocked, id)
	return 1, nil
}

type memBookingRepo struct{ s *memStore }

func (r memBookingRepo) Create(db *gorm.DB, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.bookingWriteErr != nil {
		return r.s.bookingWriteErr
	}
	booking.ID = r.s.id()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r memBookingRepo) FindByID(db *gorm.DB, id int64) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	b.Service = r.s.services[b.ServiceID]
	b.Client = r.s.users[b.ClientID]
	return &b, nil
}

func (r memBookingRepo) list(keep func(b entity.Booking) bool) []entity.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Booking
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func (r memBookingRepo) FindByClientID(db *gorm.DB, clientID uuid.UUID) ([]entity.Booking, error) {
	return r.list(func(b entity.Booking) bool { return b.ClientID == clientID }), nil
}

func (r memBookingRepo) FindByContractorID(db *gorm.DB, contractorID int64, filter *entity.BookingFilter) ([]entity.Booking, error) {
	return r.list(func(b entity.Booking) bool {
		if b.ContractorID != contractorID {
			return false
		}
		if filter == nil {
			return true
		}
		if filter.Status != nil && b.Status != *filter.Status {
			return false
		}
		if filter.From != nil && b.ScheduledAt.Before(*filter.From) {
			return false
		}
		if filter.To != nil && b.ScheduledAt.After(*filter.To) {
			return false
		}
		return true
	}), nil
}

func (r memBookingRepo) FindActiveInRange(db *gorm.DB, contractorID int64, from, to time.Time) ([]entity.Booking, error) {
	return r.list(func(b entity.Booking) bool {
		return b.ContractorID == contractorID && b.IsActive() &&
			b.ScheduledAt.Before(to) && b.EndsAt.After(from)
	}), nil
}

func (r memBookingRepo) FindByIDsForUpdate(db *gorm.DB, contractorID int64, ids []int64) ([]entity.Booking, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := r.list(func(b entity.Booking) bool { return b.ContractorID == contractorID && wanted[b.ID] })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memBookingRepo) CountByClientAndStatus(db *gorm.DB, clientID uuid.UUID, status entity.BookingStatus) (int64, error) {
	return int64(len(r.list(func(b entity.Booking) bool { return b.ClientID == clientID && b.Status == status }))), nil
}

func (r memBookingRepo) UpdateStatus(db *gorm.DB, id int64, status entity.BookingStatus) (int64, error) {
	return r.UpdateStatusBulk(db, []int64{id}, status)
}

func (r memBookingRepo) UpdateStatusBulk(db *gorm.DB, ids []int64, status entity.BookingStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var affected int64
	for _, id := range ids {
		b, ok := r.s.bookings[id]
		if !ok || b.IsTerminal() {
			continue
		}
		b.Status = status
		r.s.bookings[id] = b
		affected++
	}
	return affected, nil
}

func (r memBookingRepo) UpdateSchedule(db *gorm.DB, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.bookingWriteErr != nil {
		return r.s.bookingWriteErr
	}
	b := r.s.bookings[booking.ID]
	b.ScheduledAt = booking.ScheduledAt
	b.EndsAt = booking.EndsAt
	b.DurationMinutes = booking.DurationMinutes
	r.s.bookings[booking.ID] = b
	return nil
}

type memAuditRepo struct{ s *memStore }

func (r memAuditRepo) Create(db *gorm.DB, log *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = int64(len(r.s.audit) + 1)
	log.CreatedAt = time.Now()
	r.s.audit = append(r.s.audit, *log)
	return nil
}

func (r memAuditRepo) FindByEntity(db *gorm.DB, entityName, entityID string) ([]entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.AuditLog
	for _, l := range r.s.audit {
		if l.Entity == entityName && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}

var (
	_ repository.Transactor             = memTransactor{}
	_ repository.CalendarLock           = memLock{}
	_ repository.UserRepository         = memUserRepo{}
	_ repository.ContractorRepository   = memContractorRepo{}
	_ repository.ServiceRepository      = memServiceRepo{}
	_ repository.AvailabilityRepository = memAvailabilityRepo{}
	_ repository.BlockedSlotRepository  = memBlockedRepo{}
	_ repository.BookingRepository      = memBookingRepo{}
	_ repository.AuditLogRepository     = memAuditRepo{}
)

// Fixture

// monday is 2026-10-19, a Monday. Tests run at 07:00 UTC that day.
var (
	monday  = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	testNow = monday.Add(7 * time.Hour)
)

func on(day time.Time, clock string) time.Time {
	return scheduling.MustClock(clock).On(day)
}

const (
	testContractorID = int64(1)
	testServiceID    = int64(10)
)

type fixture struct {
	store          *memStore
	contractorUser uuid.UUID
	client         uuid.UUID
	opts           SchedulingOptions

	availability AvailabilityUsecase
	blocked      BlockedTimeUsecase
	clientUC     ClientBookingUsecase
	contractorUC ContractorBookingUsecase
	history      AuditLogUsecase
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testOptions() SchedulingOptions {
	return SchedulingOptions{
		Rules: scheduling.DefaultRules(),
		Generator: scheduling.Generator{
			Quantum:     30 * time.Minute,
			HorizonDays: 14,
			LeadTime:    2 * time.Hour,
			Location:    time.UTC,
		},
		MaxActiveBookings: 10,
		SlotLimit:         200,
		Location:          time.UTC,
		Now:               func() time.Time { return testNow },
	}
}

func newFixture(mutate ...func(*SchedulingOptions)) *fixture {
	s := newMemStore()
	f := &fixture{store: s, contractorUser: uuid.New(), client: uuid.New(), opts: testOptions()}
	for _, m := range mutate {
		m(&f.opts)
	}

	s.users[f.contractorUser] = entity.User{ID: f.contractorUser, Email: "pro@example.com", FullName: "Pro"}
	s.users[f.client] = entity.User{ID: f.client, Email: "client@example.com", FullName: "Client"}
	s.contractors[testContractorID] = entity.Contractor{ID: testContractorID, UserID: f.contractorUser, Status: entity.ContractorStatusApproved}
	s.services[testServiceID] = entity.Service{ID: testServiceID, ContractorID: testContractorID, Title: "Plumbing", DurationMinutes: 60, IsActive: true}

	log := quietLogger()
	tx := memTransactor{s}
	lock := memLock{s}
	users := memUserRepo{s}
	contractors := memContractorRepo{s}
	services := memServiceRepo{s}
	availability := memAvailabilityRepo{s}
	blocked := memBlockedRepo{s}
	bookings := memBookingRepo{s}
	auditRepo := memAuditRepo{s}
	audit := service.NewAuditService(log, auditRepo)

	f.availability = NewAvailabilityUsecase(tx, log, f.opts, contractors, availability, services, bookings, blocked, lock, audit, nil)
	f.blocked = NewBlockedTimeUsecase(tx, log, f.opts, contractors, blocked, lock, audit, nil)
	f.clientUC = NewClientBookingUsecase(tx, log, f.opts, services, bookings, blocked, lock, audit, nil)
	f.contractorUC = NewContractorBookingUsecase(tx, log, f.opts, contractors, services, users, bookings, blocked, lock, audit, nil)
	f.history = NewAuditLogUsecase(tx, log, contractors, bookings, auditRepo)
	return f
}
