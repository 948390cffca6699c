package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	appointmentRepo "wellbook/database/repository/appointment"
	"wellbook/models"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu           sync.Mutex
	appts        map[string]*models.Appointment
	activeCalls  int
	activeErr    error
	createErr    error
	statusUpdate []string
	// onActive runs once, after ActiveSlots has read the store.
	onActive func()
}

func newFakeRepo(appts ...models.Appointment) *fakeRepo {
	r := &fakeRepo{appts: map[string]*models.Appointment{}}
	for i := range appts {
		a := appts[i]
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if a.Status == "" {
			a.Status = models.AppointmentScheduled
		}
		r.appts[a.ID] = &a
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	cp := *appt
	r.appts[appt.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) list(match func(a *models.Appointment) bool) []models.Appointment {
	out := []models.Appointment{}
	for _, a := range r.appts {
		if match(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentTime < out[j].AppointmentTime })
	return out
}

func (r *fakeRepo) ListByProfessionalAndDate(_ context.Context, professionalID, date string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(a *models.Appointment) bool {
		return a.ProfessionalID == professionalID && a.Date == date
	}), nil
}

func (r *fakeRepo) ListByPatient(_ context.Context, patientID, status string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(a *models.Appointment) bool {
		return a.PatientID == patientID && (status == "" || a.Status == status)
	}), nil
}

func (r *fakeRepo) ActiveSlots(_ context.Context, professionalID, date string) ([]models.AppointmentSlot, error) {
	r.mu.Lock()
	r.activeCalls++
	if r.activeErr != nil {
		r.mu.Unlock()
		return nil, r.activeErr
	}
	var slots []models.AppointmentSlot
	for _, a := range r.list(func(a *models.Appointment) bool {
		return a.ProfessionalID == professionalID && a.Date == date && a.Status != models.AppointmentCancelled
	}) {
		slots = append(slots, a.Slot())
	}
	hook := r.onActive
	r.onActive = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return slots, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	a.Status = status
	r.statusUpdate = append(r.statusUpdate, id+"="+status)
	return nil
}

func (r *fakeRepo) SetPaymentIntent(_ context.Context, id, paymentIntentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	a.PaymentIntentID = paymentIntentID
	return nil
}

func (r *fakeRepo) EnsureIndexes() error { return nil }

// fakeCache keeps one entry per day plus the version it was written under.
type fakeCache struct {
	entries     map[string][]models.AppointmentSlot
	entryVer    map[string]int64
	versions    map[string]int64
	invalidated []string
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:  map[string][]models.AppointmentSlot{},
		entryVer: map[string]int64{},
		versions: map[string]int64{},
	}
}

func (c *fakeCache) Get(_ context.Context, professionalID, date string) ([]models.AppointmentSlot, int64, bool, error) {
	if c.getErr != nil {
		return nil, 0, false, c.getErr
	}
	key := professionalID + ":" + date
	slots, ok := c.entries[key]
	if !ok || c.entryVer[key] != c.versions[key] {
		return nil, c.versions[key], false, nil
	}
	return slots, c.versions[key], true, nil
}

func (c *fakeCache) Set(_ context.Context, professionalID, date string, version int64, slots []models.AppointmentSlot) error {
	key := professionalID + ":" + date
	if version != c.versions[key] {
		return nil
	}
	c.entries[key] = slots
	c.entryVer[key] = version
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, professionalID, date string) error {
	key := professionalID + ":" + date
	delete(c.entries, key)
	c.versions[key]++
	c.invalidated = append(c.invalidated, key)
	return nil
}

// fakeLocker is an in-process mutex per key.
type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired int
	released int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) Acquire(_ context.Context, professionalID, date string) (func(context.Context) error, error) {
	key := professionalID + ":" + date
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, ErrBookingInProgress
	}
	l.held[key] = true
	l.acquired++
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
		return nil
	}, nil
}

type fakePayments struct {
	requests []models.DepositRequest
	err      error
}

func (p *fakePayments) CreateDeposit(_ context.Context, req models.DepositRequest) (*models.Deposit, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &models.Deposit{PaymentIntentID: "pi_" + req.AppointmentID, ClientSecret: "secret_" + req.AppointmentID, Status: "requires_payment_method"}, nil
}

type sentPush struct {
	accountID string
	title     string
	data      map[string]string
}

type fakeNotifier struct {
	sent []sentPush
	err  error
}

func (n *fakeNotifier) NotifyAccount(_ context.Context, accountID, title, _ string, data map[string]string) error {
	n.sent = append(n.sent, sentPush{accountID: accountID, title: title, data: data})
	return n.err
}

type scheduledReminder struct {
	payload models.ReminderPayload
	fireAt  time.Time
}

type fakeReminders struct {
	scheduled []scheduledReminder
	cancelled []string
}

func (f *fakeReminders) CancelReminder(_ context.Context, appointmentID string) error {
	f.cancelled = append(f.cancelled, appointmentID)
	return nil
}

func (f *fakeReminders) ScheduleReminder(_ context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	f.scheduled = append(f.scheduled, scheduledReminder{payload: payload, fireAt: fireAt})
	return nil
}

var errBoom = errors.New("boom")
