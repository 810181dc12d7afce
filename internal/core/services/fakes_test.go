package services

import (
	"context"
	"time"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fakeStore is an in-memory Store. Entities are stored as copies so a test
// mutating a returned struct cannot bypass Update, and WithinTx snapshots the
// whole state so a failing transaction body really rolls back.
type fakeStore struct {
	citizens     map[uuid.UUID]*domain.Citizen
	citizenOrder []uuid.UUID
	officers     map[uuid.UUID]*domain.Officer
	officerOrder []uuid.UUID
	visits       map[uuid.UUID]*domain.Visit
	visitOrder   []uuid.UUID
	requests     map[uuid.UUID]*domain.VerificationRequest
	requestOrder []uuid.UUID
	alerts       map[uuid.UUID]*domain.SOSAlert
	alertOrder   []uuid.UUID
	locations    []*domain.SOSLocationUpdate
	transfers    []*domain.OfficerTransferHistory

	// failures maps an operation name (e.g. "officer.update") to an error
	// that operation should return, for exercising rollback paths.
	failures map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		citizens: make(map[uuid.UUID]*domain.Citizen),
		officers: make(map[uuid.UUID]*domain.Officer),
		visits:   make(map[uuid.UUID]*domain.Visit),
		requests: make(map[uuid.UUID]*domain.VerificationRequest),
		alerts:   make(map[uuid.UUID]*domain.SOSAlert),
		failures: make(map[string]error),
	}
}

func (s *fakeStore) Citizens() ports.CitizenRepository { return fakeCitizens{s} }

func (s *fakeStore) Officers() ports.OfficerRepository { return fakeOfficers{s} }

func (s *fakeStore) Visits() ports.VisitRepository { return fakeVisits{s} }

func (s *fakeStore) Verifications() ports.VerificationRepository { return fakeVerifications{s} }

func (s *fakeStore) Alerts() ports.SOSRepository { return fakeAlerts{s} }

func (s *fakeStore) Transfers() ports.TransferRepository { return fakeTransfers{s} }

var _ ports.Store = (*fakeStore)(nil)

type storeSnapshot struct {
	citizens     map[uuid.UUID]*domain.Citizen
	citizenOrder []uuid.UUID
	officers     map[uuid.UUID]*domain.Officer
	officerOrder []uuid.UUID
	visits       map[uuid.UUID]*domain.Visit
	visitOrder   []uuid.UUID
	requests     map[uuid.UUID]*domain.VerificationRequest
	requestOrder []uuid.UUID
	alerts       map[uuid.UUID]*domain.SOSAlert
	alertOrder   []uuid.UUID
	locations    []*domain.SOSLocationUpdate
	transfers    []*domain.OfficerTransferHistory
}

func (s *fakeStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		citizens:     make(map[uuid.UUID]*domain.Citizen, len(s.citizens)),
		citizenOrder: append([]uuid.UUID(nil), s.citizenOrder...),
		officers:     make(map[uuid.UUID]*domain.Officer, len(s.officers)),
		officerOrder: append([]uuid.UUID(nil), s.officerOrder...),
		visits:       make(map[uuid.UUID]*domain.Visit, len(s.visits)),
		visitOrder:   append([]uuid.UUID(nil), s.visitOrder...),
		requests:     make(map[uuid.UUID]*domain.VerificationRequest, len(s.requests)),
		requestOrder: append([]uuid.UUID(nil), s.requestOrder...),
		alerts:       make(map[uuid.UUID]*domain.SOSAlert, len(s.alerts)),
		alertOrder:   append([]uuid.UUID(nil), s.alertOrder...),
		locations:    append([]*domain.SOSLocationUpdate(nil), s.locations...),
		transfers:    append([]*domain.OfficerTransferHistory(nil), s.transfers...),
	}
	for id, c := range s.citizens {
		cp := *c
		snap.citizens[id] = &cp
	}
	for id, o := range s.officers {
		cp := *o
		snap.officers[id] = &cp
	}
	for id, v := range s.visits {
		cp := *v
		snap.visits[id] = &cp
	}
	for id, r := range s.requests {
		cp := *r
		snap.requests[id] = &cp
	}
	for id, a := range s.alerts {
		cp := *a
		snap.alerts[id] = &cp
	}
	return snap
}

func (s *fakeStore) restore(snap storeSnapshot) {
	s.citizens, s.citizenOrder = snap.citizens, snap.citizenOrder
	s.officers, s.officerOrder = snap.officers, snap.officerOrder
	s.visits, s.visitOrder = snap.visits, snap.visitOrder
	s.requests, s.requestOrder = snap.requests, snap.requestOrder
	s.alerts, s.alertOrder = snap.alerts, snap.alertOrder
	s.locations = snap.locations
	s.transfers = snap.transfers
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type fakeCitizens struct{ s *fakeStore }

func (r fakeCitizens) Create(ctx context.Context, c *domain.Citizen) error {
	if err := r.s.failures["citizen.create"]; err != nil {
		return err
	}
	cp := *c
	r.s.citizens[c.ID] = &cp
	r.s.citizenOrder = append(r.s.citizenOrder, c.ID)
	return nil
}

func (r fakeCitizens) GetByID(ctx context.Context, id uuid.UUID) (*domain.Citizen, error) {
	c, ok := r.s.citizens[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r fakeCitizens) Update(ctx context.Context, c *domain.Citizen) error {
	if err := r.s.failures["citizen.update"]; err != nil {
		return err
	}
	cp := *c
	r.s.citizens[c.ID] = &cp
	return nil
}

func (r fakeCitizens) ListByAssignedOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.Citizen, error) {
	var out []*domain.Citizen
	for _, id := range r.s.citizenOrder {
		c := r.s.citizens[id]
		if c.AssignedOfficerID != nil && *c.AssignedOfficerID == officerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeCitizens) ListByVulnerability(ctx context.Context, levels []domain.VulnerabilityLevel) ([]*domain.Citizen, error) {
	wanted := make(map[domain.VulnerabilityLevel]bool, len(levels))
	for _, l := range levels {
		wanted[l] = true
	}
	var out []*domain.Citizen
	for _, id := range r.s.citizenOrder {
		c := r.s.citizens[id]
		if c.Status == domain.CitizenInactive || c.Status == domain.CitizenDeceased {
			continue
		}
		if wanted[c.VulnerabilityLevel] {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeCitizens) ListUnassigned(ctx context.Context) ([]*domain.Citizen, error) {
	var out []*domain.Citizen
	for _, id := range r.s.citizenOrder {
		c := r.s.citizens[id]
		if c.Status == domain.CitizenInactive || c.Status == domain.CitizenDeceased {
			continue
		}
		if c.AssignedOfficerID == nil {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeOfficers struct{ s *fakeStore }

func (r fakeOfficers) Create(ctx context.Context, o *domain.Officer) error {
	cp := *o
	r.s.officers[o.ID] = &cp
	r.s.officerOrder = append(r.s.officerOrder, o.ID)
	return nil
}

func (r fakeOfficers) GetByID(ctx context.Context, id uuid.UUID) (*domain.Officer, error) {
	o, ok := r.s.officers[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r fakeOfficers) Update(ctx context.Context, o *domain.Officer) error {
	if err := r.s.failures["officer.update"]; err != nil {
		return err
	}
	cp := *o
	r.s.officers[o.ID] = &cp
	return nil
}

func (r fakeOfficers) ListEligibleByStation(ctx context.Context, stationID uuid.UUID, excludeID *uuid.UUID) ([]*domain.Officer, error) {
	var out []*domain.Officer
	for _, id := range r.s.officerOrder {
		o := r.s.officers[id]
		if !o.IsActive || o.BeatID == nil || o.PoliceStationID == nil || *o.PoliceStationID != stationID {
			continue
		}
		if excludeID != nil && o.ID == *excludeID {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r fakeOfficers) FirstActiveByBeat(ctx context.Context, beatID uuid.UUID) (*domain.Officer, error) {
	for _, id := range r.s.officerOrder {
		o := r.s.officers[id]
		if o.IsActive && o.BeatID != nil && *o.BeatID == beatID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeVisits struct{ s *fakeStore }

func (r fakeVisits) Create(ctx context.Context, v *domain.Visit) error {
	if err := r.s.failures["visit.create"]; err != nil {
		return err
	}
	cp := *v
	r.s.visits[v.ID] = &cp
	r.s.visitOrder = append(r.s.visitOrder, v.ID)
	return nil
}

func (r fakeVisits) GetByID(ctx context.Context, id uuid.UUID) (*domain.Visit, error) {
	v, ok := r.s.visits[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r fakeVisits) Update(ctx context.Context, v *domain.Visit) error {
	if err := r.s.failures["visit.update"]; err != nil {
		return err
	}
	cp := *v
	r.s.visits[v.ID] = &cp
	return nil
}

func (r fakeVisits) ListOpenByOfficerOn(ctx context.Context, officerID uuid.UUID, day time.Time) ([]*domain.Visit, error) {
	y, m, d := day.UTC().Date()
	var out []*domain.Visit
	for _, id := range r.s.visitOrder {
		v := r.s.visits[id]
		vy, vm, vd := v.ScheduledDate.UTC().Date()
		if v.OfficerID == officerID && v.IsOpen() && vy == y && vm == m && vd == d {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeVisits) CountOpenByOfficer(ctx context.Context, officerID uuid.UUID) (int, error) {
	n := 0
	for _, v := range r.s.visits {
		if v.OfficerID == officerID && v.IsOpen() {
			n++
		}
	}
	return n, nil
}

func (r fakeVisits) ListScheduledByOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.Visit, error) {
	var out []*domain.Visit
	for _, id := range r.s.visitOrder {
		v := r.s.visits[id]
		if v.OfficerID == officerID && v.Status == domain.VisitScheduled {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeVisits) ListOpenByCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.Visit, error) {
	var out []*domain.Visit
	for _, id := range r.s.visitOrder {
		v := r.s.visits[id]
		if v.SeniorCitizenID == citizenID && v.IsOpen() {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeVisits) HasUpcomingVisit(ctx context.Context, citizenID uuid.UUID, after time.Time) (bool, error) {
	for _, v := range r.s.visits {
		if v.SeniorCitizenID == citizenID && v.IsOpen() && !v.ScheduledDate.Before(after) {
			return true, nil
		}
	}
	return false, nil
}

type fakeVerifications struct{ s *fakeStore }

func (r fakeVerifications) Create(ctx context.Context, req *domain.VerificationRequest) error {
	if err := r.s.failures["verification.create"]; err != nil {
		return err
	}
	cp := *req
	r.s.requests[req.ID] = &cp
	r.s.requestOrder = append(r.s.requestOrder, req.ID)
	return nil
}

func (r fakeVerifications) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationRequest, error) {
	req, ok := r.s.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r fakeVerifications) GetByVisitID(ctx context.Context, visitID uuid.UUID) (*domain.VerificationRequest, error) {
	for _, id := range r.s.requestOrder {
		req := r.s.requests[id]
		if req.VisitID != nil && *req.VisitID == visitID {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeVerifications) Update(ctx context.Context, req *domain.VerificationRequest) error {
	if err := r.s.failures["verification.update"]; err != nil {
		return err
	}
	cp := *req
	r.s.requests[req.ID] = &cp
	return nil
}

func (r fakeVerifications) ListPendingUnassigned(ctx context.Context) ([]*domain.VerificationRequest, error) {
	var out []*domain.VerificationRequest
	for _, id := range r.s.requestOrder {
		req := r.s.requests[id]
		if req.Status == domain.VerificationPending && req.AssignedTo == nil {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeAlerts struct{ s *fakeStore }

func (r fakeAlerts) Create(ctx context.Context, alert *domain.SOSAlert) error {
	if err := r.s.failures["alert.create"]; err != nil {
		return err
	}
	for _, existing := range r.s.alerts {
		if existing.SeniorCitizenID == alert.SeniorCitizenID && !existing.IsTerminal() {
			return ports.ErrDuplicateActiveAlert
		}
	}
	cp := *alert
	r.s.alerts[alert.ID] = &cp
	r.s.alertOrder = append(r.s.alertOrder, alert.ID)
	return nil
}

func (r fakeAlerts) GetByID(ctx context.Context, id uuid.UUID) (*domain.SOSAlert, error) {
	a, ok := r.s.alerts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r fakeAlerts) Update(ctx context.Context, alert *domain.SOSAlert) error {
	if err := r.s.failures["alert.update"]; err != nil {
		return err
	}
	cp := *alert
	r.s.alerts[alert.ID] = &cp
	return nil
}

func (r fakeAlerts) GetActiveByCitizen(ctx context.Context, citizenID uuid.UUID) (*domain.SOSAlert, error) {
	for _, id := range r.s.alertOrder {
		a := r.s.alerts[id]
		if a.SeniorCitizenID == citizenID && !a.IsTerminal() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeAlerts) ListUnrespondedSince(ctx context.Context, cutoff time.Time) ([]*domain.SOSAlert, error) {
	var out []*domain.SOSAlert
	for _, id := range r.s.alertOrder {
		a := r.s.alerts[id]
		if a.Status == domain.SOSActive && a.RespondedAt == nil && a.CreatedAt.Before(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeAlerts) AddLocationUpdate(ctx context.Context, update *domain.SOSLocationUpdate) error {
	cp := *update
	r.s.locations = append(r.s.locations, &cp)
	return nil
}

type fakeTransfers struct{ s *fakeStore }

func (r fakeTransfers) Record(ctx context.Context, h *domain.OfficerTransferHistory) error {
	if err := r.s.failures["transfer.record"]; err != nil {
		return err
	}
	cp := *h
	r.s.transfers = append(r.s.transfers, &cp)
	return nil
}

func (r fakeTransfers) ListByOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.OfficerTransferHistory, error) {
	var out []*domain.OfficerTransferHistory
	for _, h := range r.s.transfers {
		if h.OfficerID == officerID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeClock is a settable Clock.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeBus dispatches synchronously and records everything published.
type fakeBus struct {
	events   []ports.Event
	handlers map[string][]ports.EventHandler
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string][]ports.EventHandler)}
}

func (b *fakeBus) Publish(ctx context.Context, topic string, data interface{}) error {
	event := ports.Event{Topic: topic, Data: data}
	b.events = append(b.events, event)
	for _, h := range b.handlers[topic] {
		_ = h(ctx, event)
	}
	return nil
}

func (b *fakeBus) Subscribe(topic string, handler ports.EventHandler) {
	b.handlers[topic] = append(b.handlers[topic], handler)
}

func (b *fakeBus) count(topic string) int {
	n := 0
	for _, e := range b.events {
		if e.Topic == topic {
			n++
		}
	}
	return n
}

// fakeNotifier records every send and accepts everything.
type fakeNotifier struct {
	sms                   []string
	sosAlerts             int
	visitScheduled        int
	verificationRequested int
	verificationOutcomes  []domain.VerificationStatus
}

func (n *fakeNotifier) SendSMS(ctx context.Context, phone, message string) bool {
	n.sms = append(n.sms, phone)
	return true
}

func (n *fakeNotifier) SendEmail(ctx context.Context, to, subject, body string) bool { return true }

func (n *fakeNotifier) SendSOSAlert(ctx context.Context, alert *domain.SOSAlert, officerPhone, contactPhone string) {
	n.sosAlerts++
}

func (n *fakeNotifier) SendVisitScheduled(ctx context.Context, visit *domain.Visit, citizenPhone string) {
	n.visitScheduled++
}

func (n *fakeNotifier) SendVerificationRequested(ctx context.Context, req *domain.VerificationRequest, citizenPhone string) {
	n.verificationRequested++
}

func (n *fakeNotifier) SendVerificationOutcome(ctx context.Context, req *domain.VerificationRequest, citizenPhone string) {
	n.verificationOutcomes = append(n.verificationOutcomes, req.Status)
}

// fakeCache is a map-backed Cache that ignores TTLs.
type fakeCache struct {
	entries map[string]string
	sets    int
	deletes int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: make(map[string]string)} }

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	c.deletes++
	return nil
}

// harness wires the full service graph over the fakes.
type harness struct {
	store    *fakeStore
	clock    *fakeClock
	bus      *fakeBus
	notifier *fakeNotifier
	cache    *fakeCache

	assignment   *AssignmentEngine
	conflicts    *ConflictDetector
	geofence     *GeofenceValidator
	visits       *VisitService
	verification *VerificationWorkflow
	sos          *SOSService
	citizens     *CitizenService
	transfers    *TransferEngine
	admin        *AdminService
}

var testStart = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func newHarness() *harness {
	logger := zerolog.Nop()
	h := &harness{
		store:    newFakeStore(),
		clock:    &fakeClock{now: testStart},
		bus:      newFakeBus(),
		notifier: &fakeNotifier{},
		cache:    newFakeCache(),
	}
	h.assignment = NewAssignmentEngine(&logger)
	h.conflicts = NewConflictDetector(&logger)
	h.geofence = NewGeofenceValidator(true, 25, &logger)
	h.visits = NewVisitService(h.store, h.conflicts, h.geofence, h.notifier, h.bus, h.clock, &logger)
	h.verification = NewVerificationWorkflow(h.store, h.assignment, h.visits, h.notifier, h.bus, h.clock, &logger)
	h.visits.AttachVerificationWorkflow(h.verification)
	h.sos = NewSOSService(h.store, h.visits, h.notifier, h.bus, h.clock, 15*time.Minute, 60*time.Minute, &logger)
	h.citizens = NewCitizenService(h.store, h.assignment, h.verification, h.bus, h.clock, &logger)
	h.transfers = NewTransferEngine(h.store, h.assignment, h.bus, h.clock, &logger)
	h.admin = NewAdminService(h.store, h.cache, h.bus, h.clock, 15*time.Minute, 5*time.Minute, &logger)
	return h
}

func (h *harness) addOfficer(beatID, stationID *uuid.UUID, active bool) *domain.Officer {
	officer := &domain.Officer{
		ID:              uuid.New(),
		FullName:        "Officer",
		BadgeNumber:     "B-100",
		BeatID:          beatID,
		PoliceStationID: stationID,
		IsActive:        active,
		CreatedAt:       h.clock.Now(),
		UpdatedAt:       h.clock.Now(),
	}
	_ = h.store.Officers().Create(context.Background(), officer)
	return officer
}

func (h *harness) addCitizen(beatID, stationID *uuid.UUID, officerID *uuid.UUID) *domain.Citizen {
	citizen := &domain.Citizen{
		ID:                   uuid.New(),
		FullName:             "Citizen",
		Status:               domain.CitizenPending,
		IDVerificationStatus: domain.IDVerificationPending,
		VulnerabilityLevel:   domain.VulnerabilityLow,
		BeatID:               beatID,
		PoliceStationID:      stationID,
		AssignedOfficerID:    officerID,
		CreatedAt:            h.clock.Now(),
		UpdatedAt:            h.clock.Now(),
	}
	_ = h.store.Citizens().Create(context.Background(), citizen)
	return citizen
}

func (h *harness) addVisit(citizenID, officerID uuid.UUID, start time.Time, duration int, status domain.VisitStatus, visitType domain.VisitType) *domain.Visit {
	visit := &domain.Visit{
		ID:              uuid.New(),
		SeniorCitizenID: citizenID,
		OfficerID:       officerID,
		ScheduledDate:   start,
		DurationMinutes: duration,
		Status:          status,
		VisitType:       visitType,
		CreatedAt:       h.clock.Now(),
		UpdatedAt:       h.clock.Now(),
	}
	_ = h.store.Visits().Create(context.Background(), visit)
	return visit
}

func ptr[T any](v T) *T { return &v }
