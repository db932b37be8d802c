package orchestrators

import (
	"context"
	"sort"
	"time"

	"golang.org/x/crypto/bcrypt"

	"communityhub/internal/adapters/storage"
	"communityhub/internal/domain/donation"
	"communityhub/internal/domain/event"
	"communityhub/internal/domain/schedule"
	"communityhub/internal/domain/slot"
	"communityhub/internal/domain/unavailable"
	"communityhub/internal/domain/volunteer"
)

func init() {
	volunteer.PasswordCost = bcrypt.MinCost
}

var fixedTime = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// --- volunteers ---

type mockVolunteerStore struct {
	byEmail   map[string]volunteer.Volunteer
	nextID    int64
	createErr error
	getErr    error
}

func newMockVolunteerStore() *mockVolunteerStore {
	return &mockVolunteerStore{byEmail: make(map[string]volunteer.Volunteer), nextID: 1}
}

func (m *mockVolunteerStore) GetByEmail(_ context.Context, email string) (volunteer.Volunteer, error) {
	if m.getErr != nil {
		return volunteer.Volunteer{}, m.getErr
	}
	v, ok := m.byEmail[email]
	if !ok {
		return volunteer.Volunteer{}, storage.ErrNotFound
	}
	return v, nil
}

func (m *mockVolunteerStore) Create(_ context.Context, v volunteer.Volunteer) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	if _, ok := m.byEmail[v.Email]; ok {
		return 0, storage.ErrDuplicate
	}
	v.ID = m.nextID
	m.nextID++
	m.byEmail[v.Email] = v
	return v.ID, nil
}

func (m *mockVolunteerStore) UpdateProfile(_ context.Context, v volunteer.Volunteer) error {
	if _, ok := m.byEmail[v.Email]; !ok {
		return storage.ErrNotFound
	}
	m.byEmail[v.Email] = v
	return nil
}

// seed stores a volunteer with the given plaintext password.
func (m *mockVolunteerStore) seed(name, email, password string) volunteer.Volunteer {
	v := volunteer.Volunteer{Name: name, Email: email, Phone: "+64 21 555 0101"}
	if err := v.SetPassword(password); err != nil {
		panic(err)
	}
	v.ID = m.nextID
	m.nextID++
	m.byEmail[email] = v
	return v
}

type recordingWelcomer struct {
	sent []string
}

func (r *recordingWelcomer) Welcome(_ context.Context, to, _ string) {
	r.sent = append(r.sent, to)
}

// --- slots ---

type mockSlotStore struct {
	slots     map[string]slot.Slot
	createErr error
	afterGet  func(m *mockSlotStore) // runs between the read and the write
}

func newMockSlotStore(keys ...string) *mockSlotStore {
	m := &mockSlotStore{slots: make(map[string]slot.Slot)}
	for _, k := range keys {
		m.slots[k] = slot.Slot{Key: k}
	}
	return m
}

func (m *mockSlotStore) Get(_ context.Context, key string) (slot.Slot, error) {
	s, ok := m.slots[key]
	if !ok {
		return slot.Slot{}, storage.ErrNotFound
	}
	if m.afterGet != nil {
		m.afterGet(m)
	}
	return s, nil
}

func (m *mockSlotStore) Create(_ context.Context, s slot.Slot) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.slots[s.Key]; ok {
		return storage.ErrDuplicate
	}
	m.slots[s.Key] = s
	return nil
}

func (m *mockSlotStore) SetBookedBy(_ context.Context, key, from, to string) error {
	s, ok := m.slots[key]
	if !ok {
		return storage.ErrNotFound
	}
	if s.BookedBy != from {
		return storage.ErrStale
	}
	s.BookedBy = to
	m.slots[key] = s
	return nil
}

func (m *mockSlotStore) ResetAll(_ context.Context) (int64, error) {
	var n int64
	for k, s := range m.slots {
		if s.BookedBy != "" {
			n++
			s.BookedBy = ""
			m.slots[k] = s
		}
	}
	return n, nil
}

// --- schedule ---

type mockScheduleStore struct {
	configs []schedule.Config
	err     error
}

func (m *mockScheduleStore) Latest(_ context.Context) (schedule.Config, error) {
	if len(m.configs) == 0 {
		return schedule.Config{}, storage.ErrNotFound
	}
	return m.configs[len(m.configs)-1], nil
}

func (m *mockScheduleStore) Reconfigure(_ context.Context, cfg schedule.Config) (schedule.Config, error) {
	if m.err != nil {
		return schedule.Config{}, m.err
	}
	cfg.ID = int64(len(m.configs) + 1)
	m.configs = append(m.configs, cfg)
	return cfg, nil
}

type mockUnavailableStore struct {
	dates map[string]bool
}

func (m *mockUnavailableStore) Add(_ context.Context, d unavailable.UnavailableDate) (bool, error) {
	if m.dates[d.String()] {
		return false, nil
	}
	m.dates[d.String()] = true
	return true, nil
}

func (m *mockUnavailableStore) Remove(_ context.Context, d unavailable.UnavailableDate) (bool, error) {
	if !m.dates[d.String()] {
		return false, nil
	}
	delete(m.dates, d.String())
	return true, nil
}

// --- donations ---

type mockPackageStore struct {
	packages map[string]donation.Package
}

func newMockPackageStore(pkgs ...donation.Package) *mockPackageStore {
	m := &mockPackageStore{packages: make(map[string]donation.Package)}
	for _, p := range pkgs {
		m.packages[p.PackageID] = p
	}
	return m
}

func (m *mockPackageStore) Get(_ context.Context, id string) (donation.Package, error) {
	p, ok := m.packages[id]
	if !ok {
		return donation.Package{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *mockPackageStore) Create(_ context.Context, p donation.Package) (donation.Package, error) {
	if _, ok := m.packages[p.PackageID]; ok {
		return donation.Package{}, storage.ErrDuplicate
	}
	p.ID = int64(len(m.packages) + 1)
	m.packages[p.PackageID] = p
	return p, nil
}

func (m *mockPackageStore) Update(_ context.Context, p donation.Package) error {
	old, ok := m.packages[p.PackageID]
	if !ok {
		return storage.ErrNotFound
	}
	p.ID, p.CreatedAt = old.ID, old.CreatedAt
	m.packages[p.PackageID] = p
	return nil
}

func (m *mockPackageStore) Delete(_ context.Context, id string) error {
	if _, ok := m.packages[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.packages, id)
	return nil
}

func (m *mockPackageStore) Count(_ context.Context) (int, error) {
	return len(m.packages), nil
}

type mockDonationStore struct {
	byTx      map[string]donation.Donation
	createErr error
}

func newMockDonationStore() *mockDonationStore {
	return &mockDonationStore{byTx: make(map[string]donation.Donation)}
}

func (m *mockDonationStore) Create(_ context.Context, d donation.Donation) (donation.Donation, error) {
	if m.createErr != nil {
		return donation.Donation{}, m.createErr
	}
	if _, ok := m.byTx[d.TransactionID]; ok {
		return donation.Donation{}, storage.ErrDuplicate
	}
	d.ID = int64(len(m.byTx) + 1)
	m.byTx[d.TransactionID] = d
	return d, nil
}

func (m *mockDonationStore) Delete(_ context.Context, id int64) error {
	for tx, d := range m.byTx {
		if d.ID == id {
			delete(m.byTx, tx)
			return nil
		}
	}
	return storage.ErrNotFound
}

type recordingReceipter struct {
	sent []donation.Donation
}

func (r *recordingReceipter) Receipt(_ context.Context, d donation.Donation) {
	r.sent = append(r.sent, d)
}

// --- events ---

type mockEventStore struct {
	events map[string]event.Event
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{events: make(map[string]event.Event)}
}

func (m *mockEventStore) Get(_ context.Context, id string) (event.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return event.Event{}, storage.ErrNotFound
	}
	return e, nil
}

func (m *mockEventStore) Create(_ context.Context, e event.Event) error {
	if _, ok := m.events[e.ID]; ok {
		return storage.ErrDuplicate
	}
	m.events[e.ID] = e
	return nil
}

func (m *mockEventStore) Update(_ context.Context, e event.Event) error {
	if _, ok := m.events[e.ID]; !ok {
		return storage.ErrNotFound
	}
	m.events[e.ID] = e
	return nil
}

func (m *mockEventStore) Delete(_ context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
