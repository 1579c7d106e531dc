package crm

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront-crm/internal/domain/crm"
	wstypes "storefront-crm/internal/domain/websocket"
	"storefront-crm/internal/pkg/cache"
	xerrors "storefront-crm/internal/pkg/errors"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error { t.committed = true; return nil }

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct{ txs []*fakeTx }

func (d *fakeDB) BeginTx(context.Context) (pgx.Tx, error) {
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

func (d *fakeDB) last() *fakeTx { return d.txs[len(d.txs)-1] }

// memory is a single store's CRM tables. Records are copied in and out so
// callers can never mutate stored state through a returned pointer.
type memory struct {
	clock      func() time.Time
	seq        int
	contacts   map[string]crm.Contact
	leads      map[string]crm.Lead
	deals      map[string]crm.Deal
	activities []crm.Activity
}

func newMemory(clock func() time.Time) *memory {
	return &memory{
		clock:    clock,
		contacts: map[string]crm.Contact{},
		leads:    map[string]crm.Lead{},
		deals:    map[string]crm.Deal{},
	}
}

func (m *memory) id(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%03d", prefix, m.seq)
}

func (m *memory) live(storeID, contactID string) bool {
	c, ok := m.contacts[contactID]
	return ok && c.StoreID == storeID && c.DeletedAt == nil
}

type fakeContacts struct{ *memory }

func (f fakeContacts) Create(_ context.Context, c *crm.Contact) error {
	for _, existing := range f.contacts {
		if existing.StoreID == c.StoreID && existing.Email == c.Email && existing.DeletedAt == nil {
			return &xerrors.ConflictError{Resource: "contact", Field: "email", Message: "a contact with this email already exists"}
		}
	}
	c.ID = f.id("c")
	c.CreatedAt, c.UpdatedAt = f.clock(), f.clock()
	f.contacts[c.ID] = *c
	return nil
}

func (f fakeContacts) FindByID(_ context.Context, storeID, id string) (*crm.Contact, error) {
	if !f.live(storeID, id) {
		return nil, xerrors.ErrNotFound
	}
	c := f.contacts[id]
	return &c, nil
}

func (f fakeContacts) ListByStore(_ context.Context, storeID string) ([]crm.Contact, error) {
	var out []crm.Contact
	for id, c := range f.contacts {
		if f.live(storeID, id) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeContacts) Update(_ context.Context, c *crm.Contact) error {
	if !f.live(c.StoreID, c.ID) {
		return xerrors.ErrNotFound
	}
	f.contacts[c.ID] = *c
	return nil
}

func (f fakeContacts) SoftDeleteWithTx(_ context.Context, _ pgx.Tx, storeID, id string) error {
	if !f.live(storeID, id) {
		return xerrors.ErrNotFound
	}
	c := f.contacts[id]
	now := f.clock()
	c.DeletedAt = &now
	f.contacts[id] = c
	return nil
}

type fakeLeads struct{ *memory }

func (f fakeLeads) visible(storeID string, l crm.Lead) bool {
	return l.StoreID == storeID && l.DeletedAt == nil && f.live(storeID, l.ContactID)
}

func (f fakeLeads) Create(_ context.Context, l *crm.Lead) error {
	for _, existing := range f.leads {
		if f.visible(l.StoreID, existing) && existing.ContactID == l.ContactID {
			return &xerrors.ConflictError{Resource: "lead", Field: "contact", Message: "this contact already has a lead"}
		}
	}
	l.ID = f.id("l")
	l.CreatedAt, l.UpdatedAt = f.clock(), f.clock()
	f.leads[l.ID] = *l
	return nil
}

func (f fakeLeads) FindByID(_ context.Context, storeID, id string) (*crm.Lead, error) {
	l, ok := f.leads[id]
	if !ok || !f.visible(storeID, l) {
		return nil, xerrors.ErrNotFound
	}
	return &l, nil
}

func (f fakeLeads) ListByStore(_ context.Context, storeID string) ([]crm.Lead, error) {
	var out []crm.Lead
	for _, l := range f.leads {
		if f.visible(storeID, l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f fakeLeads) ListByContact(_ context.Context, storeID, contactID string) ([]crm.Lead, error) {
	var out []crm.Lead
	for _, l := range f.leads {
		if f.visible(storeID, l) && l.ContactID == contactID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f fakeLeads) update(storeID, id string, fn func(*crm.Lead) bool) error {
	l, ok := f.leads[id]
	if !ok || !f.visible(storeID, l) || !fn(&l) {
		return xerrors.ErrNotFound
	}
	l.UpdatedAt = f.clock()
	f.leads[id] = l
	return nil
}

func (f fakeLeads) UpdateStatus(_ context.Context, storeID, id string, status crm.LeadStatus) error {
	return f.update(storeID, id, func(l *crm.Lead) bool { l.Status = status; return true })
}

func (f fakeLeads) UpdateScore(_ context.Context, storeID, id string, score int) error {
	return f.update(storeID, id, func(l *crm.Lead) bool { l.Score = score; return true })
}

func (f fakeLeads) MarkContactedWithTx(_ context.Context, _ pgx.Tx, storeID, id string, at time.Time) error {
	return f.update(storeID, id, func(l *crm.Lead) bool {
		l.LastContactedAt = &at
		if l.Status == crm.LeadStatusNew {
			l.Status = crm.LeadStatusContacted
		}
		return true
	})
}

func (f fakeLeads) MarkConvertedWithTx(_ context.Context, _ pgx.Tx, storeID, id, dealID string, at time.Time) error {
	return f.update(storeID, id, func(l *crm.Lead) bool {
		if l.Status != crm.LeadStatusQualified {
			return false
		}
		l.Status = crm.LeadStatusConverted
		l.ConvertedToDealID = &dealID
		l.ConvertedAt = &at
		return true
	})
}

func (f fakeLeads) SoftDeleteByContactWithTx(_ context.Context, _ pgx.Tx, storeID, contactID string) error {
	now := f.clock()
	for id, l := range f.leads {
		if l.StoreID == storeID && l.ContactID == contactID && l.DeletedAt == nil {
			l.DeletedAt = &now
			f.leads[id] = l
		}
	}
	return nil
}

type fakeDeals struct{ *memory }

func (f fakeDeals) visible(storeID string, d crm.Deal) bool {
	return d.StoreID == storeID && d.DeletedAt == nil && f.live(storeID, d.ContactID)
}

func (f fakeDeals) CreateWithTx(_ context.Context, _ pgx.Tx, d *crm.Deal) error {
	d.ID = f.id("d")
	d.CreatedAt, d.UpdatedAt = f.clock(), f.clock()
	f.deals[d.ID] = *d
	return nil
}

func (f fakeDeals) FindByID(_ context.Context, storeID, id string) (*crm.Deal, error) {
	d, ok := f.deals[id]
	if !ok || !f.visible(storeID, d) {
		return nil, xerrors.ErrNotFound
	}
	return &d, nil
}

func (f fakeDeals) ListByStore(_ context.Context, storeID string) ([]crm.Deal, error) {
	var out []crm.Deal
	for _, d := range f.deals {
		if f.visible(storeID, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f fakeDeals) ListByContact(_ context.Context, storeID, contactID string) ([]crm.Deal, error) {
	var out []crm.Deal
	for _, d := range f.deals {
		if f.visible(storeID, d) && d.ContactID == contactID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f fakeDeals) UpdateStageWithTx(_ context.Context, _ pgx.Tx, d *crm.Deal) error {
	stored, ok := f.deals[d.ID]
	if !ok || !f.visible(d.StoreID, stored) || stored.Stage.IsTerminal() {
		return xerrors.ErrNotFound
	}
	stored.Stage = d.Stage
	stored.Probability = d.Probability
	stored.ClosedAt = d.ClosedAt
	stored.LostReason = d.LostReason
	stored.UpdatedAt = f.clock()
	f.deals[d.ID] = stored
	return nil
}

func (f fakeDeals) SoftDeleteByContactWithTx(_ context.Context, _ pgx.Tx, storeID, contactID string) error {
	now := f.clock()
	for id, d := range f.deals {
		if d.StoreID == storeID && d.ContactID == contactID && d.DeletedAt == nil {
			d.DeletedAt = &now
			f.deals[id] = d
		}
	}
	return nil
}

type fakeActivities struct{ *memory }

func (f fakeActivities) CreateWithTx(_ context.Context, _ pgx.Tx, a *crm.Activity) error {
	a.ID = f.id("a")
	a.CreatedAt = f.clock()
	f.activities = append(f.activities, *a)
	return nil
}

func (f fakeActivities) ListByStore(_ context.Context, storeID string) ([]crm.Activity, error) {
	var out []crm.Activity
	for _, a := range f.activities {
		if f.live(storeID, a.ContactID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f fakeActivities) ListByContact(_ context.Context, storeID, contactID string) ([]crm.Activity, error) {
	var out []crm.Activity
	for _, a := range f.activities {
		if a.ContactID == contactID && f.live(storeID, a.ContactID) {
			out = append(out, a)
		}
	}
	return out, nil
}

type published struct {
	StoreID string
	Channel wstypes.ChannelType
	Event   wstypes.EventType
	Data    interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(storeID string, channel wstypes.ChannelType, event wstypes.EventType, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{storeID, channel, event, data})
}

func (p *recordingPublisher) of(event wstypes.EventType) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

const storeID = "store-1"

type harness struct {
	svc    *CRMService
	db     *fakeDB
	mem    *memory
	stats  *cache.StatsCache
	redis  *miniredis.Miniredis
	events *recordingPublisher
	now    time.Time
}

// tick advances the fake clock so activities get distinct timestamps.
func (h *harness) tick() { h.now = h.now.Add(time.Minute) }

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := &harness{
		db:     &fakeDB{},
		redis:  mr,
		stats:  cache.NewStatsCache(client, time.Minute),
		events: &recordingPublisher{},
		now:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	h.mem = newMemory(func() time.Time { return h.now })
	h.svc = NewCRMService(h.db,
		fakeContacts{h.mem}, fakeLeads{h.mem}, fakeDeals{h.mem}, fakeActivities{h.mem},
		h.stats, h.events, zap.NewNop())
	h.svc.now = func() time.Time { return h.now }
	return h
}

func (h *harness) contact(t *testing.T, email string) *crm.Contact {
	t.Helper()
	c, err := h.svc.CreateContact(context.Background(), storeID, &crm.CreateContactRequest{Name: "Ada " + email, Email: email})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	h.tick()
	return c
}

func (h *harness) lead(t *testing.T, contactID string, score int, value float64) *crm.Lead {
	t.Helper()
	l, err := h.svc.CreateLead(context.Background(), storeID, &crm.CreateLeadRequest{
		ContactID: contactID, Score: score, EstimatedValue: value, AssignedTo: "rep-1",
	})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}
	h.tick()
	return l
}
