package tenant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront-crm/internal/domain/tenant"
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

var seq int

func nextID(prefix string) string {
	seq++
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

type fakeMerchants struct{ byID map[string]*tenant.Merchant }

func (f *fakeMerchants) CreateWithTx(_ context.Context, _ pgx.Tx, m *tenant.Merchant) error {
	for _, existing := range f.byID {
		if existing.Email == m.Email {
			return &xerrors.ConflictError{Resource: "merchant", Field: "email", Message: "an account with this email already exists"}
		}
	}
	m.ID = nextID("m")
	f.byID[m.ID] = m
	return nil
}

func (f *fakeMerchants) FindByID(_ context.Context, id string) (*tenant.Merchant, error) {
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeMerchants) FindByEmail(_ context.Context, email string) (*tenant.Merchant, error) {
	for _, m := range f.byID {
		if strings.EqualFold(m.Email, email) {
			return m, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

type fakeSubs struct {
	byMerchant map[string]*tenant.Subscription
}

func (f *fakeSubs) CreateWithTx(_ context.Context, _ pgx.Tx, s *tenant.Subscription) error {
	s.ID = nextID("sub")
	f.byMerchant[s.MerchantID] = s
	return nil
}

func (f *fakeSubs) FindByMerchant(_ context.Context, merchantID string) (*tenant.Subscription, error) {
	if s, ok := f.byMerchant[merchantID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeSubs) Update(_ context.Context, s *tenant.Subscription) error {
	cp := *s
	f.byMerchant[s.MerchantID] = &cp
	return nil
}

type fakeStores struct {
	byID    map[string]*tenant.Store
	members *fakeMembers
}

func (f *fakeStores) CreateWithTx(_ context.Context, _ pgx.Tx, s *tenant.Store) error {
	for _, existing := range f.byID {
		if existing.DeletedAt == nil && existing.Subdomain == s.Subdomain {
			return &xerrors.ConflictError{Resource: "store", Field: "subdomain", Message: "subdomain is already taken"}
		}
	}
	s.ID = nextID("st")
	f.byID[s.ID] = s
	return nil
}

func (f *fakeStores) FindByID(_ context.Context, id string) (*tenant.Store, error) {
	if s, ok := f.byID[id]; ok && s.DeletedAt == nil {
		cp := *s
		return &cp, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeStores) ListForMerchant(_ context.Context, merchantID string) ([]tenant.Store, error) {
	var out []tenant.Store
	for _, m := range f.members.byID {
		if m.MerchantID != merchantID || m.Status != tenant.MemberAccepted {
			continue
		}
		if s, ok := f.byID[m.StoreID]; ok && s.DeletedAt == nil {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStores) Update(_ context.Context, s *tenant.Store) error {
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeStores) SoftDelete(_ context.Context, id string) error {
	s, ok := f.byID[id]
	if !ok || s.DeletedAt != nil {
		return xerrors.ErrNotFound
	}
	now := time.Now()
	s.DeletedAt = &now
	return nil
}

type fakeMembers struct{ byID map[string]*tenant.TeamMember }

func (f *fakeMembers) CreateWithTx(_ context.Context, _ pgx.Tx, m *tenant.TeamMember) error {
	for _, existing := range f.byID {
		if existing.StoreID == m.StoreID && existing.MerchantID == m.MerchantID {
			return &xerrors.ConflictError{Resource: "team_member", Field: "merchant_id"}
		}
	}
	m.ID = nextID("tm")
	m.InvitedAt = time.Now()
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeMembers) FindByStoreAndMerchant(_ context.Context, storeID, merchantID string) (*tenant.TeamMember, error) {
	for _, m := range f.byID {
		if m.StoreID == storeID && m.MerchantID == merchantID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeMembers) FindByInviteToken(_ context.Context, token string) (*tenant.TeamMember, error) {
	for _, m := range f.byID {
		if m.InviteToken != nil && *m.InviteToken == token {
			cp := *m
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeMembers) Accept(_ context.Context, id string, at time.Time) error {
	m, ok := f.byID[id]
	if !ok || m.Status != tenant.MemberPending {
		return xerrors.ErrNotFound
	}
	m.Status = tenant.MemberAccepted
	m.AcceptedAt = &at
	m.InviteToken = nil
	return nil
}

func (f *fakeMembers) Delete(_ context.Context, storeID, id string) error {
	if m, ok := f.byID[id]; !ok || m.StoreID != storeID {
		return xerrors.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeMembers) ListByStore(_ context.Context, storeID string) ([]tenant.TeamMember, error) {
	var out []tenant.TeamMember
	for _, m := range f.byID {
		if m.StoreID == storeID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeUsers struct{ byID map[string]*tenant.User }

func (f *fakeUsers) Create(_ context.Context, u *tenant.User) error {
	for _, existing := range f.byID {
		if existing.StoreID == u.StoreID && existing.Email == u.Email {
			return &xerrors.ConflictError{Resource: "user", Field: "email"}
		}
	}
	u.ID = nextID("u")
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, storeID, id string) (*tenant.User, error) {
	if u, ok := f.byID[id]; ok && u.StoreID == storeID {
		return u, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeUsers) ListByStore(_ context.Context, storeID string) ([]tenant.User, error) {
	var out []tenant.User
	for _, u := range f.byID {
		if u.StoreID == storeID {
			out = append(out, *u)
		}
	}
	return out, nil
}

type harness struct {
	svc       *TenantService
	db        *fakeDB
	merchants *fakeMerchants
	subs      *fakeSubs
	stores    *fakeStores
	members   *fakeMembers
	users     *fakeUsers
	redis     *miniredis.Miniredis
	now       time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := &harness{
		db:        &fakeDB{},
		merchants: &fakeMerchants{byID: map[string]*tenant.Merchant{}},
		subs:      &fakeSubs{byMerchant: map[string]*tenant.Subscription{}},
		members:   &fakeMembers{byID: map[string]*tenant.TeamMember{}},
		users:     &fakeUsers{byID: map[string]*tenant.User{}},
		redis:     mr,
		now:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.stores = &fakeStores{byID: map[string]*tenant.Store{}, members: h.members}

	h.svc = NewTenantService(h.db, h.merchants, h.subs, h.stores, h.members, h.users,
		cache.NewMembershipCache(client, 10*time.Minute), 14*24*time.Hour, zap.NewNop())
	h.svc.now = func() time.Time { return h.now }
	h.svc.newInviteCode = func() string { return nextID("invite") }
	return h
}

// provision creates a merchant with a trial subscription.
func (h *harness) provision(t *testing.T, email string) *tenant.Merchant {
	t.Helper()
	res, err := h.svc.ProvisionMerchant(context.Background(), &tenant.CreateMerchantRequest{Email: email, Name: "Owner"})
	if err != nil {
		t.Fatalf("provision %s: %v", email, err)
	}
	return res.Merchant
}

func (h *harness) openStore(t *testing.T, merchantID, subdomain string) *tenant.Store {
	t.Helper()
	s, err := h.svc.CreateStore(context.Background(), merchantID, &tenant.CreateStoreRequest{Name: "Shop", Subdomain: subdomain})
	if err != nil {
		t.Fatalf("create store %s: %v", subdomain, err)
	}
	return s
}
