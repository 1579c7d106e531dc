package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-crm/internal/domain/tenant"
	xerrors "storefront-crm/internal/pkg/errors"
)

func TestProvisionMerchant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.ProvisionMerchant(ctx, &tenant.CreateMerchantRequest{
		Email: "  Owner@Example.COM ", Name: "Ada", Phone: "+254700000000",
	})
	require.NoError(t, err)
	assert.True(t, h.db.last().committed)

	assert.Equal(t, "owner@example.com", res.Merchant.Email)
	require.NotNil(t, res.Merchant.Phone)
	assert.Equal(t, res.Merchant.ID, res.Subscription.MerchantID)
	assert.Equal(t, tenant.PlanFree, res.Subscription.Plan)
	assert.Equal(t, tenant.SubscriptionTrialing, res.Subscription.Status)
	require.NotNil(t, res.Subscription.TrialEndsAt)
	assert.Equal(t, h.now.Add(14*24*time.Hour), *res.Subscription.TrialEndsAt)
}

func TestProvisionMerchant_DuplicateEmailRollsBack(t *testing.T) {
	h := newHarness(t)
	h.provision(t, "dup@example.com")

	_, err := h.svc.ProvisionMerchant(context.Background(), &tenant.CreateMerchantRequest{Email: "DUP@example.com", Name: "Again"})
	assert.ErrorIs(t, err, xerrors.ErrConflict)
	assert.True(t, h.db.last().rolledBack)
	assert.False(t, h.db.last().committed)
}

func TestChangePlan(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.provision(t, "plan@example.com")

	sub, err := h.svc.ChangePlan(ctx, m.ID, tenant.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, tenant.SubscriptionActive, sub.Status)
	assert.Nil(t, sub.TrialEndsAt)
	assert.Equal(t, h.now.AddDate(0, 1, 0), sub.CurrentPeriodEnd)

	_, err = h.svc.ChangePlan(ctx, m.ID, tenant.Plan("platinum"))
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCancelSubscription(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.provision(t, "cancel@example.com")

	sub, err := h.svc.CancelSubscription(ctx, m.ID, true)
	require.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, tenant.SubscriptionTrialing, sub.Status)

	sub, err = h.svc.CancelSubscription(ctx, m.ID, false)
	require.NoError(t, err)
	assert.Equal(t, tenant.SubscriptionCanceled, sub.Status)
	require.NotNil(t, sub.CanceledAt)

	_, err = h.svc.CancelSubscription(ctx, m.ID, false)
	assert.ErrorIs(t, err, xerrors.ErrInvalidTransition)
	_, err = h.svc.ChangePlan(ctx, m.ID, tenant.PlanStarter)
	assert.ErrorIs(t, err, xerrors.ErrInvalidTransition)
}

func TestCreateStore_AddsOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.provision(t, "store@example.com")

	store, err := h.svc.CreateStore(ctx, m.ID, &tenant.CreateStoreRequest{
		Name: " Corner Shop ", Subdomain: "Corner-Shop", CustomDomain: "Shop.Example.com",
	})
	require.NoError(t, err)
	assert.True(t, h.db.last().committed)
	assert.Equal(t, "corner-shop", store.Subdomain)
	assert.Equal(t, "Corner Shop", store.Name)
	require.NotNil(t, store.CustomDomain)
	assert.Equal(t, "shop.example.com", *store.CustomDomain)

	owner, err := h.svc.Membership(ctx, store.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.RoleOwner, owner.Role)

	stores, err := h.svc.ListStores(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, stores, 1)
}

func TestCreateStore_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.provision(t, "v@example.com")

	for _, sub := range []string{"ab", "-shop", "shop-", "my--shop", "shop_1", "ünï"} {
		_, err := h.svc.CreateStore(ctx, m.ID, &tenant.CreateStoreRequest{Name: "x", Subdomain: sub})
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput, sub)
	}

	h.openStore(t, m.ID, "taken")
	_, err := h.svc.CreateStore(ctx, m.ID, &tenant.CreateStoreRequest{Name: "x", Subdomain: "TAKEN"})
	var conflict *xerrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "subdomain is already taken", conflict.Error())
}

func TestCreateStore_RequiresLiveSubscription(t *testing.T) {
	h := newHarness(t)
	m := h.provision(t, "expired@example.com")
	h.now = h.now.Add(15 * 24 * time.Hour)

	_, err := h.svc.CreateStore(context.Background(), m.ID, &tenant.CreateStoreRequest{Name: "x", Subdomain: "late"})
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestInviteAndAccept(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.provision(t, "owner@example.com")
	guest := h.provision(t, "guest@example.com")
	store := h.openStore(t, owner.ID, "invites")

	invite, err := h.svc.InviteMember(ctx, store.ID, owner.ID, &tenant.InviteMemberRequest{MerchantID: guest.ID, Role: tenant.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, invite.InviteToken)
	assert.Equal(t, tenant.MemberPending, invite.Status)

	_, err = h.svc.Membership(ctx, store.ID, guest.ID)
	assert.ErrorIs(t, err, xerrors.ErrForbidden, "pending invite grants nothing")

	_, err = h.svc.AcceptInvite(ctx, owner.ID, *invite.InviteToken)
	assert.ErrorIs(t, err, xerrors.ErrForbidden, "token is bound to the invitee")

	accepted, err := h.svc.AcceptInvite(ctx, guest.ID, *invite.InviteToken)
	require.NoError(t, err)
	assert.Equal(t, tenant.MemberAccepted, accepted.Status)
	assert.Nil(t, accepted.InviteToken)

	_, err = h.svc.AcceptInvite(ctx, guest.ID, *invite.InviteToken)
	assert.ErrorIs(t, err, xerrors.ErrNotFound, "tokens are single use")

	m, err := h.svc.Membership(ctx, store.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.RoleAdmin, m.Role)
	assert.True(t, h.redis.Exists("tenant:member:"+store.ID+":"+guest.ID))

	members, err := h.svc.ListMembers(ctx, store.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestInviteMember_Rules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.provision(t, "o@example.com")
	member := h.provision(t, "m@example.com")
	other := h.provision(t, "x@example.com")
	store := h.openStore(t, owner.ID, "rules")

	_, err := h.svc.InviteMember(ctx, store.ID, owner.ID, &tenant.InviteMemberRequest{MerchantID: member.ID, Role: tenant.RoleOwner})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, err = h.svc.InviteMember(ctx, store.ID, owner.ID, &tenant.InviteMemberRequest{MerchantID: "ghost", Role: tenant.RoleMember})
	assert.ErrorIs(t, err, xerrors.ErrInvalidReference)

	invite, err := h.svc.InviteMember(ctx, store.ID, owner.ID, &tenant.InviteMemberRequest{MerchantID: member.ID, Role: tenant.RoleMember})
	require.NoError(t, err)
	_, err = h.svc.AcceptInvite(ctx, member.ID, *invite.InviteToken)
	require.NoError(t, err)

	_, err = h.svc.InviteMember(ctx, store.ID, member.ID, &tenant.InviteMemberRequest{MerchantID: other.ID, Role: tenant.RoleMember})
	assert.ErrorIs(t, err, xerrors.ErrForbidden, "plain members cannot invite")

	_, err = h.svc.InviteMember(ctx, store.ID, owner.ID, &tenant.InviteMemberRequest{MerchantID: member.ID, Role: tenant.RoleAdmin})
	assert.ErrorIs(t, err, xerrors.ErrConflict)
}

type recordingDisconnector struct {
	merchants []string // store/merchant
	stores    []string
}

func (d *recordingDisconnector) DisconnectMerchant(storeID, merchantID, _ string) {
	d.merchants = append(d.merchants, storeID+"/"+merchantID)
}

func (d *recordingDisconnector) DisconnectStore(storeID, _ string) {
	d.stores = append(d.stores, storeID)
}

func TestRemoveMember(t *testing.T) {
	h := newHarness(t)
	sockets := &recordingDisconnector{}
	h.svc.WithDisconnector(sockets)
	ctx := context.Background()
	owner := h.provision(t, "o@example.com")
	member := h.provision(t, "m@example.com")
	store := h.openStore(t, owner.ID, "removal")

	invite, err := h.svc.InviteMember(ctx, store.ID, owner.ID, &tenant.InviteMemberRequest{MerchantID: member.ID, Role: tenant.RoleAdmin})
	require.NoError(t, err)
	_, err = h.svc.AcceptInvite(ctx, member.ID, *invite.InviteToken)
	require.NoError(t, err)
	_, err = h.svc.Membership(ctx, store.ID, member.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.RemoveMember(ctx, store.ID, member.ID, owner.ID), xerrors.ErrForbidden)
	assert.Empty(t, sockets.merchants, "refused removals keep sockets open")

	require.NoError(t, h.svc.RemoveMember(ctx, store.ID, owner.ID, member.ID))
	assert.Equal(t, []string{store.ID + "/" + member.ID}, sockets.merchants)
	assert.Empty(t, sockets.stores)
	assert.False(t, h.redis.Exists("tenant:member:"+store.ID+":"+member.ID))
	_, err = h.svc.Membership(ctx, store.ID, member.ID)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestUpdateAndDeleteStore(t *testing.T) {
	h := newHarness(t)
	sockets := &recordingDisconnector{}
	h.svc.WithDisconnector(sockets)
	ctx := context.Background()
	owner := h.provision(t, "o@example.com")
	store := h.openStore(t, owner.ID, "before")

	name := "Renamed"
	sub := "after"
	updated, err := h.svc.UpdateStore(ctx, store.ID, owner.ID, &tenant.UpdateStoreRequest{Name: &name, Subdomain: &sub})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "after", updated.Subdomain)

	_, err = h.svc.Membership(ctx, store.ID, owner.ID)
	require.NoError(t, err)
	require.NoError(t, h.svc.DeleteStore(ctx, store.ID, owner.ID))
	assert.Empty(t, h.redis.Keys())
	assert.Equal(t, []string{store.ID}, sockets.stores)

	_, err = h.svc.Membership(ctx, store.ID, owner.ID)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
	_, err = h.svc.GetStore(ctx, store.ID)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestMembership_CacheOutageFallsBackToDatabase(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.provision(t, "o@example.com")
	store := h.openStore(t, owner.ID, "outage")
	h.redis.Close()

	m, err := h.svc.Membership(ctx, store.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.RoleOwner, m.Role)
}

func TestCustomers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.svc.CreateCustomer(ctx, "st-a", &tenant.CreateUserRequest{Email: "Buyer@Example.com", Name: "Buyer"})
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", u.Email)

	_, err = h.svc.CreateCustomer(ctx, "st-b", &tenant.CreateUserRequest{Email: "buyer@example.com", Name: "Buyer"})
	assert.NoError(t, err, "same email in another store is allowed")

	_, err = h.svc.CreateCustomer(ctx, "st-a", &tenant.CreateUserRequest{Email: "buyer@example.com", Name: "Again"})
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	_, err = h.svc.GetCustomer(ctx, "st-b", u.ID)
	assert.ErrorIs(t, err, xerrors.ErrNotFound, "customers are scoped to their store")

	list, err := h.svc.ListCustomers(ctx, "st-a")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type sentInvite struct {
	to, store, token string
	role             tenant.Role
}

type fakeMailer struct {
	sent []sentInvite
	err  error
}

func (m *fakeMailer) SendInvite(to, storeName, inviteToken string, role tenant.Role) error {
	m.sent = append(m.sent, sentInvite{to, storeName, inviteToken, role})
	return m.err
}

func TestInviteMember_MailsInvitee(t *testing.T) {
	h := newHarness(t)
	mailer := &fakeMailer{}
	h.svc.WithInviteMailer(mailer)
	ctx := context.Background()
	owner := h.provision(t, "owner@example.com")
	guest := h.provision(t, "guest@example.com")
	store := h.openStore(t, owner.ID, "mailed")

	invite, err := h.svc.InviteMember(ctx, store.ID, owner.ID, &tenant.InviteMemberRequest{MerchantID: guest.ID, Role: tenant.RoleMember})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, sentInvite{"guest@example.com", "Shop", *invite.InviteToken, tenant.RoleMember}, mailer.sent[0])
}

func TestInviteMember_MailFailureKeepsInvite(t *testing.T) {
	h := newHarness(t)
	h.svc.WithInviteMailer(&fakeMailer{err: assert.AnError})
	ctx := context.Background()
	owner := h.provision(t, "owner@example.com")
	guest := h.provision(t, "guest@example.com")
	store := h.openStore(t, owner.ID, "unmailed")

	invite, err := h.svc.InviteMember(ctx, store.ID, owner.ID, &tenant.InviteMemberRequest{MerchantID: guest.ID, Role: tenant.RoleMember})
	require.NoError(t, err)

	_, err = h.svc.AcceptInvite(ctx, guest.ID, *invite.InviteToken)
	assert.NoError(t, err)
}
