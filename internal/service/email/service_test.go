package email

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-crm/internal/domain/tenant"
)

type captured struct {
	to  string
	msg string
}

func newTestSender(cfg Config, out *captured, err error) *EmailSender {
	e := NewEmailSender(cfg)
	e.deliver = func(to string, msg []byte) error {
		out.to, out.msg = to, string(msg)
		return err
	}
	return e
}

func TestSendInvite(t *testing.T) {
	var got captured
	e := newTestSender(Config{
		Username:  "noreply@storefront.test",
		FromName:  "Storefront",
		AcceptURL: "https://app.storefront.test/invites/accept",
	}, &got, nil)

	require.NoError(t, e.SendInvite("guest@example.com", "Tea & Co", "inv-123", tenant.RoleAdmin))

	assert.Equal(t, "guest@example.com", got.to)
	assert.Contains(t, got.msg, "From: Storefront <noreply@storefront.test>\r\n")
	assert.Contains(t, got.msg, "Subject: You're invited to Tea & Co\r\n")
	assert.Contains(t, got.msg, "<strong>Tea &amp; Co</strong> as admin")
	assert.Contains(t, got.msg, "<code>inv-123</code>")
	assert.Contains(t, got.msg, `href="https://app.storefront.test/invites/accept?token=inv-123"`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(got.msg), "</html>"))
}

func TestSendInvite_WithoutAcceptURL(t *testing.T) {
	var got captured
	e := newTestSender(Config{Username: "noreply@storefront.test"}, &got, nil)

	require.NoError(t, e.SendInvite("guest@example.com", "Shop", "inv-1", tenant.RoleMember))
	assert.NotContains(t, got.msg, "Accept invitation")
}

func TestSend_PropagatesDeliveryError(t *testing.T) {
	var got captured
	e := newTestSender(Config{}, &got, errors.New("relay refused"))

	err := e.Send("a@example.com", "hi", "<p>hi</p>")
	assert.ErrorContains(t, err, "relay refused")
}
