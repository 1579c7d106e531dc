package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Issuer: "storefront-crm", Audience: "storefront-merchants", TTL: time.Hour, KID: "test"}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return Build(testConfig(), priv, &priv.PublicKey)
}

func TestGenerateAndVerify(t *testing.T) {
	m := newTestManager(t)

	token, jti, err := m.Generator.GenerateAccessToken("01HMERCHANT", "owner@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := m.Verifier.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "01HMERCHANT", claims.MerchantID)
	assert.Equal(t, "01HMERCHANT", claims.Subject)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, jti, claims.ID)
}

func TestVerify_RejectsForeignIssuerAndKey(t *testing.T) {
	m := newTestManager(t)
	token, _, err := m.Generator.GenerateAccessToken("m1", "")
	require.NoError(t, err)

	other := newTestManager(t)
	_, err = other.Verifier.Verify(token)
	assert.Error(t, err, "signature from another key")

	wrongIssuer := NewVerifier(m.Verifier.pub, "someone-else", "storefront-merchants")
	_, err = wrongIssuer.Verify(token)
	assert.ErrorContains(t, err, "invalid issuer")

	wrongAudience := NewVerifier(m.Verifier.pub, "storefront-crm", "admins")
	_, err = wrongAudience.Verify(token)
	assert.ErrorContains(t, err, "invalid audience")
}

func TestVerify_Expired(t *testing.T) {
	m := newTestManager(t)
	token, _, err := m.Generator.Generate("m1", "", PurposeAccess, time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = m.Verifier.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_Purpose(t *testing.T) {
	m := newTestManager(t)

	cli, _, err := m.Generator.Generate("m1", "", PurposeCLI, time.Minute)
	require.NoError(t, err)
	_, err = m.Verifier.VerifyAccessToken(cli)
	assert.NoError(t, err)

	other, _, err := m.Generator.Generate("m1", "", "invite", time.Minute)
	require.NoError(t, err)
	_, err = m.Verifier.VerifyAccessToken(other)
	assert.ErrorContains(t, err, "cannot be used for access")
}

func TestGenerate_RequiresSubject(t *testing.T) {
	m := newTestManager(t)
	_, _, err := m.Generator.GenerateAccessToken("", "")
	assert.Error(t, err)
}

func TestLoadAndBuild(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "jwt_private.pem")
	pubPath := filepath.Join(dir, "jwt_public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o644))

	cfg := testConfig()
	cfg.PrivPath, cfg.PubPath = privPath, pubPath
	m, err := LoadAndBuild(cfg)
	require.NoError(t, err)

	token, _, err := m.Generator.GenerateAccessToken("m1", "")
	require.NoError(t, err)
	_, err = m.Verifier.VerifyAccessToken(token)
	assert.NoError(t, err)

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0o600))
	_, err = LoadRSAPrivateKeyFromPEM(garbage)
	assert.Error(t, err)
}
