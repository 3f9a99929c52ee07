package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/mealrec/internal/config"
)

func authConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Auth.APIKeys = []string{"key-one", "key-two"}
	return cfg
}

func TestAuthService_ValidateAPIKey(t *testing.T) {
	s := NewAuthService(authConfig(), testLogger())

	tests := []struct {
		name    string
		apiKey  string
		wantErr bool
	}{
		{name: "first key", apiKey: "key-one"},
		{name: "second key", apiKey: "key-two"},
		{name: "unknown key", apiKey: "key-three", wantErr: true},
		{name: "empty key", apiKey: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientID, err := s.ValidateAPIKey(tt.apiKey)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAPIKey)
				assert.Equal(t, uuid.Nil, clientID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ClientIDForKey(tt.apiKey), clientID)
		})
	}
}

func TestAuthService_IssueAndValidateToken(t *testing.T) {
	s := NewAuthService(authConfig(), testLogger())

	resp, err := s.IssueToken("key-one")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	claims, err := s.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, ClientIDForKey("key-one"), claims.ClientID)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestAuthService_IssueToken_InvalidKey(t *testing.T) {
	s := NewAuthService(authConfig(), testLogger())

	_, err := s.IssueToken("nope")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	s := NewAuthService(authConfig(), testLogger())
	resp, err := s.IssueToken("key-one")
	require.NoError(t, err)

	otherCfg := authConfig()
	otherCfg.Auth.JWTSecret = "other-secret"
	other := NewAuthService(otherCfg, testLogger())

	expiredCfg := authConfig()
	expiredCfg.Auth.TokenTTL = -time.Hour
	expired, err := NewAuthService(expiredCfg, testLogger()).IssueToken("key-one")
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.Token)
	assert.Error(t, err, "token signed with another secret")

	_, err = s.ValidateToken(resp.Token + "x")
	assert.Error(t, err, "tampered token")

	_, err = s.ValidateToken(expired.Token)
	assert.Error(t, err, "expired token")

	_, err = s.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestAuthService_NoSecret(t *testing.T) {
	cfg := authConfig()
	cfg.Auth.JWTSecret = ""
	s := NewAuthService(cfg, testLogger())

	_, err := s.IssueToken("key-one")
	assert.ErrorIs(t, err, ErrNoJWTSecret)

	_, err = s.ValidateToken("anything")
	assert.ErrorIs(t, err, ErrNoJWTSecret)
}
