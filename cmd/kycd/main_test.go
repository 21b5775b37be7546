package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "kycgate/internal/jwt_token"
	"kycgate/internal/platform/middleware"
)

func TestTokenCommandMintsVerifiableToken(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "cli-test-key")
	t.Setenv("JWT_ISSUER", "kycgate-test")

	var out bytes.Buffer
	cmd := tokenCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"3f1c2a4e-8d55-4a0e-9a53-2b7f1c9e6d10", "--ttl", "5m"})
	require.NoError(t, cmd.Execute())

	svc := jwttoken.NewJWTService("cli-test-key", "kycgate-test")
	claims, err := svc.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "3f1c2a4e-8d55-4a0e-9a53-2b7f1c9e6d10", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, time.Minute)

	var validator middleware.JWTValidator = jwttoken.NewJWTServiceAdapter(svc)
	adapted, err := validator.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, adapted.UserID)
}

func TestTokenCommandRejectsOtherIssuer(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "cli-test-key")
	t.Setenv("JWT_ISSUER", "someone-else")

	var out bytes.Buffer
	cmd := tokenCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"3f1c2a4e-8d55-4a0e-9a53-2b7f1c9e6d10"})
	require.NoError(t, cmd.Execute())

	_, err := jwttoken.NewJWTService("cli-test-key", "kycgate-test").ValidateToken(strings.TrimSpace(out.String()))
	assert.Error(t, err)
}
