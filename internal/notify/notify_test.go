package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/internal/platform/config"
	"kycgate/internal/users"
	dErrors "kycgate/pkg/domain-errors"
)

type recordingSender struct {
	to, subject, body string
	err               error
}

func (r *recordingSender) Send(_ context.Context, to, subject, body string) error {
	r.to, r.subject, r.body = to, subject, body
	return r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()
	user := &users.User{UUID: "u-1", Username: "alice", Email: "alice@example.com"}

	t.Run("success email", func(t *testing.T) {
		sender := &recordingSender{}
		n := New(sender, WithLogger(quietLogger()))

		require.NoError(t, n.SendKYCSuccess(ctx, user))
		assert.Equal(t, "alice@example.com", sender.to)
		assert.Contains(t, sender.subject, "approved")
		assert.Contains(t, sender.body, "Hello alice")
	})

	t.Run("failure email", func(t *testing.T) {
		sender := &recordingSender{}
		n := New(sender, WithLogger(quietLogger()))

		require.NoError(t, n.SendKYCFailure(ctx, user))
		assert.Contains(t, sender.subject, "not approved")
	})

	t.Run("invalid address never reaches the sender", func(t *testing.T) {
		sender := &recordingSender{}
		n := New(sender, WithLogger(quietLogger()))

		err := n.SendKYCSuccess(ctx, &users.User{UUID: "u-2", Email: "not-an-email"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Empty(t, sender.to)
	})

	t.Run("sender failure propagates", func(t *testing.T) {
		n := New(&recordingSender{err: errors.New("relay down")}, WithLogger(quietLogger()))
		err := n.SendKYCFailure(ctx, user)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "relay down")
	})
}

func TestSMTPSenderMessage(t *testing.T) {
	s := NewSMTPSender(config.Email{Host: "smtp.example.com", Port: 587, From: "kyc@example.com"})
	var gotAddr string
	var gotMsg []byte
	s.send = func(addr string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotAddr, gotMsg = addr, msg
		return nil
	}

	require.NoError(t, s.Send(context.Background(), "bob@example.com", "Hi", "body"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Contains(t, string(gotMsg), "To: bob@example.com\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\nbody")
}
