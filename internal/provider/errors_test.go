package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status    int
		category  ErrorCategory
		retryable bool
	}{
		{http.StatusUnauthorized, ErrorAuthentication, false},
		{http.StatusTooManyRequests, ErrorRateLimited, true},
		{http.StatusBadGateway, ErrorProviderOutage, true},
		{http.StatusBadRequest, ErrorBadData, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := FromStatus("4stop", "registration", tt.status)
			assert.Equal(t, tt.category, GetCategory(err))
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestFromTransport(t *testing.T) {
	err := FromTransport("4stop", "registration", fmt.Errorf("do: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrorTimeout, GetCategory(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = FromTransport("4stop", "registration", errors.New("connection refused"))
	assert.Equal(t, ErrorProviderOutage, GetCategory(err))
}

func TestGetCategoryWrapped(t *testing.T) {
	pe := NewProviderError(ErrorRejectedRequest, "4stop", "status -1", nil)
	wrapped := fmt.Errorf("applicant a-1: %w", pe)
	assert.Equal(t, ErrorRejectedRequest, GetCategory(wrapped))
	assert.False(t, IsRetryable(wrapped))
	assert.Equal(t, ErrorInternal, GetCategory(errors.New("plain")))
}
