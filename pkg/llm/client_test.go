package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

func TestChatSendsRequestAndTrimsReply(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  hello there \n"}}]}`))
	}))
	defer srv.Close()

	var observed error = errors.New("unset")
	client := NewClient(Config{APIKey: "key", BaseURL: srv.URL + "/", Observer: func(p, op string, d time.Duration, err error) {
		observed = err
	}})
	reply, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, DefaultTemperature, got.Temperature)
	assert.Len(t, got.Messages, 1)
	assert.NoError(t, observed)
}

func TestChatNon2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Chat(context.Background(), nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	details := appErr.Details.(map[string]interface{})
	assert.Equal(t, http.StatusTooManyRequests, details["upstream_status"])
	assert.Equal(t, "rate limited", details["body"])
}

func TestChatMissingCompletionField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Chat(context.Background(), nil)
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
}

func TestChatTimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}).Chat(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUpstreamDown)
	assert.Equal(t, http.StatusServiceUnavailable, appErrors.FromError(err).Status)
}

func TestEstimateTokens(t *testing.T) {
	assert.Zero(t, EstimateTokens("   "))
	assert.Equal(t, 2, EstimateTokens("hi you"))
	assert.Equal(t, 4, EstimateTokens("abcdefghijklmnop"))
}
