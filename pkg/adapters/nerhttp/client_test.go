package nerhttp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/teevee/pkg/adapters/nerhttp"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Tag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct{ Text string }
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "I'm Maria from Brazil", body.Text)

		_, _ = w.Write([]byte(`{"ents":[{"text":"Maria","label":"PERSON"},{"text":"Brazil","label":"GPE"}]}`))
	}))
	defer srv.Close()

	ents, err := nerhttp.New(srv.URL).Tag(context.Background(), "I'm Maria from Brazil")
	require.NoError(t, err)
	assert.Equal(t, []domain.Entity{
		{Text: "Maria", Label: domain.LabelPerson},
		{Text: "Brazil", Label: "GPE"},
	}, ents)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ents":[]}`))
	}))
	defer srv.Close()

	c := nerhttp.New(srv.URL, nerhttp.WithRetries(3), nerhttp.WithBackoff(time.Millisecond, 2*time.Millisecond))
	ents, err := c.Tag(context.Background(), "hello")
	require.NoError(t, err)
	assert.Empty(t, ents)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := nerhttp.New(srv.URL, nerhttp.WithRetries(1), nerhttp.WithBackoff(time.Millisecond, time.Millisecond))
	_, err := c.Tag(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad text", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := nerhttp.New(srv.URL).Tag(context.Background(), "hello")
	assert.ErrorContains(t, err, "ner service error (400): bad text")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := nerhttp.New(srv.URL).Tag(context.Background(), "hello")
	assert.ErrorContains(t, err, "failed to parse response")
}
