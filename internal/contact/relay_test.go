package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRelaySendsJSON(t *testing.T) {
	var got Submission
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	relay := NewHTTPRelay(srv.URL, time.Second)
	err := relay.Send(context.Background(), NewSubmission(Fields{Name: "Ada", Email: "ada@example.com", Message: "Hi"}))
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "Portfolio Contact from Ada", got.Subject)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Hi", got.Message)
}

func TestHTTPRelayPayloadKeys(t *testing.T) {
	var raw map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	}))
	defer srv.Close()

	require.NoError(t, NewHTTPRelay(srv.URL, time.Second).Send(context.Background(), NewSubmission(Fields{Name: "A", Email: "B", Message: "C"})))
	assert.Equal(t, map[string]string{
		"name":     "A",
		"email":    "B",
		"message":  "C",
		"_subject": "Portfolio Contact from A",
	}, raw)
}

func TestHTTPRelayNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewHTTPRelay(srv.URL, time.Second).Send(context.Background(), Submission{})

	var re *RelayError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusUnprocessableEntity, re.StatusCode)
}

func TestHTTPRelayTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewHTTPRelay(url, time.Second).Send(context.Background(), Submission{})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "transport", Category(err))
}

func TestHTTPRelayHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewHTTPRelay(srv.URL, 5*time.Second).Send(ctx, Submission{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFormAgainstRelayServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewForm(NewHTTPRelay(srv.URL, time.Second))
	defer f.Close()
	fill(t, f, "Ada", "ada@example.com", "Hi")

	require.Error(t, f.Submit(context.Background()))
	assert.Equal(t, StatusError, f.Status())
	assert.Equal(t, "Ada", f.Fields().Name)
}

func TestDefaultRelayURL(t *testing.T) {
	assert.Equal(t, DefaultRelayURL, NewHTTPRelay("", time.Second).URL())
}
