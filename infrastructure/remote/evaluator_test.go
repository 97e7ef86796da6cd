package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestEvaluator_PostsPayload(t *testing.T) {
	var gotBody string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"status":"ok","message":"3"}`))
	}))
	defer srv.Close()

	e, err := New(srv.URL)
	require.NoError(t, err)

	buf, err := e.Evaluate(context.Background(), nil, `{"tool":"eval","arguments":{"expression":"(+ 1 2)"}}`)
	require.NoError(t, err)
	defer buf.Release()

	assert.Equal(t, `{"status":"ok","message":"3"}`, buf.String())
	assert.Equal(t, `{"tool":"eval","arguments":{"expression":"(+ 1 2)"}}`, gotBody)
	assert.Equal(t, "application/json", gotContentType)
}

func TestEvaluator_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e, err := New(srv.URL)
	require.NoError(t, err)

	_, err = e.Evaluate(context.Background(), nil, "input")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestEvaluator_ResponseSizeBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	e, err := New(srv.URL, WithMaxResponseSize(16))
	require.NoError(t, err)

	buf, err := e.Evaluate(context.Background(), nil, "input")
	require.NoError(t, err)
	defer buf.Release()
	assert.Equal(t, 16, buf.Len())
}

func TestEvaluator_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	e, err := New(srv.URL)
	require.NoError(t, err)

	_, err = e.Evaluate(context.Background(), nil, "input")
	require.Error(t, err)
}
