package tabledata

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL}, zerolog.New(io.Discard))
	require.NoError(t, err)
	return c
}

func TestFetchPage_OK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_table_data", r.URL.Path)
		assert.Equal(t, "sales", r.URL.Query().Get("table_name"))
		assert.Equal(t, "3", r.URL.Query().Get("page_number"))
		assert.Equal(t, "25", r.URL.Query().Get("records_per_page"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"table_html":"<table></table>","total_pages":7,"page_number":3,"total_records":160}`))
	})

	got, err := c.FetchPage(context.Background(), "sales", 3, 25)
	require.NoError(t, err)
	assert.Equal(t, PageResponse{TableHTML: "<table></table>", TotalPages: 7, PageNumber: 3, TotalRecords: 160}, got)
}

func TestFetchPage_Non2xxIsNetworkFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	})

	_, err := c.FetchPage(context.Background(), "gone", 1, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkFailure)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "not_found")
}

func TestFetchPage_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":            `<html>oops</html>`,
		"missing table_html":  `{"total_pages":2}`,
		"missing total_pages": `{"table_html":"<table></table>"}`,
		"negative pages":      `{"table_html":"","total_pages":-1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := c.FetchPage(context.Background(), "t", 1, 10)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestFetchPage_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url}, zerolog.New(io.Discard))
	require.NoError(t, err)
	_, err = c.FetchPage(context.Background(), "t", 1, 10)
	assert.ErrorIs(t, err, ErrNetworkFailure)
}

func TestFetchPage_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"table_html":"","total_pages":1}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchPage(ctx, "t", 1, 10)
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{}, zerolog.Nop())
	assert.Error(t, err)
	_, err = New(Config{BaseURL: "localhost:8080"}, zerolog.Nop())
	assert.Error(t, err)
	_, err = New(Config{BaseURL: "http://localhost:8080"}, zerolog.Nop())
	assert.NoError(t, err)
}
