package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthStatusPage(t *testing.T) {
	status := newBotStatus()
	h := &healthServer{status: status}

	rec := httptest.NewRecorder()
	h.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Discord Bot Status: starting", rec.Body.String())

	status.set("running")
	rec = httptest.NewRecorder()
	h.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Discord Bot Status: running", rec.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	status := newBotStatus()
	status.set("running")
	h := &healthServer{status: status}

	tests := []struct {
		name     string
		ping     func(context.Context) error
		code     int
		status   string
		database string
	}{
		{name: "no store yet", code: http.StatusOK, status: "healthy"},
		{name: "store up", ping: func(context.Context) error { return nil }, code: http.StatusOK, status: "healthy", database: "ok"},
		{name: "store down", ping: func(context.Context) error { return errors.New("refused") }, code: http.StatusServiceUnavailable, status: "degraded", database: "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.setPing(tt.ping)

			rec := httptest.NewRecorder()
			h.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, "travis-bott", resp.Service)
			assert.Equal(t, "running", resp.BotStatus)
			assert.Equal(t, tt.database, resp.Database)
		})
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "migrate"}, names)

	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "config", flag.DefValue)
}
