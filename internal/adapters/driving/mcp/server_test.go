package mcp

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RequiresSearch(t *testing.T) {
	for name, ports := range map[string]*Ports{"nil ports": nil, "empty ports": {}} {
		t.Run(name, func(t *testing.T) {
			server, err := NewServer(ports, nil)
			assert.Nil(t, server)
			assert.ErrorIs(t, err, ErrMissingSearchService)
		})
	}
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{Ingest: &mockIngestService{}}).Validate(), ErrMissingSearchService)
	assert.NoError(t, (&Ports{Search: &mockSearchService{}}).Validate())
	assert.NoError(t, (&Ports{
		Search:  &mockSearchService{},
		Ingest:  &mockIngestService{},
		Tags:    &mockTagService{},
		Catalog: &mockCatalogService{},
	}).Validate())
}

func TestServer_HandlerAnswersInitialize(t *testing.T) {
	server := newTestServer(t, &Ports{})
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{` +
		`"protocolVersion":"2025-06-18","capabilities":{},` +
		`"clientInfo":{"name":"test","version":"1"}}}`
	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	server := newTestServer(t, &Ports{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServer_RunHTTPBadAddress(t *testing.T) {
	server := newTestServer(t, &Ports{})
	err := server.RunHTTP(context.Background(), "not-an-address")
	assert.Error(t, err)
}
