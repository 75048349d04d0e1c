package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"shiptrack/internal/core/config"
	"shiptrack/internal/core/server"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uspsResponse = `<?xml version="1.0" encoding="UTF-8"?>
<TrackResponse>
  <TrackInfo ID="9205590164917312751089">
    <Class>First-Class Package Service</Class>
    <StatusCategory>Delivered</StatusCategory>
    <StatusSummary>Your item was delivered.</StatusSummary>
  </TrackInfo>
  <TrackInfo ID="9400111899223197428490">
    <Class>Priority Mail&lt;SUP&gt;&amp;reg;&lt;/SUP&gt;</Class>
    <StatusCategory>In Transit</StatusCategory>
    <StatusSummary>Your item is on its way.</StatusSummary>
    <ExpectedDeliveryDate>March 5, 2099</ExpectedDeliveryDate>
    <OriginCity>PORTLAND</OriginCity>
    <OriginState>OR</OriginState>
  </TrackInfo>
</TrackResponse>`

// newUSPSServer answers every TrackV2 request with uspsResponse.
func newUSPSServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "TrackV2", r.URL.Query().Get("API"))
		_, _ = w.Write([]byte(uspsResponse))
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func writeConfig(t *testing.T, apiBaseURL, extra string) string {
	t.Helper()
	content := fmt.Sprintf(`
log_level: error
zip: 84103
usps:
  apiBaseUrl: %q
  username: "USER123"
  tracking:
    - "9400111899223197428490"
    - "9205590164917312751089"
annotations:
  "9205590164917312751089":
    description: "Books"
%s`, apiBaseURL, extra)

	path := filepath.Join(t.TempDir(), "tracking.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// TestRoot_PrintsReport runs the whole pipeline against a fake USPS endpoint.
func TestRoot_PrintsReport(t *testing.T) {
	srv, hits := newUSPSServer(t)
	path := writeConfig(t, srv.URL, "")

	out, err := execute(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	assert.True(t, strings.HasPrefix(out, "Shiptrack starting...\n\n"))
	assert.NotContains(t, out, "arriving today")

	transit := strings.Index(out, "9400111899223197428490")
	delivered := strings.Index(out, "9205590164917312751089")
	require.NotEqual(t, -1, transit)
	require.NotEqual(t, -1, delivered)
	assert.Less(t, transit, delivered, "dated packages are listed first")

	assert.Contains(t, out, "In Transit      | 9400111899223197428490    | USPS, Priority Mail            | Expected March 5, 2099\n")
	assert.Contains(t, out, "Arriving from PORTLAND, OR\n")
	assert.Contains(t, out, "[Unspecified sender] Books\n")
	assert.Contains(t, out, "Your item was delivered.\n\n")
}

// TestRoot_MissingConfig verifies that a missing file aborts before any request.
func TestRoot_MissingConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

// TestRoot_InvalidTrackingNumber verifies that configured numbers are validated before the request.
func TestRoot_InvalidTrackingNumber(t *testing.T) {
	srv, hits := newUSPSServer(t)
	path := filepath.Join(t.TempDir(), "tracking.yml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`
log_level: error
zip: 84103
usps:
  apiBaseUrl: %q
  username: "USER123"
  tracking: ["94001118</TrackID>"]
`, srv.URL)), 0644))

	_, err := execute(t, "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tracking number")
	assert.Equal(t, int32(0), hits.Load())
}

// TestTrack_AdHocNumbers verifies the track subcommand.
func TestTrack_AdHocNumbers(t *testing.T) {
	srv, _ := newUSPSServer(t)
	path := writeConfig(t, srv.URL, "")

	out, err := execute(t, "--config", path, "track", "--carrier", "USPS", "9400111899223197428490")
	require.NoError(t, err)

	assert.Contains(t, out, "9400111899223197428490")
	assert.NotContains(t, out, "9205590164917312751089", "numbers that were not requested are dropped")
}

// TestTrack_UnsupportedCarrier verifies that unknown carrier names are rejected.
func TestTrack_UnsupportedCarrier(t *testing.T) {
	srv, hits := newUSPSServer(t)
	path := writeConfig(t, srv.URL, "")

	_, err := execute(t, "--config", path, "track", "--carrier", "pigeon", "A1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier not supported")
	assert.Equal(t, int32(0), hits.Load())
}

func TestTrack_RequiresNumbers(t *testing.T) {
	_, err := execute(t, "track")
	assert.Error(t, err)
}

// TestRoot_Cache verifies that a second run is served from Redis unless refreshed.
func TestRoot_Cache(t *testing.T) {
	srv, hits := newUSPSServer(t)
	mr := miniredis.RunT(t)
	path := writeConfig(t, srv.URL, fmt.Sprintf("cache:\n  url: %q\n  ttl: 1m\n", "redis://"+mr.Addr()))

	_, err := execute(t, "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, err = execute(t, "--config", path, "--refresh")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

// TestRoot_CacheUnreachable verifies that a dead cache is skipped.
func TestRoot_CacheUnreachable(t *testing.T) {
	srv, hits := newUSPSServer(t)
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	path := writeConfig(t, srv.URL, fmt.Sprintf("cache:\n  url: %q\n", "redis://"+addr))

	_, err := execute(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// TestServe_StopsOnCancel verifies that serve answers requests and stops with its context.
func TestServe_StopsOnCancel(t *testing.T) {
	port := freePort(t)
	srv := server.New(config.ServerConfig{Port: port})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
