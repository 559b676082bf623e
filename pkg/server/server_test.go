package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/vecmath/pkg/analysis"
	"github.com/oxygene76/vecmath/pkg/utils"
)

type vectorBody struct {
	Vector []float64 `json:"vector"`
	NaN    bool      `json:"nan"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(utils.DefaultConfig(), log.NewNopLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string, out interface{}) int {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func requireVector(t *testing.T, want []float64, got vectorBody) {
	t.Helper()
	require.False(t, got.NaN)
	require.Len(t, got.Vector, 3)
	for i := range want {
		require.InDelta(t, want[i], got.Vector[i], 1e-5)
	}
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "z", body["up"])
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSpherical(t *testing.T) {
	srv := newTestServer(t)
	body := `{"r": 2, "theta": 1.5707963267948966, "phi": 0}`

	var got vectorBody
	require.Equal(t, http.StatusOK, post(t, srv, "/api/v1/spherical", body, &got))
	requireVector(t, []float64{2, 0, 0}, got)

	got = vectorBody{}
	require.Equal(t, http.StatusOK, post(t, srv, "/api/v1/spherical/y", body, &got))
	requireVector(t, []float64{0, 0, 2}, got)

	var errBody map[string]string
	require.Equal(t, http.StatusBadRequest, post(t, srv, "/api/v1/spherical/w", body, &errBody))
	require.Contains(t, errBody["error"], "invalid enum value")
}

func TestCartesian(t *testing.T) {
	srv := newTestServer(t)

	var got struct {
		Theta *float64 `json:"theta"`
		Phi   *float64 `json:"phi"`
		NaN   bool     `json:"nan"`
	}
	require.Equal(t, http.StatusOK, post(t, srv, "/api/v1/cartesian", `{"vector": [0, 0, 3]}`, &got))
	require.NotNil(t, got.Theta)
	require.InDelta(t, 0, *got.Theta, 1e-5)
	require.False(t, got.NaN)

	got.Theta, got.Phi = nil, nil
	require.Equal(t, http.StatusOK, post(t, srv, "/api/v1/cartesian", `{"vector": [0, 0, 0]}`, &got))
	require.True(t, got.NaN)
	require.Nil(t, got.Theta)
}

func TestRotateAndReflect(t *testing.T) {
	srv := newTestServer(t)

	var got vectorBody
	require.Equal(t, http.StatusOK, post(t, srv, "/api/v1/rotate",
		`{"vector": [1, 0, 0], "theta": 1.5707963267948966, "phi": 0}`, &got))
	requireVector(t, []float64{0, 1, 0}, got)

	got = vectorBody{}
	require.Equal(t, http.StatusOK, post(t, srv, "/api/v1/reflect",
		`{"vector": [0, -1, 0], "normal": [0, 1, 0]}`, &got))
	requireVector(t, []float64{0, -1, 0}, got)
}

func TestFrame(t *testing.T) {
	srv := newTestServer(t)

	var got struct {
		Tangent  vectorBody `json:"tangent"`
		Binormal vectorBody `json:"binormal"`
	}
	require.Equal(t, http.StatusOK, post(t, srv, "/api/v1/frame", `{"normal": [-5, 0, 0]}`, &got))
	requireVector(t, []float64{0, -1, 0}, got.Tangent)
	requireVector(t, []float64{0, 0, 5}, got.Binormal)
}

func TestNormalizeZero(t *testing.T) {
	srv := newTestServer(t)

	var got struct {
		Vector []float64 `json:"vector"`
		Length *float64  `json:"length"`
		NaN    bool      `json:"nan"`
	}
	require.Equal(t, http.StatusOK, post(t, srv, "/api/v1/normalize", `{"vector": [0, 0, 0]}`, &got))
	require.True(t, got.NaN)
	require.Nil(t, got.Vector)
	require.NotNil(t, got.Length)
	require.Zero(t, *got.Length)

	require.Equal(t, http.StatusOK, post(t, srv, "/api/v1/normalize", `{"vector": [3, 0, 4]}`, &got))
	require.False(t, got.NaN)
	require.InDelta(t, 5, *got.Length, 1e-5)
	require.InDelta(t, 0.6, got.Vector[0], 1e-5)
}

func TestBadRequest(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusBadRequest, post(t, srv, "/api/v1/rotate", `{"vector": `, nil))
}

func TestRejectsWrongVectorLength(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"vector": [3, 4]}`,
		`{"vector": [3, 4, 0, 99]}`,
		`{"vector": []}`,
	} {
		var errBody map[string]string
		require.Equal(t, http.StatusBadRequest, post(t, srv, "/api/v1/normalize", body, &errBody), body)
		require.Contains(t, errBody["error"], "exactly 3 components", body)
	}

	require.Equal(t, http.StatusBadRequest, post(t, srv, "/api/v1/reflect",
		`{"vector": [1, 0, 0], "normal": [0, 1]}`, nil))
	require.Equal(t, http.StatusBadRequest, post(t, srv, "/api/v1/frame", `{"normal": [0, 0, 1, 1]}`, nil))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/rotate", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORSDisabled(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.Server.CORS = false
	srv := httptest.NewServer(New(cfg, log.NewNopLogger()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/status")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/rotate", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSample(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/sample?count=50&seed=3")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report analysis.FrameReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Equal(t, 50, report.Samples)
	require.Equal(t, int64(3), report.Seed)
	require.Equal(t, utils.DefaultConfig().Math.Epsilon, report.Tolerance)
	require.Zero(t, report.OutOfTolerance)

	for _, q := range []string{
		"count=abc", "count=5abc", "count=0", "count=1000000", "count=2.5",
		"seed=x", "seed=7x", "tolerance=0", "tolerance=-1", "tolerance=abc",
	} {
		resp, err := http.Get(srv.URL + "/api/v1/sample?" + q)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestSampleTolerance(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/sample?count=20&seed=3&tolerance=0.5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report analysis.FrameReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Equal(t, 0.5, report.Tolerance)
	require.Zero(t, report.OutOfTolerance)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestStartStopsOnCancel(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.Server.Port = freePort(t)
	s := New(cfg, log.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/status", cfg.Server.Port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
