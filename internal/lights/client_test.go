package lights

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestMain(m *testing.M) {
	log.Logger = zerolog.Nop()
	os.Exit(m.Run())
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultOrigin {
		t.Fatalf("host = %q, want %q", u.Host, defaultOrigin)
	}

	u, err = parseBaseURL("https://lamp.local:8443/ui/index.html?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "https://lamp.local:8443" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL(http://) returned nil error, want missing host")
	}
}

func TestClient_FetchSettingsDecodesPayload(t *testing.T) {
	t.Parallel()

	var gotPath, gotMethod, gotUserAgent, gotRequestID, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get(requestIDHeader)
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"intensity_mode":"HIGH","current_preset":"rainbow","all_presets":["rainbow","solid","fade"],"dimmer":0.5}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	s, err := c.FetchSettings(ctx)
	if err != nil {
		t.Fatalf("FetchSettings returned error: %v", err)
	}
	if gotMethod != http.MethodGet || gotPath != "/settings" {
		t.Fatalf("request = %s %s, want GET /settings", gotMethod, gotPath)
	}
	if !strings.HasPrefix(gotUserAgent, "lumen/") {
		t.Fatalf("User-Agent = %q, want lumen/*", gotUserAgent)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-ID header missing")
	}
	if gotAccept != "application/json" {
		t.Fatalf("Accept = %q, want application/json", gotAccept)
	}

	if mode, ok := s.Mode(); !ok || mode != "HIGH" {
		t.Fatalf("Mode() = %q,%v want HIGH,true", mode, ok)
	}
	if preset, ok := s.Preset(); !ok || preset != "rainbow" {
		t.Fatalf("Preset() = %q,%v want rainbow,true", preset, ok)
	}
	presets, ok := s.Presets()
	if !ok || strings.Join(presets, ",") != "rainbow,solid,fade" {
		t.Fatalf("Presets() = %v,%v want [rainbow solid fade],true", presets, ok)
	}
	if level, ok := s.DimmerLevel(); !ok || level != 0.5 {
		t.Fatalf("DimmerLevel() = %v,%v want 0.5,true", level, ok)
	}
}

func TestClient_FetchSettingsPartialPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"all_presets":["solid"]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	s, err := c.FetchSettings(context.Background())
	if err != nil {
		t.Fatalf("FetchSettings returned error: %v", err)
	}
	if s.Has(KeyIntensityMode) || s.Has(KeyCurrentPreset) || s.Has(KeyDimmer) {
		t.Fatalf("absent fields reported as present: %+v", s)
	}
	if _, ok := s.Presets(); !ok {
		t.Fatalf("all_presets not reported")
	}
}

func TestClient_FetchSettingsErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		handler   http.HandlerFunc
		wantParse bool
		wantNet   bool
		wantText  string
	}{
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not-json"))
			},
			wantParse: true,
			wantText:  "decode settings",
		},
		{
			name: "dimmer out of range",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"dimmer":1.5}`))
			},
			wantParse: true,
			wantText:  "outside [0,1]",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusInternalServerError)
			},
			wantNet:  true,
			wantText: "returned status 500",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			c, err := NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			_, err = c.FetchSettings(context.Background())
			if err == nil {
				t.Fatalf("FetchSettings returned nil error")
			}
			if IsParse(err) != tc.wantParse || IsNetwork(err) != tc.wantNet {
				t.Fatalf("error kind = parse:%v network:%v, want parse:%v network:%v (%v)",
					IsParse(err), IsNetwork(err), tc.wantParse, tc.wantNet, err)
			}
			if !strings.Contains(err.Error(), tc.wantText) {
				t.Fatalf("error = %q, want it to mention %q", err.Error(), tc.wantText)
			}
		})
	}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	c, err := NewClient(addr, WithTimeout(500*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchSettings(context.Background())
	if !IsNetwork(err) {
		t.Fatalf("FetchSettings error = %v, want NetworkError", err)
	}
	if err := c.WriteSettings(context.Background(), SetDimmer(0.3)); !IsNetwork(err) {
		t.Fatalf("WriteSettings error = %v, want NetworkError", err)
	}
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchSettings(context.Background())
	if !IsNetwork(err) {
		t.Fatalf("FetchSettings error = %v, want NetworkError on timeout", err)
	}
}

func TestClient_WriteSettingsSendsOnlyIncludedKeys(t *testing.T) {
	t.Parallel()

	var (
		mu          sync.Mutex
		gotBody     map[string]any
		gotType     string
		gotMethod   string
		requestSeen int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requestSeen++
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotBody = nil
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.WriteSettings(context.Background(), SetDimmer(0.8)); err != nil {
		t.Fatalf("WriteSettings returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotMethod != http.MethodPost {
		t.Fatalf("method = %s, want POST", gotMethod)
	}
	if gotType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotType)
	}
	if len(gotBody) != 1 || gotBody["dimmer"] != 0.8 {
		t.Fatalf("body = %v, want {dimmer:0.8}", gotBody)
	}
	if requestSeen != 1 {
		t.Fatalf("requests = %d, want 1", requestSeen)
	}
}

func TestClient_WriteSettingsFormEncoding(t *testing.T) {
	t.Parallel()

	var gotForm url.Values
	var gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(raw))
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithFormEncoding())
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.WriteSettings(context.Background(), SetPreset("rainbow")); err != nil {
		t.Fatalf("WriteSettings returned error: %v", err)
	}
	if gotType != "application/x-www-form-urlencoded" {
		t.Fatalf("Content-Type = %q, want form encoding", gotType)
	}
	if gotForm.Get("current_preset") != "rainbow" || len(gotForm) != 1 {
		t.Fatalf("form = %v, want current_preset=rainbow only", gotForm)
	}
}

func TestClient_WriteSettingsRejectsInvalidUpdate(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.WriteSettings(context.Background(), Update{}); err == nil {
		t.Fatalf("WriteSettings(empty) returned nil error")
	}
	if err := c.WriteSettings(context.Background(), SetDimmer(-0.1)); err == nil {
		t.Fatalf("WriteSettings(dimmer=-0.1) returned nil error")
	}
}

func TestClient_WriteSettingsNon2xx(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad preset", http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	err = c.WriteSettings(context.Background(), SetPreset("nope"))
	if !IsNetwork(err) || !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("WriteSettings error = %v, want NetworkError with status 400", err)
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithRateLimit(1))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchSettings(context.Background()); err != nil {
		t.Fatalf("first FetchSettings returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := c.FetchSettings(ctx); !IsNetwork(err) {
		t.Fatalf("rate limited FetchSettings error = %v, want NetworkError", err)
	}
}

func TestNewClient_TimeoutDoesNotModifyCallerClient(t *testing.T) {
	for _, order := range []string{"timeout first", "client first"} {
		t.Run(order, func(t *testing.T) {
			hc := &http.Client{Timeout: time.Minute}
			opts := []Option{WithHTTPClient(hc), WithTimeout(2 * time.Second)}
			if order == "timeout first" {
				opts[0], opts[1] = opts[1], opts[0]
			}

			c, err := NewClient("localhost:8000", opts...)
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			if hc.Timeout != time.Minute {
				t.Fatalf("caller client timeout = %v, want it untouched", hc.Timeout)
			}
			if c.http.Timeout != 2*time.Second {
				t.Fatalf("client timeout = %v, want 2s", c.http.Timeout)
			}
		})
	}

	c, err := NewClient("localhost:8000", WithHTTPClient(&http.Client{Timeout: time.Minute}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.http.Timeout != time.Minute {
		t.Fatalf("timeout without WithTimeout = %v, want the caller's", c.http.Timeout)
	}
}
