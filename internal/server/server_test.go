package server

import (
	"context"
	"daily-shoutout/internal/metrics"
	"daily-shoutout/internal/shoutout"
	"daily-shoutout/internal/types"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type stubProvider struct {
	record types.Shoutout
	panics bool
	calls  int
}

func (p *stubProvider) DailyShoutout(ctx context.Context) types.Shoutout {
	p.calls++
	if p.panics {
		panic("selector exploded")
	}
	return p.record
}

func newTestServer(p Provider, cache *shoutout.Cache, c Config) (*httptest.Server, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c.Gatherer = reg
	srv := httptest.NewServer(New(p, cache, c, m).Router())
	return srv, m
}

func getBody(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestDailyShoutoutEndpoint(t *testing.T) {
	img := "https://upload.wikimedia.org/ada.jpg"
	p := &stubProvider{record: types.Shoutout{Name: "Ada Lovelace", Description: "An English mathematician", Image: &img}}
	srv, _ := newTestServer(p, nil, Config{})
	defer srv.Close()

	resp, body := getBody(t, srv.URL+"/api/dailyShoutout")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got types.Shoutout
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	if got.Name != "Ada Lovelace" || got.Image == nil || *got.Image != img {
		t.Errorf("got %+v", got)
	}
}

func TestDailyShoutoutNullImage(t *testing.T) {
	p := &stubProvider{record: shoutout.Fallback}
	srv, _ := newTestServer(p, nil, Config{})
	defer srv.Close()

	_, body := getBody(t, srv.URL+"/api/dailyShoutout")

	want := `{"name":"Unknown","description":"Couldn't find a person with an image today","image":null}`
	if body != want {
		t.Errorf("body = %s, want %s", body, want)
	}
}

func TestDailyShoutoutPanicStillReturns200(t *testing.T) {
	p := &stubProvider{panics: true}
	srv, m := newTestServer(p, nil, Config{})
	defer srv.Close()

	resp, body := getBody(t, srv.URL+"/api/dailyShoutout")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	want := `{"name":"Unknown","description":"Failed to fetch data","image":null}`
	if body != want {
		t.Errorf("body = %s, want %s", body, want)
	}
	if v := testutil.ToFloat64(m.Requests.WithLabelValues(metrics.ResultError)); v != 1 {
		t.Errorf("error requests = %v, want 1", v)
	}
}

func TestRateLimit(t *testing.T) {
	p := &stubProvider{record: shoutout.Fallback}
	srv, _ := newTestServer(p, nil, Config{RateLimit: 2})
	defer srv.Close()

	for i := 0; i < 2; i++ {
		if resp, _ := getBody(t, srv.URL+"/api/dailyShoutout"); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, resp.StatusCode)
		}
	}
	if resp, _ := getBody(t, srv.URL+"/api/dailyShoutout"); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2", p.calls)
	}
}

func TestPage(t *testing.T) {
	srv, _ := newTestServer(&stubProvider{}, nil, Config{})
	defer srv.Close()

	resp, body := getBody(t, srv.URL+"/")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		"Shoutout of the Day",
		"Loading...",
		"Learn More",
		`"name":"Error"`,
		`Could not fetch today's shoutout.`,
		"dailyShoutout",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page does not contain %q", want)
		}
	}
}

func TestHealth(t *testing.T) {
	cache := shoutout.NewCache()
	cache.Set("2025-06-15", types.Shoutout{Name: "Grace Hopper"}, time.Now().Add(-2*time.Hour))
	srv, _ := newTestServer(&stubProvider{}, cache, Config{})
	defer srv.Close()

	_, body := getBody(t, srv.URL+"/health")

	var got healthResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "OK" || got.CachedDate != "2025-06-15" || got.CachedName != "Grace Hopper" || got.CachedSince != "2 hours ago" {
		t.Errorf("health = %+v", got)
	}
}

func TestHealthReportsCounters(t *testing.T) {
	srv, m := newTestServer(&stubProvider{}, nil, Config{})
	defer srv.Close()

	m.SelectionAttempts.Add(1234)
	m.ObserveAnnouncement()

	_, body := getBody(t, srv.URL+"/health")

	var got healthResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SelectionAttempts != "1,234" || got.Announcements != "1" {
		t.Errorf("health = %+v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	p := &stubProvider{panics: true}
	srv, _ := newTestServer(p, nil, Config{})
	defer srv.Close()

	getBody(t, srv.URL+"/api/dailyShoutout")
	_, body := getBody(t, srv.URL+"/metrics")

	if !strings.Contains(body, `shoutout_requests_total{result="error"} 1`) {
		t.Errorf("metrics output missing error counter:\n%s", body)
	}
}
