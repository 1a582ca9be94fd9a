package shoutout

import (
	"context"
	"daily-shoutout/internal/metrics"
	"daily-shoutout/internal/wiki"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// flakyWikimedia answers 503 to the first failures requests, then serves one person
func flakyWikimedia(t *testing.T, failures int32) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		q := r.URL.Query()
		switch {
		case strings.HasPrefix(r.URL.Path, "/wiki/Special:EntityData/"):
			w.Write([]byte(`{"entities":{"Q7259":{"id":"Q7259","claims":{"P31":[{"mainsnak":{"snaktype":"value","datavalue":{"value":{"id":"Q5"},"type":"wikibase-entityid"}}}]}}}}`))
		case q.Get("list") == "random":
			w.Write([]byte(`{"query":{"random":[{"id":974,"ns":0,"title":"Ada Lovelace"}]}}`))
		case q.Get("titles") != "":
			w.Write([]byte(`{"query":{"pages":[{"pageid":974,"ns":0,"title":"Ada Lovelace",` +
				`"extract":"Ada Lovelace was born in London in 1815.",` +
				`"thumbnail":{"source":"https://upload.wikimedia.org/ada.jpg","width":240,"height":300},` +
				`"pageprops":{"wikibase_item":"Q7259"}}]}}`))
		default:
			t.Errorf("unexpected request %s", r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestUpstreamOutageDoesNotExhaustAttempts(t *testing.T) {
	srv, hits := flakyWikimedia(t, 10)

	m := metrics.New(prometheus.NewRegistry())
	client := wiki.NewClient(wiki.Config{
		WikipediaURL:   srv.URL,
		WikidataURL:    srv.URL,
		Timeout:        5 * time.Second,
		BreakerTimeout: 20 * time.Millisecond,
	}, m)
	s := NewSelector(client, NewCache(), Config{MaxAttempts: 100, BatchSize: 10}, m)
	s.Now = func() time.Time { return fixedNow }

	got := s.DailyShoutout(context.Background())

	if got == Fallback {
		t.Fatal("outage exhausted the attempt budget, got fallback")
	}
	if got.Name != "Ada Lovelace" || got.Image == nil || *got.Image != "https://upload.wikimedia.org/ada.jpg" {
		t.Errorf("got %+v", got)
	}
	// ten failed batches, then one that reached the recovered upstream
	if v := testutil.ToFloat64(m.SelectionAttempts); v != 11 {
		t.Errorf("attempts = %v, want 11", v)
	}
	if v := testutil.ToFloat64(m.CandidatesRejected.WithLabelValues(metrics.RejectNoBatch)); v != 10 {
		t.Errorf("no_batch rejections = %v, want 10", v)
	}
	if n := atomic.LoadInt32(hits); n != 13 {
		t.Errorf("upstream hits = %d, want 13", n)
	}
	if v := testutil.ToFloat64(m.Requests.WithLabelValues(metrics.ResultComputed)); v != 1 {
		t.Errorf("computed = %v, want 1", v)
	}
}
