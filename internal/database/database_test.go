package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { CloseDB() })
}

func TestAnnouncements(t *testing.T) {
	openTestDB(t)

	has, err := HasAnnouncement("2025-06-15", 42)
	if err != nil {
		t.Fatalf("HasAnnouncement: %v", err)
	}
	if has {
		t.Fatal("expected no announcement in a fresh database")
	}

	if err := InsertAnnouncement("2025-06-15", 42, "Ada Lovelace"); err != nil {
		t.Fatalf("InsertAnnouncement: %v", err)
	}
	// duplicates are ignored
	if err := InsertAnnouncement("2025-06-15", 42, "Ada Lovelace"); err != nil {
		t.Fatalf("InsertAnnouncement duplicate: %v", err)
	}
	if err := InsertAnnouncement("2025-06-16", 42, "Alan Turing"); err != nil {
		t.Fatalf("InsertAnnouncement: %v", err)
	}

	has, err = HasAnnouncement("2025-06-15", 42)
	if err != nil || !has {
		t.Fatalf("HasAnnouncement = %v, %v; want true", has, err)
	}
	has, err = HasAnnouncement("2025-06-15", 7)
	if err != nil || has {
		t.Fatalf("HasAnnouncement other chat = %v, %v; want false", has, err)
	}

	list, err := GetAnnouncementsByChatID(42, 10)
	if err != nil {
		t.Fatalf("GetAnnouncementsByChatID: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d announcements, want 2", len(list))
	}
	if list[0].Name != "Alan Turing" || list[1].Name != "Ada Lovelace" {
		t.Errorf("unexpected order: %+v", list)
	}
}

func TestMetrics(t *testing.T) {
	openTestDB(t)

	v, err := GetMetric("missing")
	if err != nil || v != 0 {
		t.Fatalf("GetMetric(missing) = %v, %v; want 0, nil", v, err)
	}

	if err := SaveMetric("selection_attempts_total", 12); err != nil {
		t.Fatalf("SaveMetric: %v", err)
	}
	if err := SaveMetric("selection_attempts_total", 15); err != nil {
		t.Fatalf("SaveMetric overwrite: %v", err)
	}
	v, err = GetMetric("selection_attempts_total")
	if err != nil || v != 15 {
		t.Fatalf("GetMetric = %v, %v; want 15", v, err)
	}

	if err := SaveMetricWithLabels("requests_total", "result", "cache_hit", 3); err != nil {
		t.Fatalf("SaveMetricWithLabels: %v", err)
	}
	if err := SaveMetricWithLabels("requests_total", "result", "computed", 1); err != nil {
		t.Fatalf("SaveMetricWithLabels: %v", err)
	}

	labeled, err := GetMetricsWithLabels("requests_total")
	if err != nil {
		t.Fatalf("GetMetricsWithLabels: %v", err)
	}
	if labeled["result"]["cache_hit"] != 3 || labeled["result"]["computed"] != 1 {
		t.Errorf("unexpected labeled metrics: %v", labeled)
	}

	if !Enabled() {
		t.Error("Enabled() = false after InitDB")
	}
}
