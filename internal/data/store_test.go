package data

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hourglass-bot/hourglass/internal/biz/repo"
)

func newTestRepositories(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewRepositories(filepath.Join(t.TempDir(), "hourglass.db"))
	if err != nil {
		t.Fatalf("Failed to open repositories: %v", err)
	}
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestTimezoneRepo_GetUnset(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	tz, err := repos.Timezone.Get(ctx, "nobody")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tz != "" {
		t.Errorf("Expected empty timezone for an unknown user, got %q", tz)
	}
}

func TestTimezoneRepo_SetAndGet(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	if err := repos.Timezone.Set(ctx, "user-1", "America/Chicago"); err != nil {
		t.Fatalf("Failed to set timezone: %v", err)
	}
	tz, err := repos.Timezone.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tz != "America/Chicago" {
		t.Errorf("Expected America/Chicago, got %q", tz)
	}

	// Overwrite replaces, not duplicates.
	if err := repos.Timezone.Set(ctx, "user-1", "Asia/Tokyo"); err != nil {
		t.Fatalf("Failed to overwrite timezone: %v", err)
	}
	tz, err = repos.Timezone.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tz != "Asia/Tokyo" {
		t.Errorf("Expected Asia/Tokyo after overwrite, got %q", tz)
	}
}

func TestGuildRepo_DefaultEnabled(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	enabled, err := repos.Guild.ParsingEnabled(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !enabled {
		t.Error("Expected parsing enabled for a guild with no row")
	}
}

func TestGuildRepo_ToggleRoundTrip(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	enabled, err := repos.Guild.ToggleParsing(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Failed to toggle: %v", err)
	}
	if enabled {
		t.Error("Expected first toggle to disable parsing")
	}

	enabled, err = repos.Guild.ParsingEnabled(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if enabled {
		t.Error("Expected disabled state to persist")
	}

	enabled, err = repos.Guild.ToggleParsing(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Failed to toggle back: %v", err)
	}
	if !enabled {
		t.Error("Expected second toggle to re-enable parsing")
	}
}

func TestGuildRepo_ConcurrentTogglesKeepParity(t *testing.T) {
	repos := newTestRepositories(t)
	repos.db.SetMaxOpenConns(1)
	ctx := context.Background()

	// An even number of toggles must land back on enabled no matter how the
	// writers interleave.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				if _, err := repos.Guild.ToggleParsing(ctx, "guild-1"); err != nil {
					t.Errorf("Failed to toggle: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	enabled, err := repos.Guild.ParsingEnabled(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !enabled {
		t.Error("Expected parsing enabled after an even number of toggles")
	}
}

func TestGuildRepo_TogglesAreIndependent(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	if _, err := repos.Guild.ToggleParsing(ctx, "guild-1"); err != nil {
		t.Fatalf("Failed to toggle: %v", err)
	}
	enabled, err := repos.Guild.ParsingEnabled(ctx, "guild-2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !enabled {
		t.Error("Expected another guild's flag untouched")
	}
}

func TestUsageRepo_Record(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	kinds := []repo.UsageKind{repo.UsageConversion, repo.UsageConversion, repo.UsageTimezone}
	for _, kind := range kinds {
		if err := repos.Usage.Record(ctx, kind); err != nil {
			t.Fatalf("Failed to record usage: %v", err)
		}
	}

	var count int
	row := repos.db.QueryRow(`SELECT COUNT(*) FROM usage WHERE kind = ?`, string(repo.UsageConversion))
	if err := row.Scan(&count); err != nil {
		t.Fatalf("Failed to count usage rows: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 conversion rows, got %d", count)
	}
}
