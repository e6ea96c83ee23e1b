package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dtnitsch/assets-writer/models"
	"github.com/google/go-cmp/cmp"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func testEmit(id, outputPath string, createdAt time.Time) models.EmitRecord {
	return models.EmitRecord{
		EmitID:         id,
		CreatedAt:      createdAt,
		OutputPath:     outputPath,
		Mode:           models.OutputModeFull,
		PublicPath:     "/static/",
		BuildHash:      "abc123",
		AssetCount:     4,
		ManifestChunks: []string{"manifest", "manifest-admin"},
		ContentHash:    "deadbeef",
		SizeBytes:      512,
	}
}

func TestInsertAndGetEmit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	created := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	want := testEmit("emit-1", "build/assets.json", created)

	if err := db.InsertEmit(want); err != nil {
		t.Fatalf("InsertEmit() error = %v", err)
	}

	got, err := db.GetEmit("emit-1")
	if err != nil {
		t.Fatalf("GetEmit() error = %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	got.CreatedAt = want.CreatedAt
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetEmit() mismatch (-want +got):\n%s", diff)
	}

	if err := db.InsertEmit(want); err == nil {
		t.Error("InsertEmit() expected error for duplicate id")
	}
}

func TestGetEmitNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetEmit("nope"); !errors.Is(err, ErrEmitNotFound) {
		t.Errorf("GetEmit() error = %v, want ErrEmitNotFound", err)
	}
	if _, err := db.LatestEmit("build/assets.json"); !errors.Is(err, ErrEmitNotFound) {
		t.Errorf("LatestEmit() error = %v, want ErrEmitNotFound", err)
	}
}

func TestListEmits(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	base := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	emits := []models.EmitRecord{
		testEmit("a", "build/assets.json", base),
		testEmit("b", "public/assets.json", base.Add(time.Minute)),
		testEmit("c", "build/assets.json", base.Add(2*time.Minute)),
	}
	emits[1].Mode = models.OutputModeNamesOnly
	emits[1].ManifestChunks = nil

	for _, e := range emits {
		if err := db.InsertEmit(e); err != nil {
			t.Fatalf("InsertEmit(%s) error = %v", e.EmitID, err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{"c", "b", "a"}},
		{name: "limited", limit: 2, want: []string{"c", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListEmits(tt.limit)
			if err != nil {
				t.Fatalf("ListEmits() error = %v", err)
			}
			var ids []string
			for _, e := range got {
				ids = append(ids, e.EmitID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("ListEmits() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	b, err := db.GetEmit("b")
	if err != nil {
		t.Fatal(err)
	}
	if b.Mode != models.OutputModeNamesOnly || b.ManifestChunks != nil {
		t.Errorf("names-only emit = %+v", b)
	}

	latest, err := db.LatestEmit("build/assets.json")
	if err != nil {
		t.Fatalf("LatestEmit() error = %v", err)
	}
	if latest.EmitID != "c" {
		t.Errorf("LatestEmit() = %s, want c", latest.EmitID)
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.InsertEmit(testEmit("x", "build/assets.json", time.Now())); err != nil {
		t.Fatalf("InsertEmit() error = %v", err)
	}
	db.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() second time error = %v", err)
	}
	defer reopened.Close()

	if reopened.Path() != path {
		t.Errorf("Path() = %s, want %s", reopened.Path(), path)
	}
	if _, err := reopened.GetEmit("x"); err != nil {
		t.Errorf("GetEmit() after reopen error = %v", err)
	}
}
