package storage

import (
	"bytes"
	"fmt"
	"testing"

	"xlate/internal/uniast"
)

func TestFileRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "gzip"
		}
		t.Run(name, func(t *testing.T) {
			fs, err := NewFile(t.TempDir(), compress)
			if err != nil {
				t.Fatalf("NewFile: %v", err)
			}
			key := "cloudwego/hertz"
			value := []byte(`{"Modules":{}}`)
			if err := fs.Put(key, value); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, ok := fs.Get(key)
			if !ok {
				t.Fatal("Get reported miss after Put")
			}
			if !bytes.Equal(got, value) {
				t.Errorf("Get = %q, want %q", got, value)
			}
		})
	}
}

func TestFileMiss(t *testing.T) {
	fs, err := NewFile(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if _, ok := fs.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestFileReadsUncompressedLegacyEntries(t *testing.T) {
	dir := t.TempDir()
	plain, _ := NewFile(dir, false)
	if err := plain.Put("k", []byte("legacy")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	zipped, _ := NewFile(dir, true)
	got, ok := zipped.Get("k")
	if !ok || string(got) != "legacy" {
		t.Errorf("Get = %q, %v; want legacy entry readable", got, ok)
	}
}

func TestMemoryEviction(t *testing.T) {
	mem, err := NewMemory(2)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := mem.Put(fmt.Sprintf("k%d", i), []byte{byte(i)}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if _, ok := mem.Get("k0"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := mem.Get("k2"); !ok {
		t.Error("newest entry missing")
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	db, err := NewSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer db.Close()

	if err := db.Put("repo/key", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := db.Put("repo/key", []byte("v2")); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok := db.Get("repo/key")
	if !ok || string(got) != "v2" {
		t.Errorf("Get = %q, %v; want v2", got, ok)
	}
	if _, ok := db.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestTieredReadThroughBackfill(t *testing.T) {
	mem, _ := NewMemory(8)
	fs, err := NewFile(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	// Seed only the backend, as if a previous run wrote it.
	if err := fs.Put("repo", []byte("checkpoint")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	tiered := NewTiered(mem, fs)
	got, ok := tiered.Get("repo")
	if !ok || string(got) != "checkpoint" {
		t.Fatalf("Get = %q, %v; want backend value", got, ok)
	}
	if _, ok := mem.Get("repo"); !ok {
		t.Error("memory tier not backfilled after read")
	}
}

func TestTieredWriteThrough(t *testing.T) {
	mem, _ := NewMemory(8)
	fs, err := NewFile(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	tiered := NewTiered(mem, fs)

	if err := tiered.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := mem.Get("k"); !ok {
		t.Error("write did not reach memory tier")
	}
	if _, ok := fs.Get("k"); !ok {
		t.Error("write did not reach backend tier")
	}
}

func TestRepoNameFromPkgPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"github.com/cloudwego/hertz/pkg/app", "cloudwego/hertz"},
		{"github.com/cloudwego/hertz", "cloudwego/hertz"},
		{"example.com/app", "example.com/app"},
		{"main", "main"},
	}
	for _, tt := range tests {
		if got := RepoNameFromPkgPath(tt.in); got != tt.want {
			t.Errorf("RepoNameFromPkgPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveLoadRepo(t *testing.T) {
	fs, err := NewFile(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	repo := &uniast.Repository{
		ID: "org/app",
		Modules: map[string]*uniast.Module{
			"example.com/app": {
				Name: "example.com/app",
				Dir:  "/src/app",
				Packages: map[string]*uniast.Package{
					"example.com/app": {
						PkgPath: "example.com/app",
						Functions: map[string]*uniast.Function{
							"Run": {
								Identity:     uniast.Identity{ModPath: "example.com/app", PkgPath: "example.com/app", Name: "Run"},
								Content:      "func Run() {}",
								CompressData: "starts the app",
							},
						},
					},
				},
			},
		},
	}
	if err := SaveRepo(fs, repo); err != nil {
		t.Fatalf("SaveRepo: %v", err)
	}

	got, err := LoadRepo(fs, "org/app")
	if err != nil {
		t.Fatalf("LoadRepo: %v", err)
	}
	if got == nil {
		t.Fatal("LoadRepo returned nil for checkpointed repo")
	}
	f := got.GetFunction(uniast.Identity{ModPath: "example.com/app", PkgPath: "example.com/app", Name: "Run"})
	if f == nil || f.CompressData != "starts the app" {
		t.Errorf("summary not round-tripped: %+v", f)
	}
}

func TestLoadRepoMiss(t *testing.T) {
	fs, err := NewFile(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	repo, err := LoadRepo(fs, "never/seen")
	if err != nil {
		t.Fatalf("LoadRepo: %v", err)
	}
	if repo != nil {
		t.Errorf("expected nil for cache miss, got %+v", repo)
	}
}

func TestLoadRepoCorrupt(t *testing.T) {
	fs, err := NewFile(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := fs.Put("bad", []byte("{not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := LoadRepo(fs, "bad"); err == nil {
		t.Error("expected error for corrupt checkpoint")
	}
}

func TestCodeCacheRoundTrip(t *testing.T) {
	fs, err := NewFile(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	id := uniast.Identity{ModPath: "example.com/app", PkgPath: "example.com/app", Name: "Run"}
	cc := uniast.NewCodeCache("org/app-code")
	cc.Insert(id, uniast.Code{Code: "pub fn run() {}", Imports: map[string]bool{"use crate::cfg::Config;": true}})
	if err := SaveCodeCache(fs, cc); err != nil {
		t.Fatalf("SaveCodeCache: %v", err)
	}

	got, err := LoadCodeCache(fs, "org/app-code")
	if err != nil {
		t.Fatalf("LoadCodeCache: %v", err)
	}
	code, ok := got.Get(id)
	if !ok || code.Code != "pub fn run() {}" {
		t.Errorf("cached code = %+v, %v", code, ok)
	}
	if !code.Imports["use crate::cfg::Config;"] {
		t.Errorf("imports not round-tripped: %v", code.Imports)
	}
}

func TestLoadCodeCacheMissReturnsEmpty(t *testing.T) {
	fs, err := NewFile(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	cc, err := LoadCodeCache(fs, "fresh")
	if err != nil {
		t.Fatalf("LoadCodeCache: %v", err)
	}
	if cc.ID != "fresh" || cc.Nodes == nil || cc.Files == nil {
		t.Errorf("empty cache malformed: %+v", cc)
	}
}
