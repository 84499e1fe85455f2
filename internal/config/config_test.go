package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"RepoPath", RepoPath, "/test/repo/.paperref"},
		{"ConfigPath", ConfigPath, "/test/repo/.paperref/config.json"},
		{"LibraryPath", LibraryPath, "/test/repo/.paperref/library.jsonl"},
		{"CachePath", CachePath, "/test/repo/.paperref/cache"},
		{"DBPath", DBPath, "/test/repo/.paperref/cache/library.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for non-repo directory")
	}

	if err := os.Mkdir(filepath.Join(tmpDir, RepoDir), 0755); err != nil {
		t.Fatalf("Failed to create .paperref: %v", err)
	}

	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false for repo directory")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, RepoDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create .paperref file: %v", err)
	}

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .paperref is a file")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	if err := Init(tmpDir); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindRepository(nested)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	want, _ := filepath.Abs(tmpDir)
	if got != want {
		t.Errorf("FindRepository() = %q, want %q", got, want)
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	if _, err := FindRepository(t.TempDir()); !errors.Is(err, ErrNotRepository) {
		t.Errorf("FindRepository() error = %v, want ErrNotRepository", err)
	}
}

func TestStartDir_Env(t *testing.T) {
	t.Setenv(RootEnv, "/some/root")
	got, err := StartDir()
	if err != nil || got != "/some/root" {
		t.Errorf("StartDir() = %q, %v", got, err)
	}
}

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()

	if err := Init(tmpDir); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	for _, p := range []string{LibraryPath(tmpDir), ConfigPath(tmpDir), CachePath(tmpDir)} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}

	if err := Init(tmpDir); err == nil {
		t.Error("Init() on an existing repository should fail")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	if err := Init(tmpDir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ConfigPath(tmpDir), []byte(`{"num_nodes": 5}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NumNodes != 5 || cfg.HubCeiling != DefaultHubCeiling || cfg.BatchPauseMS != DefaultBatchPauseMS {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	if err := Init(tmpDir); err != nil {
		t.Fatal(err)
	}

	for _, content := range []string{`{"num_nodes": -2}`, `{"batch_pause_ms": -1}`, `not json`} {
		if err := os.WriteFile(ConfigPath(tmpDir), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(tmpDir); err == nil {
			t.Errorf("Load(%s) expected error", content)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", *Default(), false},
		{"unlimited", Config{NumNodes: -1, HubCeiling: -1}, false},
		{"num_nodes below -1", Config{NumNodes: -2}, true},
		{"hub_ceiling below -1", Config{HubCeiling: -3}, true},
		{"negative second-level pause", Config{SecondLevelPauseMS: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := Default()
	if cfg.BatchPause().Milliseconds() != 1000 || cfg.SecondLevelPause().Milliseconds() != 500 {
		t.Errorf("durations = %v, %v", cfg.BatchPause(), cfg.SecondLevelPause())
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/papers", filepath.Join(home, "papers")},
		{"/abs/path", "/abs/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
