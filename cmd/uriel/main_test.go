package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// catalogServer is a minimal stand-in for the catalog service.
type catalogServer struct {
	mu        sync.Mutex
	items     []map[string]any
	created   int
	downloads map[string]int
}

func newCatalogServer(t *testing.T, items []map[string]any) (*catalogServer, *httptest.Server) {
	t.Helper()
	cs := &catalogServer{items: items, downloads: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/media":
			_ = json.NewEncoder(w).Encode(cs.items)
		case r.Method == http.MethodPost && r.URL.Path == "/api/media":
			var draft map[string]any
			_ = json.NewDecoder(r.Body).Decode(&draft)
			cs.created++
			draft["id"] = cs.created
			cs.items = append(cs.items, draft)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(draft)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/download"):
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/media/"), "/download")
			cs.downloads[id]++
			_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "downloads": 6 + cs.downloads[id]})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return cs, srv
}

func sampleCatalog() []map[string]any {
	return []map[string]any{
		{"id": 1, "title": "Neon Drift", "kind": "movie", "downloads": 5, "year": 2022},
		{"id": 2, "title": "Skyline Stories", "kind": "series", "downloads": 0},
		{"id": 3, "title": "Blade Sakura", "kind": "anime", "downloads": 6, "tags": []string{"samurai"}},
	}
}

// execute runs the root command with args in an isolated home directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	configPath, apiURL, logLevel = "", "", ""
	listTab, listQuery, seedForce = "all", "", false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	// Execute version command directly
	versionCmd.Run(nil, nil)

	w.Close()
	os.Stdout = old
	out := <-outC

	// Version is "dev" by default in tests
	if !strings.Contains(out, "uriel dev") {
		t.Errorf("Expected version output to contain 'uriel dev', got: %s", out)
	}
	if !strings.Contains(out, "github.com/pders01/uriel") {
		t.Errorf("Expected version output to contain 'github.com/pders01/uriel', got: %s", out)
	}
}

func TestGenerateConfigCommand(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, ".config", "uriel", "config.toml")
	t.Setenv("HOME", tmpDir)

	var buf bytes.Buffer
	configGenCmd.SetOut(&buf)
	t.Cleanup(func() { configGenCmd.SetOut(nil) })

	configGenCmd.Run(configGenCmd, nil)

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		t.Errorf("Config file was not created at %s", configFile)
	}
	if !strings.Contains(buf.String(), "Generated default configuration at:") {
		t.Errorf("Expected output to contain 'Generated default configuration at:', got: %s", buf.String())
	}
}

func TestListCommand(t *testing.T) {
	_, srv := newCatalogServer(t, sampleCatalog())

	out, err := execute(t, "list", "--api", srv.URL, "--tab", "anime")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "Blade Sakura") {
		t.Errorf("Expected anime title in output, got: %s", out)
	}
	if strings.Contains(out, "Neon Drift") {
		t.Errorf("Movie must not appear on the anime tab, got: %s", out)
	}
}

func TestListCommand_Query(t *testing.T) {
	_, srv := newCatalogServer(t, sampleCatalog())

	out, err := execute(t, "list", "--api", srv.URL, "--query", "NEON")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "Neon Drift") || strings.Contains(out, "Skyline Stories") {
		t.Errorf("Expected only Neon Drift, got: %s", out)
	}
}

func TestListCommand_NoResults(t *testing.T) {
	_, srv := newCatalogServer(t, nil)

	out, err := execute(t, "list", "--api", srv.URL)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "No results") {
		t.Errorf("Expected 'No results', got: %s", out)
	}
}

func TestListCommand_BadTab(t *testing.T) {
	if _, err := execute(t, "list", "--tab", "documentary"); err == nil {
		t.Fatal("Expected an error for an unknown tab")
	}
}

func TestListCommand_ServiceDown(t *testing.T) {
	_, srv := newCatalogServer(t, nil)
	srv.Close()

	if _, err := execute(t, "list", "--api", srv.URL); err == nil {
		t.Fatal("Expected an error when the service is unreachable")
	}
}

func TestDownloadCommand(t *testing.T) {
	cs, srv := newCatalogServer(t, sampleCatalog())

	out, err := execute(t, "download", "3", "--api", srv.URL)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if !strings.Contains(out, "Downloaded 'Blade Sakura' (7 total)") {
		t.Errorf("Unexpected output: %s", out)
	}
	if cs.downloads["3"] != 1 {
		t.Errorf("Expected one download call for item 3, got %d", cs.downloads["3"])
	}
}

func TestSeedCommand_EmptyCatalog(t *testing.T) {
	cs, srv := newCatalogServer(t, nil)

	out, err := execute(t, "seed", "--api", srv.URL)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if cs.created != 3 {
		t.Errorf("Expected 3 drafts created, got %d", cs.created)
	}
	if !strings.Contains(out, "Seeded 3 of 3 titles") {
		t.Errorf("Unexpected output: %s", out)
	}
}

func TestSeedCommand_NotEmpty(t *testing.T) {
	cs, srv := newCatalogServer(t, sampleCatalog())

	out, err := execute(t, "seed", "--api", srv.URL)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if cs.created != 0 {
		t.Errorf("Expected nothing created, got %d", cs.created)
	}
	if !strings.Contains(out, "nothing seeded") {
		t.Errorf("Unexpected output: %s", out)
	}
}
