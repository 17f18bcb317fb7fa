package media

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func testRegistry(t *testing.T) *PlayerRegistry {
	t.Helper()
	r, err := parseRegistry(playersTOML)
	if err != nil {
		t.Fatalf("parseRegistry() error = %v", err)
	}
	return r
}

func TestEmbeddedPlayers(t *testing.T) {
	r := testRegistry(t)

	for _, name := range []string{"mpv", "vlc", "iina", "mplayer"} {
		if _, ok := r.players[name]; !ok {
			t.Errorf("embedded definitions missing %s", name)
		}
	}
	for _, platform := range []string{"darwin", "linux", "windows", "fallback"} {
		if r.openers[platform].Command == "" {
			t.Errorf("embedded definitions missing opener for %s", platform)
		}
	}
	if !slices.Contains(r.stream.Extensions, "mp4") {
		t.Error("mp4 should be streamable")
	}
}

func TestPlayerRegistry_Streamable(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		url      string
		expected bool
	}{
		{"https://samplelib.com/lib/preview/mp4/sample-5s.mp4", true},
		{"https://cdn.media.org/VIDEO.MKV", true},
		{"https://cdn.media.org/clip.webm?token=abc#t=10", true},
		{"https://cdn.media.org/live/index.m3u8", true},
		{"https://www.youtube.com/watch?v=abc123", true},
		{"https://youtu.be/abc123", true},
		{"https://vimeo.com/123456", true},
		{"https://cdn.media.org/poster.jpg", false},
		{"https://cdn.media.org/watch", false},
		{"https://notyoutube.com/watch", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := r.Streamable(tt.url); got != tt.expected {
				t.Errorf("Streamable(%s) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestPlayerRegistry_PlayerCommand(t *testing.T) {
	r := &PlayerRegistry{
		players: map[string]PlayerDefinition{
			"mpv": {
				Platforms: []string{"darwin", "linux", "windows"},
				Args:      []string{"--no-terminal"},
			},
			"vlc": {
				Platforms:   []string{"darwin", "linux", "windows"},
				Args:        []string{"--intf", "dummy"},
				ArgsDarwin:  []string{"--intf", "macosx"},
				ArgsLinux:   []string{"--intf", "dummy"},
				ArgsWindows: []string{"--intf", "dummy"},
			},
			"nowhere": {Platforms: []string{"plan9"}},
		},
	}
	const u = "https://cdn.media.org/a.mp4"

	cmd, err := r.PlayerCommand("mpv", u)
	if err != nil {
		t.Fatalf("PlayerCommand(mpv) error = %v", err)
	}
	if want := []string{"mpv", "--no-terminal", u}; !slices.Equal(cmd.Args, want) {
		t.Errorf("mpv args = %v, want %v", cmd.Args, want)
	}

	cmd, err = r.PlayerCommand("vlc", u)
	if err != nil {
		t.Fatalf("PlayerCommand(vlc) error = %v", err)
	}
	wantIntf := "dummy"
	if runtime.GOOS == "darwin" {
		wantIntf = "macosx"
	}
	if len(cmd.Args) != 4 || cmd.Args[2] != wantIntf || cmd.Args[3] != u {
		t.Errorf("vlc args = %v", cmd.Args)
	}

	cmd, err = r.PlayerCommand("celluloid", u)
	if err != nil {
		t.Fatalf("undefined player should still build: %v", err)
	}
	if want := []string{"celluloid", u}; !slices.Equal(cmd.Args, want) {
		t.Errorf("undefined player args = %v, want %v", cmd.Args, want)
	}

	if _, err := r.PlayerCommand("nowhere", u); err == nil {
		t.Error("expected an error for an unsupported platform")
	}
}

func TestPlayerRegistry_PlayerCommandDoesNotAliasArgs(t *testing.T) {
	r := &PlayerRegistry{players: map[string]PlayerDefinition{
		"mpv": {Platforms: []string{runtime.GOOS}, Args: make([]string, 1, 4)},
	}}

	a, _ := r.PlayerCommand("mpv", "https://a.org/1.mp4")
	b, _ := r.PlayerCommand("mpv", "https://a.org/2.mp4")
	if a.Args[2] == b.Args[2] {
		t.Errorf("commands share argument storage: %v %v", a.Args, b.Args)
	}
}

func TestPlayerRegistry_OpenerCommand(t *testing.T) {
	r := &PlayerRegistry{openers: map[string]OpenerDefinition{
		runtime.GOOS: {Command: "opener", Args: []string{"--new"}},
	}}
	const u = "https://catalog.media.org/item/1"

	cmd := r.OpenerCommand("", u)
	if want := []string{"opener", "--new", u}; !slices.Equal(cmd.Args, want) {
		t.Errorf("opener args = %v, want %v", cmd.Args, want)
	}

	cmd = r.OpenerCommand("opener", u)
	if want := []string{"opener", "--new", u}; !slices.Equal(cmd.Args, want) {
		t.Errorf("same-name override args = %v, want %v", cmd.Args, want)
	}

	cmd = r.OpenerCommand("firefox", u)
	if want := []string{"firefox", u}; !slices.Equal(cmd.Args, want) {
		t.Errorf("override args = %v, want %v", cmd.Args, want)
	}

	empty := &PlayerRegistry{openers: map[string]OpenerDefinition{}}
	if cmd := empty.OpenerCommand("", u); cmd.Args[0] != "open" {
		t.Errorf("empty registry opener = %s, want open", cmd.Args[0])
	}
}

func TestPlayerRegistry_Merge(t *testing.T) {
	r := testRegistry(t)
	path := filepath.Join(t.TempDir(), "players.toml")
	content := `
[stream]
hosts = ["media.example.net"]

[players.mpv]
platforms = ["darwin", "linux", "windows"]
args = ["--fs"]

[players.haruna]
platforms = ["linux"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r.merge(path)

	if got := r.players["mpv"].Args; !slices.Equal(got, []string{"--fs"}) {
		t.Errorf("mpv args after merge = %v", got)
	}
	if _, ok := r.players["haruna"]; !ok {
		t.Error("user player not merged")
	}
	if _, ok := r.players["vlc"]; !ok {
		t.Error("built-in player lost during merge")
	}
	if !slices.Equal(r.stream.Hosts, []string{"media.example.net"}) {
		t.Errorf("stream hosts = %v", r.stream.Hosts)
	}
	if !slices.Contains(r.stream.Extensions, "mp4") {
		t.Error("extensions not in the user file must be kept")
	}
}

func TestPlayerRegistry_MergeIgnoresBadFiles(t *testing.T) {
	r := testRegistry(t)
	before := len(r.players)

	r.merge(filepath.Join(t.TempDir(), "missing.toml"))

	broken := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(broken, []byte("[players.mpv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r.merge(broken)

	if len(r.players) != before {
		t.Errorf("players changed from %d to %d", before, len(r.players))
	}
}

func TestFindAvailablePlayer(t *testing.T) {
	r := &PlayerRegistry{}

	if got := r.FindAvailablePlayer(nil); got != "" {
		t.Errorf("FindAvailablePlayer(nil) = %q, want empty", got)
	}
	if got := r.FindAvailablePlayer([]string{"uriel-no-such-player-xyz"}); got != "" {
		t.Errorf("FindAvailablePlayer(missing) = %q, want empty", got)
	}

	// "go" is on PATH wherever the tests run.
	if got := r.FindAvailablePlayer([]string{"uriel-no-such-player-xyz", "go"}); got != "go" {
		t.Errorf("FindAvailablePlayer() = %q, want go", got)
	}
}
