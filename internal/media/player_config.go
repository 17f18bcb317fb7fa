package media

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pders01/uriel/internal/debuglog"
)

//go:embed players.toml
var playersTOML []byte

// PlayerDefinition describes how a video player is invoked.
type PlayerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	Args        []string `toml:"args"`
	ArgsDarwin  []string `toml:"args_darwin"`
	ArgsLinux   []string `toml:"args_linux"`
	ArgsWindows []string `toml:"args_windows"`
}

// OpenerDefinition is the platform command that opens a URL in the
// user's default application.
type OpenerDefinition struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// StreamConfig lists what a video player can play without a browser.
type StreamConfig struct {
	Extensions []string `toml:"extensions"`
	Hosts      []string `toml:"hosts"`
}

// PlayersConfig is the layout of players.toml.
type PlayersConfig struct {
	Stream  StreamConfig                `toml:"stream"`
	Players map[string]PlayerDefinition `toml:"players"`
	Openers map[string]OpenerDefinition `toml:"openers"`
}

// PlayerRegistry resolves player names to commands.
type PlayerRegistry struct {
	stream  StreamConfig
	players map[string]PlayerDefinition
	openers map[string]OpenerDefinition
}

// NewPlayerRegistry loads the embedded definitions and merges the user's
// players.toml from the config directory when present.
func NewPlayerRegistry() (*PlayerRegistry, error) {
	r, err := parseRegistry(playersTOML)
	if err != nil {
		return nil, fmt.Errorf("parsing players.toml: %w", err)
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.merge(filepath.Join(home, ".config", "uriel", "players.toml"))
	}
	return r, nil
}

func parseRegistry(data []byte) (*PlayerRegistry, error) {
	var cfg PlayersConfig
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	r := &PlayerRegistry{
		stream:  cfg.Stream,
		players: cfg.Players,
		openers: cfg.Openers,
	}
	if r.players == nil {
		r.players = make(map[string]PlayerDefinition)
	}
	if r.openers == nil {
		r.openers = make(map[string]OpenerDefinition)
	}
	return r, nil
}

// merge overlays definitions from path. A missing or broken file is
// logged and ignored.
func (r *PlayerRegistry) merge(path string) {
	var user PlayersConfig
	md, err := toml.DecodeFile(path, &user)
	if err != nil {
		if !os.IsNotExist(err) {
			debuglog.Warnf("ignoring player definitions in %s: %v", path, err)
		}
		return
	}
	for name, def := range user.Players {
		r.players[name] = def
	}
	for platform, def := range user.Openers {
		r.openers[platform] = def
	}
	if md.IsDefined("stream", "extensions") {
		r.stream.Extensions = user.Stream.Extensions
	}
	if md.IsDefined("stream", "hosts") {
		r.stream.Hosts = user.Stream.Hosts
	}
}

// Streamable reports whether a video player can open rawURL directly.
func (r *PlayerRegistry) Streamable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	for _, e := range r.stream.Extensions {
		if ext != "" && e == ext {
			return true
		}
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range r.stream.Hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// PlayerCommand builds the command that plays rawURL with playerName.
// Players without a definition are run with the URL as the only argument.
func (r *PlayerRegistry) PlayerCommand(playerName, rawURL string) (*exec.Cmd, error) {
	player, ok := r.players[playerName]
	if !ok {
		return exec.Command(playerName, rawURL), nil
	}
	if !supports(player.Platforms, runtime.GOOS) {
		return nil, fmt.Errorf("%s not supported on %s", playerName, runtime.GOOS)
	}
	args := append(append([]string(nil), platformArgs(player)...), rawURL)
	return exec.Command(playerName, args...), nil
}

// OpenerCommand builds the command that hands rawURL to the platform's
// default application. override replaces the configured command name.
func (r *PlayerRegistry) OpenerCommand(override, rawURL string) *exec.Cmd {
	opener, ok := r.openers[runtime.GOOS]
	if !ok {
		opener = r.openers["fallback"]
	}
	name := opener.Command
	args := opener.Args
	if override != "" && override != name {
		name, args = override, nil
	}
	if name == "" {
		name = "open"
	}
	return exec.Command(name, append(append([]string(nil), args...), rawURL)...)
}

// IsPlayerAvailable checks if a player is installed.
func (r *PlayerRegistry) IsPlayerAvailable(playerName string) bool {
	_, err := exec.LookPath(playerName)
	return err == nil
}

// FindAvailablePlayer returns the first installed player from candidates.
func (r *PlayerRegistry) FindAvailablePlayer(candidates []string) string {
	for _, p := range candidates {
		if r.IsPlayerAvailable(p) {
			return p
		}
	}
	return ""
}

func platformArgs(p PlayerDefinition) []string {
	switch runtime.GOOS {
	case "darwin":
		if len(p.ArgsDarwin) > 0 {
			return p.ArgsDarwin
		}
	case "linux":
		if len(p.ArgsLinux) > 0 {
			return p.ArgsLinux
		}
	case "windows":
		if len(p.ArgsWindows) > 0 {
			return p.ArgsWindows
		}
	}
	return p.Args
}

func supports(platforms []string, goos string) bool {
	for _, p := range platforms {
		if p == goos {
			return true
		}
	}
	return false
}
