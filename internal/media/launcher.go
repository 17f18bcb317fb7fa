package media

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/uriel/internal/catalog"
	"github.com/pders01/uriel/internal/config"
	"github.com/pders01/uriel/internal/debuglog"
	"github.com/pders01/uriel/internal/validation"
)

// ErrNoVideo is returned when an item has no video URL to watch.
var ErrNoVideo = errors.New("item has no video")

// Launcher opens catalog videos in an external player.
type Launcher struct {
	videoPlayer   string
	defaultOpener string
	registry      *PlayerRegistry
	validator     *validation.URLValidator
	start         func(*exec.Cmd) error
}

// NewLauncher picks the first installed video player listed for the
// current platform, falling back to the default opener.
func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewPlayerRegistry()
	if err != nil {
		debuglog.Warnf("player definitions unavailable: %v", err)
		registry, _ = parseRegistry(nil)
	}

	validator := validation.NewURLValidator()
	validator.AllowLocalhost = cfg.API.AllowPrivate
	validator.AllowPrivateIPs = cfg.API.AllowPrivate

	var players config.MediaPlayers
	switch runtime.GOOS {
	case "darwin":
		players = cfg.Media.Darwin
	case "linux":
		players = cfg.Media.Linux
	case "windows":
		players = cfg.Media.Windows
	default:
		players = cfg.Media.Darwin
	}

	return &Launcher{
		videoPlayer:   registry.FindAvailablePlayer(players.Video),
		defaultOpener: cfg.Media.DefaultOpener,
		registry:      registry,
		validator:     validator,
		start:         startDetached,
	}
}

// Watch plays the item's video.
func (l *Launcher) Watch(item catalog.MediaItem) error {
	if item.VideoURL == "" {
		return fmt.Errorf("%s: %w", item.Title, ErrNoVideo)
	}
	return l.Open(item.VideoURL)
}

// Open validates rawURL and starts the matching application without
// waiting for it to exit.
func (l *Launcher) Open(rawURL string) error {
	cmd, err := l.Command(rawURL)
	if err != nil {
		return err
	}
	debuglog.WithFields(map[string]interface{}{
		"op":   "watch",
		"args": cmd.Args,
	}).Infof("launching player")
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Args[0], err)
	}
	return nil
}

// Command returns the command Open would run for rawURL. Direct streams
// go to the video player; other pages go to the default opener.
func (l *Launcher) Command(rawURL string) (*exec.Cmd, error) {
	normalized, err := l.validator.ValidateAndNormalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("refusing to open %q: %w", rawURL, err)
	}

	if l.videoPlayer != "" && l.registry.Streamable(normalized) {
		cmd, err := l.registry.PlayerCommand(l.videoPlayer, normalized)
		if err == nil {
			return cmd, nil
		}
		debuglog.Warnf("video player unusable, using opener: %v", err)
	}
	return l.registry.OpenerCommand(l.defaultOpener, normalized), nil
}

// VideoPlayer returns the selected player, or "" when none is installed.
func (l *Launcher) VideoPlayer() string {
	return l.videoPlayer
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
