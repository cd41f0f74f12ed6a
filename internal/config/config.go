// Package config handles mpcnet paths and connection settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/difegue/mpcnet/internal/pathutil"
	"github.com/difegue/mpcnet/internal/protocol"
)

// Paths holds common paths used by mpcnet.
type Paths struct {
	Home    string
	Config  string
	Logs    string
	Log     string
	History string
}

// GetPaths returns the paths for the current user.
func GetPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	mpcnetHome := filepath.Join(home, ".mpcnet")
	logsDir := filepath.Join(mpcnetHome, "logs")
	return &Paths{
		Home:    mpcnetHome,
		Config:  filepath.Join(mpcnetHome, "config.yaml"),
		Logs:    logsDir,
		Log:     filepath.Join(logsDir, "mpcnet.log"),
		History: filepath.Join(mpcnetHome, "history"),
	}, nil
}

// EnsureDirectories creates the required directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.Home, p.Logs}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// Defaults for a daemon on the local machine.
const (
	DefaultHost           = "localhost"
	DefaultPort           = protocol.DefaultPort
	DefaultDialTimeout    = 5 * time.Second
	DefaultCommandTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// Environment variables understood by Settings.ApplyEnv.
const (
	EnvHost = "MPD_HOST"
	EnvPort = "MPD_PORT"
)

// Settings describes how to reach the daemon.
type Settings struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Password       string        `yaml:"password"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	LogLevel       string        `yaml:"log_level"`
}

// DefaultSettings returns settings for a local daemon on the default port.
func DefaultSettings() *Settings {
	return &Settings{
		Host:           DefaultHost,
		Port:           DefaultPort,
		DialTimeout:    DefaultDialTimeout,
		CommandTimeout: DefaultCommandTimeout,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads the settings file at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// ApplyEnv overrides the settings with MPD_HOST and MPD_PORT.
//
// MPD_HOST is a hostname, an absolute unix socket path, or either of them
// prefixed with "password@".
func (s *Settings) ApplyEnv(getenv func(string) string) error {
	if host := getenv(EnvHost); host != "" {
		s.SetHost(host)
	}
	if port := getenv(EnvPort); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvPort, port)
		}
		s.Port = n
	}
	return s.Validate()
}

// SetHost sets the host, splitting off a "password@" prefix.
func (s *Settings) SetHost(host string) {
	// A leading "@" names an abstract socket, not a password.
	if i := strings.LastIndex(host, "@"); i > 0 {
		s.Password = host[:i]
		host = host[i+1:]
	}
	s.Host = host
}

// Validate reports settings that cannot describe a daemon address.
func (s *Settings) Validate() error {
	if s.Host == "" {
		return errors.New("host is empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port %d out of range", s.Port)
	}
	if s.DialTimeout < 0 || s.CommandTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// IsSocket reports whether Host names a unix socket.
func (s *Settings) IsSocket() bool {
	return pathutil.IsSocketPath(s.Host)
}

// Target returns the network and address to dial. A socket path under
// "~/" is resolved against the home directory.
func (s *Settings) Target() (network, address string) {
	if s.IsSocket() {
		path, err := pathutil.ExpandHome(s.Host)
		if err != nil {
			path = s.Host
		}
		return "unix", path
	}
	return "tcp", net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
