package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/razorcore/internal/logging"
)

// Config holds all user-configurable settings loaded from config.json (or config.yaml)
type Config struct {
	Preview    PreviewConfig    `json:"preview" yaml:"preview"`
	FileOps    FileOpsConfig    `json:"fileops" yaml:"fileops"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Trash      TrashConfig      `json:"trash" yaml:"trash"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Tags       TagsConfig       `json:"tags" yaml:"tags"`
	Desktop    DesktopConfig    `json:"desktop" yaml:"desktop"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
	Hotkeys    HotkeysConfig    `json:"hotkeys" yaml:"hotkeys"`
}

// PreviewConfig holds thumbnail pipeline settings
type PreviewConfig struct {
	Workers             int      `json:"workers" yaml:"workers"`             // Max concurrent generation/enumeration tasks
	ThumbnailSize       int      `json:"thumbnailSize" yaml:"thumbnailSize"` // Max thumbnail dimension in pixels
	MemoryEntries       int      `json:"memoryEntries" yaml:"memoryEntries"` // Decoded thumbnails kept in memory
	ThumbnailDir        string   `json:"thumbnailDir" yaml:"thumbnailDir"`
	DisabledFilesystems []string `json:"disabledFilesystems" yaml:"disabledFilesystems"` // fstypes never thumbnailed
	DisabledPaths       []string `json:"disabledPaths" yaml:"disabledPaths"`             // path prefixes never thumbnailed
	DBusThumbnailer     bool     `json:"dbusThumbnailer" yaml:"dbusThumbnailer"`
	VideoCommand        string   `json:"videoCommand" yaml:"videoCommand"` // e.g. "ffmpegthumbnailer"
}

// FileOpsConfig holds file operation settings
type FileOpsConfig struct {
	ConflictPolicy  string `json:"conflictPolicy" yaml:"conflictPolicy"` // "fail" | "keep-both"
	CrossDeviceCopy bool   `json:"crossDeviceCopy" yaml:"crossDeviceCopy"`
	UndoCapacity    int    `json:"undoCapacity" yaml:"undoCapacity"` // 0 = unbounded
}

// ClassifierConfig holds entry classification settings
type ClassifierConfig struct {
	SuppressExtension []string `json:"suppressExtension" yaml:"suppressExtension"` // content types without extension badges
}

// TrashConfig holds trash settings
type TrashConfig struct {
	Root string `json:"root" yaml:"root"` // Empty = platform default
}

// StoreConfig holds journal database settings
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// TagsConfig holds tag settings
type TagsConfig struct {
	Home string `json:"home" yaml:"home"` // Directory tags live under, empty = disabled
}

// DesktopConfig holds desktop integration settings
type DesktopConfig struct {
	FileManagerService bool `json:"fileManagerService" yaml:"fileManagerService"` // Answer org.freedesktop.FileManager1 calls
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "console" | "json"
	Output string `json:"output" yaml:"output"`
}

// MetricsConfig holds the Prometheus endpoint settings
type MetricsConfig struct {
	Addr string `json:"addr" yaml:"addr"` // Empty = disabled
}

// Manager handles loading, saving, and accessing configuration
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error // Stores parsing error if config failed to load
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: DefaultConfig(),
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cacheDir, _ := os.UserCacheDir()
	configDir, _ := os.UserConfigDir()
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Preview: PreviewConfig{
			Workers:       4,
			ThumbnailSize: 256,
			MemoryEntries: 512,
			ThumbnailDir:  filepath.Join(cacheDir, "razor", "thumbnails"),
			DisabledFilesystems: []string{
				"nfs", "nfs4", "cifs", "smbfs", "smb3", "fuse.sshfs", "sshfs", "9p", "afpfs", "davfs", "fuse.rclone",
			},
			VideoCommand: "ffmpegthumbnailer",
		},
		FileOps: FileOpsConfig{
			ConflictPolicy:  "fail",
			CrossDeviceCopy: false,
			UndoCapacity:    128,
		},
		Classifier: ClassifierConfig{
			SuppressExtension: []string{
				"application/x-executable",
				"application/x-sharedlib",
				"application/x-trash",
				"application/x-zerosize",
				"text/x-makefile",
				"text/x-readme",
			},
		},
		Store: StoreConfig{
			Path: filepath.Join(configDir, "razor", "razor.db"),
		},
		Tags: TagsConfig{
			Home: homeDir,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Hotkeys: DefaultHotkeys(),
	}
}

// ConfigPath returns the config file path: ~/.config/razor/config.json
// This is consistent across all platforms (Windows, macOS, Linux)
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "razor", "config.json")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the configuration from path (ConfigPath() when empty).
// If the file doesn't exist, creates it with defaults.
// If parsing fails, stores the error and keeps defaults.
func (m *Manager) Load(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if path == "" {
		path = ConfigPath()
	}
	m.path = path
	m.parseErr = nil

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		logging.Error("config: failed to create directory", zap.String("dir", configDir), zap.Error(err))
		return err
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		logging.Info("config: creating default config", zap.String("path", m.path))
		m.config = DefaultConfig()
		if saveErr := m.saveUnlocked(); saveErr != nil {
			logging.Error("config: failed to save default config", zap.Error(saveErr))
			return saveErr
		}
		return nil
	}
	if err != nil {
		logging.Error("config: failed to read", zap.String("path", m.path), zap.Error(err))
		return err
	}

	// Missing keys keep their defaults
	cfg := DefaultConfig()
	if isYAML(m.path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		logging.Warn("config: parse error, using defaults", zap.String("path", m.path), zap.Error(err))
		m.parseErr = err
		m.config = DefaultConfig()
		return nil
	}

	logging.Info("config: loaded", zap.String("path", m.path))
	m.config = cfg
	return nil
}

// saveUnlocked saves config without acquiring lock (caller must hold lock)
func (m *Manager) saveUnlocked() error {
	var (
		data []byte
		err  error
	)
	if isYAML(m.path) {
		data, err = yaml.Marshal(m.config)
	} else {
		data, err = json.MarshalIndent(m.config, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path == "" {
		return fmt.Errorf("config: no path loaded")
	}
	return m.saveUnlocked()
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// Path returns the file the configuration was loaded from
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// GenerateConfig backs up existing config and creates a fresh default config
// Returns the backup path if a backup was created, or empty string if no existing config
func GenerateConfig(configPath string) (backupPath string, err error) {
	if configPath == "" {
		configPath = ConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		ext := filepath.Ext(configPath)
		backupPath = strings.TrimSuffix(configPath, ext) + ".backup." + timestamp + ext

		data, err := os.ReadFile(configPath)
		if err != nil {
			return "", fmt.Errorf("failed to read existing config: %w", err)
		}
		if err := os.WriteFile(backupPath, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write backup: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return backupPath, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{config: DefaultConfig(), path: configPath}
	if err := m.saveUnlocked(); err != nil {
		return backupPath, fmt.Errorf("failed to write config: %w", err)
	}
	return backupPath, nil
}
