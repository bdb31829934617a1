package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "LOGICSIM_CONFIG"
	// ConfigFileName is the config file name looked up in the working directory
	ConfigFileName = "logicsim.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "logicsim"

	dirConfigName = "config.yaml"
)

// SearchPaths returns the config file candidates in priority order:
//
//	$LOGICSIM_CONFIG
//	./logicsim.yaml
//	$XDG_CONFIG_HOME/logicsim/config.yaml
//	~/.config/logicsim/config.yaml
//	/etc/logicsim/config.yaml
//
// Unset variables contribute no candidate.
func SearchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, ConfigDirName, dirConfigName))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, dirConfigName))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, dirConfigName))
}

// FindConfigPath returns the first existing candidate of SearchPaths, or ""
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// DefaultConfigPath is where `logicsim config init` writes a new file:
// the XDG config dir when known, else the working directory.
func DefaultConfigPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, ConfigDirName, dirConfigName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName, dirConfigName)
	}
	return ConfigFileName
}

// userConfigDir returns $XDG_CONFIG_HOME
func userConfigDir() string {
	return os.Getenv("XDG_CONFIG_HOME")
}

// EnsureConfigDir creates the directory holding configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0o755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
