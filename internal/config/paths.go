package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "pulse"

// baseDir picks the per-user base directory: winEnv (or the USERPROFILE
// fallback) on Windows, otherwise xdgEnv or ~/homeRel.
func baseDir(winEnv string, winFallback []string, xdgEnv string, homeRel ...string) (string, error) {
	if runtime.GOOS == "windows" {
		if base := os.Getenv(winEnv); base != "" {
			return base, nil
		}
		return filepath.Join(append([]string{os.Getenv("USERPROFILE")}, winFallback...)...), nil
	}
	if base := os.Getenv(xdgEnv); base != "" {
		return base, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, homeRel...)...), nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/pulse (~/.config/pulse), or
// %APPDATA%\pulse on Windows.
func GetConfigDir() (string, error) {
	base, err := baseDir("APPDATA", []string{"AppData", "Roaming"}, "XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// GetDataDir returns $XDG_DATA_HOME/pulse (~/.local/share/pulse), or
// %LOCALAPPDATA%\pulse on Windows.
func GetDataDir() (string, error) {
	base, err := baseDir("LOCALAPPDATA", []string{"AppData", "Local"}, "XDG_DATA_HOME", ".local", "share")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// GetDashboardsDir is where the dir catalog looks when none is configured.
func GetDashboardsDir() (string, error) {
	return under(GetConfigDir, "dashboards")
}

// GetConfigPath returns the path to the main config file.
func GetConfigPath() (string, error) {
	return under(GetConfigDir, "config.toml")
}

// GetLogPath returns the log file used while the TUI owns the terminal.
func GetLogPath() (string, error) {
	return under(GetDataDir, "pulse.log")
}

func under(dir func() (string, error), name string) (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}

// EnsureDirs creates the config, data and dashboards directories.
func EnsureDirs() error {
	for _, fn := range []func() (string, error){GetConfigDir, GetDataDir, GetDashboardsDir} {
		dir, err := fn()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}
