package internal

import (
	"os"
	"path/filepath"
)

const (
	ConfigHomeEnv    = "LMS_CONFIG_HOME"
	CacheHomeEnv     = "LMS_CACHE_HOME"
	DefaultConfigDir = ".lms-reports"
	DefaultCacheDir  = "cache"
)

func GetConfigHome() (string, error) {
	var result string

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	result = filepath.Join(homeDir, DefaultConfigDir)

	if tmp := os.Getenv(ConfigHomeEnv); tmp != "" {
		result = tmp
	}

	return result, nil
}

func GetCacheHome() (string, error) {
	var result string

	configHome, err := GetConfigHome()
	if err != nil {
		return "", err
	}

	result = filepath.Join(configHome, DefaultCacheDir)

	if tmp := os.Getenv(CacheHomeEnv); tmp != "" {
		result = tmp
	}

	return result, nil
}
