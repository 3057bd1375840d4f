package config

import (
	"os"
	"path/filepath"

	"github.com/kardolus/lms-reports/internal"
	"gopkg.in/yaml.v3"
)

const (
	defaultName         = "lms"
	defaultURL          = "https://canvas.instructure.com"
	defaultAPIPath      = "/api/v1"
	defaultPerPage      = 100
	defaultTimeout      = 60
	defaultMaxRetries   = 3
	defaultRetryWait    = 500
	defaultRetryMaxWait = 5000
	defaultTimezone     = "America/New_York"
	defaultUserAgent    = "lms-reports"
	defaultAuthHeader   = "Authorization"
	defaultOutputDir    = "."
	configFileName      = "config.yaml"
	tokenFileName       = "oauthtoken.txt"
)

//go:generate mockgen -destination=storemocks_test.go -package=config_test github.com/kardolus/lms-reports/config Store
type Store interface {
	Read() (Config, error)
	ReadDefaults() Config
	Write(Config) error
}

// Ensure FileIO implements Store interface
var _ Store = &FileIO{}

type FileIO struct {
	configFilePath string
	cacheDir       string
	configHome     string
}

func New() *FileIO {
	configHome, _ := internal.GetConfigHome()
	cacheDir, _ := internal.GetCacheHome()

	return &FileIO{
		configFilePath: filepath.Join(configHome, configFileName),
		cacheDir:       cacheDir,
		configHome:     configHome,
	}
}

func (f *FileIO) WithConfigPath(configFilePath string) *FileIO {
	f.configFilePath = configFilePath
	return f
}

func (f *FileIO) WithCacheDir(cacheDir string) *FileIO {
	f.cacheDir = cacheDir
	return f
}

func (f *FileIO) Read() (Config, error) {
	return parseFile(f.configFilePath)
}

func (f *FileIO) ReadDefaults() Config {
	var tokenFile string
	if f.configHome != "" {
		tokenFile = filepath.Join(f.configHome, tokenFileName)
	}

	return Config{
		Name:         defaultName,
		URL:          defaultURL,
		APIPath:      defaultAPIPath,
		APITokenFile: tokenFile,
		PerPage:      defaultPerPage,
		Timeout:      defaultTimeout,
		MaxRetries:   defaultMaxRetries,
		RetryWait:    defaultRetryWait,
		RetryMaxWait: defaultRetryMaxWait,
		CacheDir:     f.cacheDir,
		OutputDir:    defaultOutputDir,
		Timezone:     defaultTimezone,
		UserAgent:    defaultUserAgent,
		AuthHeader:   defaultAuthHeader,
	}
}

func (f *FileIO) Write(config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.configFilePath), 0o700); err != nil {
		return err
	}

	return os.WriteFile(f.configFilePath, data, 0o600)
}

func parseFile(fileName string) (Config, error) {
	var result Config

	buf, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(buf, &result); err != nil {
		return Config{}, err
	}

	return result, nil
}
