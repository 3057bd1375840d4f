package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

var ErrMissingToken = errors.New("missing API token: set api_token, api_token_file or the LMS_API_TOKEN environment variable")

type Manager struct {
	configStore      Store
	defaultTokenFile string
	Config           Config
}

func NewManager(cs Store) *Manager {
	configuration := cs.ReadDefaults()
	defaultTokenFile := configuration.APITokenFile

	userConfig, err := cs.Read()
	if err == nil {
		configuration = replaceByConfigFile(configuration, userConfig)
	}

	return &Manager{configStore: cs, defaultTokenFile: defaultTokenFile, Config: configuration}
}

func (c *Manager) WithEnvironment() *Manager {
	c.Config = replaceByEnvironment(c.Config)
	return c
}

// WithFlags overlays every key the viper instance reports as set. Keys are
// the yaml tags of Config; bound command line flags only count when changed.
func (c *Manager) WithFlags(v *viper.Viper) *Manager {
	if v == nil {
		return c
	}
	c.Config = replaceByViper(c.Config, v)
	return c
}

// Token returns the bearer credential. An inline token wins over the token
// file. The default token file may be absent; a token file that was set
// explicitly must exist and be readable.
func (c *Manager) Token() (string, error) {
	if c.Config.APIToken != "" {
		return c.Config.APIToken, nil
	}

	path := c.Config.APITokenFile
	if path == "" {
		return "", ErrMissingToken
	}

	token, err := ReadTokenFile(path)
	if errors.Is(err, os.ErrNotExist) && filepath.Clean(path) == filepath.Clean(c.defaultTokenFile) {
		return "", ErrMissingToken
	}
	return token, err
}

// ShowConfig serializes the current configuration to a YAML string with the
// token redacted.
func (c *Manager) ShowConfig() (string, error) {
	cfg := c.Config
	if cfg.APIToken != "" {
		cfg.APIToken = redacted
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (c *Manager) Save() error {
	return c.configStore.Write(c.Config)
}

func replaceByConfigFile(defaultConfig, userConfig Config) Config {
	t := reflect.TypeOf(defaultConfig)
	vDefault := reflect.ValueOf(&defaultConfig).Elem()
	vUser := reflect.ValueOf(userConfig)

	for i := 0; i < t.NumField(); i++ {
		defaultField := vDefault.Field(i)
		userField := vUser.Field(i)

		switch defaultField.Kind() {
		case reflect.String:
			if userStr := userField.String(); userStr != "" {
				defaultField.SetString(userStr)
			}
		case reflect.Int:
			if userInt := int(userField.Int()); userInt != 0 {
				defaultField.SetInt(int64(userInt))
			}
		case reflect.Bool:
			defaultField.SetBool(userField.Bool())
		}
	}

	return defaultConfig
}

func replaceByEnvironment(configuration Config) Config {
	t := reflect.TypeOf(configuration)
	v := reflect.ValueOf(&configuration).Elem()

	prefix := strings.ToUpper(configuration.Name) + "_"
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "name" {
			continue
		}

		if value := os.Getenv(prefix + strings.ToUpper(tag)); value != "" {
			field := v.Field(i)

			switch field.Kind() {
			case reflect.String:
				field.SetString(value)
			case reflect.Int:
				intValue, _ := strconv.Atoi(value)
				field.SetInt(int64(intValue))
			case reflect.Bool:
				boolValue, _ := strconv.ParseBool(value)
				field.SetBool(boolValue)
			}
		}
	}

	return configuration
}

func replaceByViper(configuration Config, vp *viper.Viper) Config {
	t := reflect.TypeOf(configuration)
	v := reflect.ValueOf(&configuration).Elem()

	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "name" || !vp.IsSet(tag) {
			continue
		}

		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(vp.GetString(tag))
		case reflect.Int:
			field.SetInt(int64(vp.GetInt(tag)))
		case reflect.Bool:
			field.SetBool(vp.GetBool(tag))
		}
	}

	return configuration
}
