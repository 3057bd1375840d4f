package config

type Config struct {
	Name          string `yaml:"name"`
	URL           string `yaml:"url"`
	APIPath       string `yaml:"api_path"`
	APIToken      string `yaml:"api_token"`
	APITokenFile  string `yaml:"api_token_file"`
	PerPage       int    `yaml:"per_page"`
	Timeout       int    `yaml:"timeout"`
	MaxRetries    int    `yaml:"max_retries"`
	RetryWait     int    `yaml:"retry_wait"`
	RetryMaxWait  int    `yaml:"retry_max_wait"`
	CacheMode     string `yaml:"cache_mode"`
	CacheDir      string `yaml:"cache_dir"`
	OutputDir     string `yaml:"output_dir"`
	Timezone      string `yaml:"timezone"`
	UserAgent     string `yaml:"user_agent"`
	AuthHeader    string `yaml:"auth_header"`
	SkipTLSVerify bool   `yaml:"skip_tls_verify"`
	OtelEndpoint  string `yaml:"otel_endpoint"`
	Debug         bool   `yaml:"debug"`
}

// APIBaseURL is the prefix every relative resource path is joined to.
func (c Config) APIBaseURL() string {
	return trimSlash(c.URL) + c.APIPath
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
