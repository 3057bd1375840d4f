package cache

import (
	"net/url"
	"time"

	"github.com/kardolus/lms-reports/api"
)

type Entry struct {
	Key       string        `json:"key"`
	Endpoint  string        `json:"endpoint"`
	Params    url.Values    `json:"params,omitempty"`
	Fields    []string      `json:"fields,omitempty"`
	Records   api.ResultSet `json:"records"`
	UpdatedAt time.Time     `json:"updated_at"`
}
