package api

import "strings"

type HTTPResponse struct {
	Status  int
	URL     string
	Headers map[string]string
	Body    []byte
}

// Header looks up a response header without regard to case.
func (r HTTPResponse) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// ErrorResponse is the body the LMS returns alongside a non-2xx status.
type ErrorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Message string `json:"message"`
}

func (e ErrorResponse) Text() string {
	var parts []string
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	for _, m := range e.Errors {
		if m.Message != "" {
			parts = append(parts, m.Message)
		}
	}
	return strings.Join(parts, "; ")
}
