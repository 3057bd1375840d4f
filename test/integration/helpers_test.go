package integration_test

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kardolus/lms-reports/test"
	"github.com/onsi/gomega/gexec"
)

const (
	expectedToken = "valid-api-token"
	apiPath       = "/api/v1"
	placeholder   = "SERVER"
)

var (
	onceBuild  sync.Once
	binaryPath string
)

func buildBinary() error {
	var err error
	onceBuild.Do(func() {
		binaryPath, err = gexec.Build(
			"github.com/kardolus/lms-reports/cmd/lmsreport",
			"-ldflags",
			fmt.Sprintf("-X main.GitCommit=%s -X main.GitVersion=%s", gitCommit, gitVersion))
	})
	return err
}

// mockLMS serves fixtures from test/data and counts the requests it gets.
type mockLMS struct {
	server   *httptest.Server
	requests atomic.Int64
}

func newMockLMS() *mockLMS {
	m := &mockLMS{}

	mux := http.NewServeMux()
	mux.HandleFunc(apiPath+"/courses/42", m.fixture("course.json"))
	mux.HandleFunc(apiPath+"/courses/42/enrollments", m.enrollments)
	mux.HandleFunc(apiPath+"/courses/42/users", m.fixture("students.json"))
	mux.HandleFunc(apiPath+"/users/5/page_views", m.fixture("page_views_5.json"))
	mux.HandleFunc(apiPath+"/users/7/page_views", m.fixture("page_views_7.json"))
	mux.HandleFunc(apiPath+"/courses/13/users", m.failure)

	m.server = httptest.NewServer(mux)
	return m
}

func (m *mockLMS) URL() string {
	return m.server.URL
}

func (m *mockLMS) Requests() int64 {
	return m.requests.Load()
}

func (m *mockLMS) Close() {
	m.server.Close()
}

func (m *mockLMS) fixture(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.accept(w, r) {
			return
		}
		m.write(w, name)
	}
}

// enrollments is served in two pages.
func (m *mockLMS) enrollments(w http.ResponseWriter, r *http.Request) {
	if !m.accept(w, r) {
		return
	}

	if r.URL.Query().Get("page") == "2" {
		m.write(w, "enrollments_page2.json")
		return
	}

	next := fmt.Sprintf("%s%s/courses/42/enrollments?page=2&per_page=100", m.server.URL, apiPath)
	w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="current", <%s>; rel="next"`, r.URL.String(), next))
	m.write(w, "enrollments_page1.json")
}

func (m *mockLMS) failure(w http.ResponseWriter, r *http.Request) {
	if !m.accept(w, r) {
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	m.write(w, "error.json")
}

func (m *mockLMS) accept(w http.ResponseWriter, r *http.Request) bool {
	m.requests.Add(1)

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	if err := checkBearerToken(r, expectedToken); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		m.write(w, "error.json")
		return false
	}
	return true
}

func (m *mockLMS) write(w http.ResponseWriter, name string) {
	data, err := test.FileToBytes(name)
	if err != nil {
		fmt.Printf("error reading %s: %s\n", name, err.Error())
		return
	}
	_, _ = w.Write(bytes.ReplaceAll(data, []byte(placeholder), []byte(m.server.URL)))
}

func checkBearerToken(r *http.Request, expectedToken string) error {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing Authorization header")
	}

	splitToken := strings.Split(authHeader, "Bearer ")
	if len(splitToken) != 2 {
		return errors.New("malformed Authorization header")
	}

	if splitToken[1] != expectedToken {
		return errors.New("invalid token")
	}

	return nil
}
