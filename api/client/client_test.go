package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/golang/mock/gomock"
	_ "github.com/golang/mock/mockgen/model"
	"github.com/kardolus/lms-reports/api"
	"github.com/kardolus/lms-reports/api/client"
	"github.com/kardolus/lms-reports/api/http"
	"github.com/kardolus/lms-reports/config"
	"github.com/kardolus/lms-reports/internal"
	. "github.com/onsi/gomega"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=callermocks_test.go -package=client_test github.com/kardolus/lms-reports/api/http Caller

const (
	baseURL = "https://lms.test"
	apiPath = "/api/v1"
	token   = "token"
)

var (
	mockCtrl   *gomock.Controller
	mockCaller *MockCaller
)

func TestUnitClient(t *testing.T) {
	spec.Run(t, "Testing the client package", testClient, spec.Report(report.Terminal{}))
}

func testClient(t *testing.T, when spec.G, it spec.S) {
	var subject *client.Client

	it.Before(func() {
		RegisterTestingT(t)
		mockCtrl = gomock.NewController(t)
		mockCaller = NewMockCaller(mockCtrl)
		subject = client.New(mockCallerFactory, MockConfig(), token)
	})

	it.After(func() {
		mockCtrl.Finish()
	})

	when("FetchAll()", func() {
		const path = "/courses/1/enrollments"
		var ctx context.Context

		it.Before(func() {
			ctx = context.Background()
		})

		it("follows next links across three pages and keeps the order", func() {
			params := url.Values{"per_page": {"2"}, "type[]": {"StudentEnrollment"}}
			page2 := baseURL + apiPath + path + "?page=2&per_page=2"
			page3 := baseURL + apiPath + path + "?page=3&per_page=2"

			gomock.InOrder(
				mockCaller.EXPECT().Get(gomock.Any(), baseURL+apiPath+path, params).
					Return(page(`[{"id":1},{"id":2}]`, page2), nil),
				mockCaller.EXPECT().Get(gomock.Any(), page2, nil).
					Return(page(`[{"id":3},{"id":4}]`, page3), nil),
				mockCaller.EXPECT().Get(gomock.Any(), page3, nil).
					Return(page(`[{"id":5}]`, ""), nil),
			)

			result, err := subject.FetchAll(ctx, path, params, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveLen(5))
			for i, record := range result {
				Expect(record.ID()).To(Equal(int64(i + 1)))
			}
		})

		it("clears the parameters once a next link is followed", func() {
			params := url.Values{"start_time": {"2024-01-01"}}
			next := "https://lms.test/api/v1/users/9/page_views?page=bookmark:abc"

			mockCaller.EXPECT().Get(gomock.Any(), gomock.Any(), params).Return(page(`[{"id":1}]`, next), nil)
			mockCaller.EXPECT().
				Get(gomock.Any(), next, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, p url.Values) (api.HTTPResponse, error) {
					Expect(p).To(BeEmpty())
					return page(`[]`, ""), nil
				})

			result, err := subject.FetchAll(ctx, "/users/9/page_views", params, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveLen(1))
		})

		it("returns an empty result for a resource without records", func() {
			mockCaller.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(page(`[]`, ""), nil).Times(1)

			result, err := subject.FetchAll(ctx, path, nil, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(result).NotTo(BeNil())
			Expect(result).To(BeEmpty())
		})

		it("treats a single object body as one record", func() {
			mockCaller.EXPECT().Get(gomock.Any(), baseURL+apiPath+"/courses/1", gomock.Any()).
				Return(page(`{"id":1,"name":"Course"}`, ""), nil)

			result, err := subject.Fetch(ctx, client.CourseRequest("1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(api.ResultSet{{"id": json.Number("1"), "name": "Course"}}))
		})

		it("projects every record onto the whitelist", func() {
			mockCaller.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(page(`[{"id":1,"url":"/x","extra":"drop-me"},{"id":2}]`, ""), nil)

			result, err := subject.FetchAll(ctx, path, nil, []string{"id", "url"})

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(api.ResultSet{
				{"id": json.Number("1"), "url": "/x"},
				{"id": json.Number("2"), "url": nil},
			}))
		})

		it("passes absolute urls through untouched", func() {
			mockCaller.EXPECT().Get(gomock.Any(), "https://other.test/api/v1/courses", gomock.Any()).
				Return(page(`[]`, ""), nil)

			_, err := subject.FetchAll(ctx, "https://other.test/api/v1/courses", nil, nil)
			Expect(err).NotTo(HaveOccurred())
		})

		type TestCase struct {
			description   string
			setup         func()
			expectedError string
		}

		tests := []TestCase{
			{
				description: "aborts when the first page fails",
				setup: func() {
					mockCaller.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).
						Return(api.HTTPResponse{Status: 500}, errors.New("http status: 500"))
				},
				expectedError: "failed to fetch page 1 of https://lms.test/api/v1/courses/1/enrollments: http status: 500",
			},
			{
				description: "aborts mid-fetch without returning the pages gathered so far",
				setup: func() {
					next := baseURL + apiPath + path + "?page=2"
					gomock.InOrder(
						mockCaller.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(page(`[{"id":1}]`, next), nil),
						mockCaller.EXPECT().Get(gomock.Any(), next, gomock.Any()).
							Return(api.HTTPResponse{Status: 403}, errors.New("http status 403: unauthorized")),
					)
				},
				expectedError: "failed to fetch page 2 of https://lms.test/api/v1/courses/1/enrollments?page=2: http status 403: unauthorized",
			},
			{
				description: "throws an error when a page is malformed json",
				setup: func() {
					mockCaller.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(page(`[{"id":1}`, ""), nil)
				},
				expectedError: "failed to decode page 1 of https://lms.test/api/v1/courses/1/enrollments:",
			},
			{
				description: "throws an error when the server links a page to itself",
				setup: func() {
					self := baseURL + apiPath + path
					mockCaller.EXPECT().Get(gomock.Any(), self, gomock.Any()).Return(page(`[{"id":1}]`, self), nil).Times(1)
				},
				expectedError: "pagination cycle detected at page 2",
			},
		}

		for _, tt := range tests {
			tt := tt
			it(tt.description, func() {
				tt.setup()

				result, err := subject.FetchAll(ctx, path, nil, nil)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(HavePrefix(tt.expectedError))
				Expect(result).To(BeNil())
			})
		}
	})

	when("debug is enabled", func() {
		var (
			out     bytes.Buffer
			restore func()
		)

		it.Before(func() {
			out.Reset()
			restore = zap.ReplaceGlobals(internal.NewLogger(&out, &out, true))

			cfg := MockConfig()
			cfg.Debug = true
			subject = client.New(mockCallerFactory, cfg, token)
		})

		it.After(func() {
			restore()
		})

		it("prints a curl command without the token and the response body", func() {
			params := url.Values{"per_page": {"100"}}
			mockCaller.EXPECT().Get(gomock.Any(), baseURL+apiPath+"/courses/5", params).
				Return(page(`{"id":5}`, ""), nil)

			_, err := subject.FetchAll(context.Background(), "/courses/5", params, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(out.String()).To(ContainSubstring("curl --location --request GET '" + baseURL + apiPath + "/courses/5?per_page=100'"))
			Expect(out.String()).To(ContainSubstring("${LMS_API_TOKEN}"))
			Expect(out.String()).NotTo(ContainSubstring("Bearer " + token))
			Expect(out.String()).To(ContainSubstring(`{"id":5}`))
		})
	})

	when("request builders", func() {
		it("adds enrollment types and the enrollment whitelist", func() {
			req := client.EnrollmentsRequest("12", []string{"StudentEnrollment", "TaEnrollment"}, 100)

			Expect(req.Path).To(Equal("/courses/12/enrollments"))
			Expect(req.Params).To(Equal(url.Values{
				"per_page": {"100"},
				"type[]":   {"StudentEnrollment", "TaEnrollment"},
			}))
			Expect(req.Whitelist).To(Equal([]string{"id", "course_id", "user_id"}))
		})
		it("builds page view requests for a date range", func() {
			req := client.UserPageViewsRequest(7, "2024-01-01", "2024-03-31", 50, client.PageViewFields)

			Expect(req.Path).To(Equal("/users/7/page_views"))
			Expect(req.Params.Get("start_time")).To(Equal("2024-01-01"))
			Expect(req.Params.Get("end_time")).To(Equal("2024-03-31"))
			Expect(req.Params.Get("per_page")).To(Equal("50"))
		})
		it("omits the term filter when no term is given", func() {
			req := client.AccountCoursesRequest("1", "", 0)

			Expect(req.Params).To(Equal(url.Values{"include[]": {"term"}}))
		})
		it("asks for rubric assessments on submissions", func() {
			req := client.SubmissionsRequest("3", 44, 100)

			Expect(req.Path).To(Equal("/courses/3/assignments/44/submissions"))
			Expect(req.Params.Get("include[]")).To(Equal("rubric_assessment"))
		})
	})
}

func mockCallerFactory(_ config.Config, _ string) http.Caller {
	return mockCaller
}

func MockConfig() config.Config {
	return config.Config{
		Name:       "lms",
		URL:        baseURL,
		APIPath:    apiPath,
		AuthHeader: "Authorization",
		UserAgent:  "lms-reports-test",
		PerPage:    100,
	}
}

func page(body, next string) api.HTTPResponse {
	headers := map[string]string{}
	if next != "" {
		headers["Link"] = `<` + next + `>; rel="next", <https://lms.test/first>; rel="first"`
	}
	return api.HTTPResponse{Status: 200, Headers: headers, Body: []byte(body)}
}
