package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/kardolus/lms-reports/api"
)

const (
	paramPerPage          = "per_page"
	paramInclude          = "include[]"
	paramEnrollmentType   = "type[]"
	paramUserEnrollment   = "enrollment_type[]"
	paramEnrollmentTermID = "enrollment_term_id"
	paramStartTime        = "start_time"
	paramEndTime          = "end_time"
)

var (
	EnrollmentFields = []string{"id", "course_id", "user_id"}
	PageViewFields   = []string{"id", "url"}
)

func CourseRequest(courseID string) api.Request {
	return api.Request{Path: fmt.Sprintf("/courses/%s", courseID)}
}

// ListCoursesRequest lists the courses of the token's owner.
func ListCoursesRequest(perPage int) api.Request {
	params := pageParams(perPage)
	params.Add(paramInclude, "term")
	return api.Request{Path: "/courses", Params: params}
}

func AccountCoursesRequest(accountID, termID string, perPage int) api.Request {
	params := pageParams(perPage)
	params.Add(paramInclude, "term")
	if termID != "" {
		params.Set(paramEnrollmentTermID, termID)
	}
	return api.Request{Path: fmt.Sprintf("/accounts/%s/courses", accountID), Params: params}
}

// EnrollmentsRequest lists course enrollments, optionally restricted to the
// given enrollment types, keeping only the fields needed to find users.
func EnrollmentsRequest(courseID string, types []string, perPage int) api.Request {
	params := pageParams(perPage)
	for _, t := range types {
		params.Add(paramEnrollmentType, t)
	}
	return api.Request{
		Path:      fmt.Sprintf("/courses/%s/enrollments", courseID),
		Params:    params,
		Whitelist: EnrollmentFields,
	}
}

func CourseStudentsRequest(courseID string, perPage int) api.Request {
	params := pageParams(perPage)
	params.Add(paramUserEnrollment, "student")
	params.Add(paramInclude, "email")
	return api.Request{Path: fmt.Sprintf("/courses/%s/users", courseID), Params: params}
}

// UserPageViewsRequest lists a user's page views in [start, end]. When
// whitelist is nil the records are kept whole.
func UserPageViewsRequest(userID int64, start, end string, perPage int, whitelist []string) api.Request {
	params := pageParams(perPage)
	params.Set(paramStartTime, start)
	params.Set(paramEndTime, end)
	return api.Request{
		Path:      fmt.Sprintf("/users/%s/page_views", strconv.FormatInt(userID, 10)),
		Params:    params,
		Whitelist: whitelist,
	}
}

func AssignmentsRequest(courseID string, perPage int) api.Request {
	return api.Request{Path: fmt.Sprintf("/courses/%s/assignments", courseID), Params: pageParams(perPage)}
}

func SubmissionsRequest(courseID string, assignmentID int64, perPage int) api.Request {
	params := pageParams(perPage)
	params.Add(paramInclude, "rubric_assessment")
	return api.Request{
		Path:   fmt.Sprintf("/courses/%s/assignments/%d/submissions", courseID, assignmentID),
		Params: params,
	}
}

func pageParams(perPage int) url.Values {
	params := url.Values{}
	if perPage > 0 {
		params.Set(paramPerPage, strconv.Itoa(perPage))
	}
	return params
}
