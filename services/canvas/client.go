// Package canvas is a read-only client for the Canvas LMS REST API.
package canvas

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/volatiletech/null/v8"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/lms"
)

const defaultPerPage = 50

type (
	course struct {
		ID                     int64  `json:"id"`
		Name                   string `json:"name"`
		CourseCode             string `json:"course_code"`
		AccessRestrictedByDate bool   `json:"access_restricted_by_date"`
		Term                   *struct {
			Name string `json:"name"`
		} `json:"term"`
	}

	assignment struct {
		ID                      int64      `json:"id"`
		Name                    string     `json:"name"`
		DueAt                   *time.Time `json:"due_at"`
		HasSubmittedSubmissions bool       `json:"has_submitted_submissions"`
	}

	// StatusError is returned for non-2xx responses.
	StatusError struct {
		StatusCode int
		Body       string
	}

	Client struct {
		apiURL  string
		token   string
		perPage int
		rest    *rest.Client
	}
)

func (e *StatusError) Error() string {
	return "canvas: unexpected status " + strconv.Itoa(e.StatusCode) + ": " + e.Body
}

var _ lms.Source = (*Client)(nil)

// NewClient returns a Client for conf, or nil when Canvas is not configured.
func NewClient(conf core.CanvasConfig) *Client {
	if !conf.IsConfigured() {
		return nil
	}
	perPage := conf.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return &Client{
		apiURL:  strings.TrimRight(conf.BaseURL, "/") + "/api/v1",
		token:   conf.AccessToken,
		perPage: perPage,
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.Timeout}},
	}
}

// Courses returns the active courses the student may access.
// A course without name falls back to its code, then to "Course <id>".
func (c *Client) Courses(ctx context.Context) ([]lms.RemoteCourse, error) {
	var raw []course
	err := c.fetchAll(ctx, "/courses", map[string]string{
		"enrollment_state": "active",
		"include[]":        "term",
	}, func(body []byte) error {
		var page []course
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		raw = append(raw, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	courses := make([]lms.RemoteCourse, 0, len(raw))
	for _, rc := range raw {
		if rc.AccessRestrictedByDate {
			continue
		}
		name := rc.Name
		if name == "" {
			name = rc.CourseCode
		}
		if name == "" {
			name = "Course " + strconv.FormatInt(rc.ID, 10)
		}
		var term null.String
		if rc.Term != nil {
			term = null.StringFrom(rc.Term.Name)
		}
		courses = append(courses, lms.RemoteCourse{ID: rc.ID, Name: name, Term: term})
	}
	return courses, nil
}

func (c *Client) Assignments(ctx context.Context, courseID int64) ([]lms.RemoteAssignment, error) {
	var assignments []lms.RemoteAssignment
	path := "/courses/" + strconv.FormatInt(courseID, 10) + "/assignments"
	err := c.fetchAll(ctx, path, map[string]string{"include[]": "submission"}, func(body []byte) error {
		var page []assignment
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for _, a := range page {
			ra := lms.RemoteAssignment{ID: a.ID, Name: a.Name, Submitted: a.HasSubmittedSubmissions}
			if a.DueAt != nil {
				ra.DueAt = null.TimeFrom(*a.DueAt)
			}
			assignments = append(assignments, ra)
		}
		return nil
	})
	return assignments, err
}

// fetchAll requests path and every following page announced in the Link header.
func (c *Client) fetchAll(ctx context.Context, path string, params map[string]string, decode func([]byte) error) error {
	query := map[string]string{"per_page": strconv.Itoa(c.perPage)}
	for k, v := range params {
		query[k] = v
	}
	req := rest.Request{
		Method:      rest.Get,
		BaseURL:     c.apiURL + path,
		Headers:     map[string]string{"Authorization": "Bearer " + c.token, "Accept": "application/json"},
		QueryParams: query,
	}

	for {
		res, err := c.send(ctx, req)
		if err != nil {
			return errors.Wrapf(err, "GET %s", req.BaseURL)
		}
		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			return &StatusError{StatusCode: res.StatusCode, Body: res.Body}
		}
		if err = decode([]byte(res.Body)); err != nil {
			return errors.Wrapf(err, "decoding %s", req.BaseURL)
		}

		next := NextLink(headerValue(res.Headers, "Link"))
		if next == "" {
			return nil
		}
		// the next URL already carries the query
		req.BaseURL = next
		req.QueryParams = nil
	}
}

// send is rest.Client.Send bound to ctx.
func (c *Client) send(ctx context.Context, req rest.Request) (*rest.Response, error) {
	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, err
	}
	httpRes, err := c.rest.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer httpRes.Body.Close()
	return rest.BuildResponse(httpRes)
}

func headerValue(headers map[string][]string, key string) string {
	return http.Header(headers).Get(key)
}

// NextLink returns the URL tagged rel="next" in an RFC 5988 Link header.
func NextLink(link string) string {
	for _, part := range strings.Split(link, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		for _, attr := range segments[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return strings.Trim(strings.TrimSpace(segments[0]), "<>")
			}
		}
	}
	return ""
}
