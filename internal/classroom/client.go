package classroom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/config"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/logger"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/pkg/errors"

	"github.com/rs/zerolog"
)

const (
	defaultClassroomBaseURL = "https://classroom.googleapis.com"
	defaultDirectoryBaseURL = "https://admin.googleapis.com"
)

// Client is the REST gateway over the Classroom and Admin Directory APIs.
// The http.Client carries the credential (service-account or admin OAuth);
// the Client itself is credential-agnostic.
type Client struct {
	cfg              config.GoogleConfig
	httpClient       *http.Client
	classroomBaseURL string
	directoryBaseURL string
	directoryEnabled bool
	log              zerolog.Logger
}

func NewClient(cfg config.GoogleConfig, httpClient *http.Client, directoryEnabled bool) *Client {
	classroomBase := cfg.ClassroomBaseURL
	if classroomBase == "" {
		classroomBase = defaultClassroomBaseURL
	}
	directoryBase := cfg.DirectoryBaseURL
	if directoryBase == "" {
		directoryBase = defaultDirectoryBaseURL
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = cfg.Timeout
	}

	return &Client{
		cfg:              cfg,
		httpClient:       httpClient,
		classroomBaseURL: classroomBase,
		directoryBaseURL: directoryBase,
		directoryEnabled: directoryEnabled,
		log:              logger.Get(),
	}
}

// NewGateway builds a Client for the given credential context.
func NewGateway(ctx context.Context, cfg config.GoogleConfig, cred CredentialContext) (*Client, error) {
	httpClient, err := cred.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s client: %w", cred.Name(), err)
	}
	return NewClient(cfg, httpClient, cred.DirectoryEnabled()), nil
}

func (c *Client) ListCourses(ctx context.Context, pageSize int, pageToken string) (*CoursePage, error) {
	u := c.classroomBaseURL + "/v1/courses?" + pageQuery(pageSize, pageToken)

	var page CoursePage
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListStudents(ctx context.Context, courseID string, pageSize int, pageToken string) (*MemberPage, error) {
	u := fmt.Sprintf("%s/v1/courses/%s/students?%s",
		c.classroomBaseURL, url.PathEscape(courseID), pageQuery(pageSize, pageToken))

	var page MemberPage
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListTeachers(ctx context.Context, courseID string, pageSize int, pageToken string) (*MemberPage, error) {
	u := fmt.Sprintf("%s/v1/courses/%s/teachers?%s",
		c.classroomBaseURL, url.PathEscape(courseID), pageQuery(pageSize, pageToken))

	var page MemberPage
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListCourseWork(ctx context.Context, courseID string, pageSize int, pageToken string) (*CourseWorkPage, error) {
	u := fmt.Sprintf("%s/v1/courses/%s/courseWork?%s",
		c.classroomBaseURL, url.PathEscape(courseID), pageQuery(pageSize, pageToken))

	var page CourseWorkPage
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListSubmissions(ctx context.Context, courseID, courseWorkID string, pageSize int, pageToken string) (*SubmissionPage, error) {
	u := fmt.Sprintf("%s/v1/courses/%s/courseWork/%s/studentSubmissions?%s",
		c.classroomBaseURL, url.PathEscape(courseID), url.PathEscape(courseWorkID),
		pageQuery(pageSize, pageToken))

	var page SubmissionPage
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) LookupUserProfile(ctx context.Context, userKey string) (*model.DirectoryUser, error) {
	if !c.directoryEnabled {
		return nil, errors.ErrDirectoryDisabled
	}

	u := fmt.Sprintf("%s/admin/directory/v1/users/%s?projection=full",
		c.directoryBaseURL, url.PathEscape(userKey))

	var user model.DirectoryUser
	if err := c.getJSON(ctx, u, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// getJSON issues the GET with bounded retry on transient failures. Attempts
// are spaced by retry_delay * attempt.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		err := c.doGet(ctx, url, out)
		if err == nil {
			return nil
		}
		if !errors.IsRetryable(err) {
			return err
		}

		lastErr = err
		c.log.Warn().Err(err).Int("attempt", attempt+1).Str("url", url).Msg("Remote call failed, retrying")
	}
	return lastErr
}

func (c *Client) doGet(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewRetryableError(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", errors.ErrAuthenticationFailed, resp.StatusCode)
	case http.StatusTooManyRequests, http.StatusServiceUnavailable,
		http.StatusInternalServerError, http.StatusBadGateway:
		return errors.NewRetryableError(fmt.Errorf("HTTP %d", resp.StatusCode), "remote service unavailable")
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("remote returned status %d: %s", resp.StatusCode, string(body))
	}
}

func pageQuery(pageSize int, pageToken string) string {
	params := url.Values{}
	params.Add("pageSize", strconv.Itoa(pageSize))
	if pageToken != "" {
		params.Add("pageToken", pageToken)
	}
	return params.Encode()
}
