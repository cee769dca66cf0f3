package timetable

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TransportError reports a failed fetch from the timetable site: either
// the request itself failed (Err set) or the server answered with a
// non-2xx status (StatusCode set).
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("timetable fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("timetable fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client fetches raw pages from the university timetable site. Every
// request carries a bounded timeout. The client never retries; retry
// policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	ajaxURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimRight(baseURL, "/") + "/"
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		ajaxURL:    base + "ajax.php",
	}
}

// FetchIndex retrieves the landing page listing all faculties.
func (c *Client) FetchIndex(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.baseURL)
}

// FetchFacultyPage retrieves the page listing one faculty's groups.
func (c *Client) FetchFacultyPage(ctx context.Context, facultyID string) ([]byte, error) {
	return c.get(ctx, c.baseURL+"index.php?fak="+url.QueryEscape(facultyID))
}

// FetchTimetable posts the faculty/group form to the AJAX endpoint and
// returns the rendered schedule table.
func (c *Client) FetchTimetable(ctx context.Context, facultyID, group string) ([]byte, error) {
	form := url.Values{"fak": {facultyID}, "q": {group}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ajaxURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{URL: c.ajaxURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: req.URL.String(), Err: err}
	}
	return body, nil
}
