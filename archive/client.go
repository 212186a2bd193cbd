package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/marcus-crane/curator/utils"
)

const (
	DefaultBaseURL = "https://archive.org"

	SEARCH_ENDPOINT   = "/advancedsearch.php"
	METADATA_ENDPOINT = "/metadata/"
	DOWNLOAD_ENDPOINT = "/download/"
)

// StatusError is returned whenever the archive answers with anything other
// than a 2xx status
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Throttle is consulted before every outbound request
	Throttle *utils.Throttle
	RPSLimit float64
}

func NewClient(httpClient *http.Client, rpsLimit float64) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: httpClient,
		Throttle:   utils.NewThrottle(),
		RPSLimit:   rpsLimit,
	}
}

type SearchParams struct {
	Query  string
	Fields []string
	Rows   int
	// Sort is passed through as sort[], eg. random_1234
	Sort string
}

type SearchDoc struct {
	Identifier  string     `json:"identifier"`
	Title       FlexString `json:"title"`
	Description FlexString `json:"description"`
	Duration    FlexNumber `json:"duration"`
}

type searchResponse struct {
	Response struct {
		NumFound int         `json:"numFound"`
		Docs     []SearchDoc `json:"docs"`
	} `json:"response"`
}

type File struct {
	Name   string     `json:"name"`
	Format string     `json:"format"`
	Size   FlexNumber `json:"size"`
}

type Metadata struct {
	Files []File `json:"files"`
}

func (c *Client) buildURL(endpoint string, params url.Values) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if len(params) == 0 {
		return base + endpoint
	}
	return base + endpoint + "?" + params.Encode()
}

func (c *Client) get(ctx context.Context, endpoint string, accept string) (*http.Response, error) {
	c.Throttle.Wait(c.RPSLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Body.Close()
		return nil, &StatusError{StatusCode: res.StatusCode, URL: endpoint}
	}
	return res, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	res, err := c.get(ctx, endpoint, "application/json")
	if err != nil {
		return err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// Search runs a single advanced search request and returns the matching docs
func (c *Client) Search(ctx context.Context, params SearchParams) ([]SearchDoc, error) {
	values := url.Values{}
	values.Set("q", params.Query)
	for _, field := range params.Fields {
		values.Add("fl[]", field)
	}
	values.Set("rows", fmt.Sprint(params.Rows))
	values.Set("output", "json")
	if params.Sort != "" {
		values.Set("sort[]", params.Sort)
	}

	var searchRes searchResponse
	if err := c.getJSON(ctx, c.buildURL(SEARCH_ENDPOINT, values), &searchRes); err != nil {
		return nil, fmt.Errorf("failed to search archive: %w", err)
	}
	return searchRes.Response.Docs, nil
}

func (c *Client) Metadata(ctx context.Context, identifier string) (Metadata, error) {
	var metadata Metadata
	endpoint := c.buildURL(METADATA_ENDPOINT+url.PathEscape(identifier), nil)
	if err := c.getJSON(ctx, endpoint, &metadata); err != nil {
		return metadata, fmt.Errorf("failed to fetch metadata for %s: %w", identifier, err)
	}
	return metadata, nil
}

// DownloadURL builds the public link for a file inside an item. File names
// may contain directories, each segment is escaped on its own.
func (c *Client) DownloadURL(identifier, fileName string) string {
	segments := strings.Split(fileName, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return c.buildURL(DOWNLOAD_ENDPOINT+url.PathEscape(identifier)+"/"+strings.Join(segments, "/"), nil)
}

// Open starts streaming the file at fileURL. The caller owns the body.
func (c *Client) Open(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	res, err := c.get(ctx, fileURL, "")
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fileURL, err)
	}
	return res.Body, nil
}
