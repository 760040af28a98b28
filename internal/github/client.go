package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const apiBase = "https://api.github.com"

// ErrNotFound is returned when the requested path does not exist on the ref.
var ErrNotFound = errors.New("github: not found")

// ErrConflict is returned when a write carries a stale blob SHA, meaning
// another writer committed first. Callers must not retry automatically.
var ErrConflict = errors.New("github: sha conflict")

// Client talks to the GitHub contents API: versioned reads (content + blob
// SHA) and conditional writes (SHA required to update an existing file).
type Client struct {
	BaseURL    string
	token      string
	owner      string
	repo       string
	httpClient *http.Client
}

func NewClient(token, owner, repo string) *Client {
	return &Client{
		BaseURL: apiBase,
		token:   token,
		owner:   owner,
		repo:    repo,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type contentsResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

func (c *Client) contentsURL(path, ref string) string {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.BaseURL, c.owner, c.repo, path)
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}
	return u
}

// GetFile reads a file at path on ref and returns its raw bytes plus the
// blob SHA acting as the version token. A missing file returns ErrNotFound.
func (c *Client) GetFile(ctx context.Context, path, ref string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.contentsURL(path, ref), nil)
	if err != nil {
		return nil, "", err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get contents: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing github response body: %v", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("get contents %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	var contents contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&contents); err != nil {
		return nil, "", fmt.Errorf("decode contents: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(removeNewlines(contents.Content))
	if err != nil {
		return nil, "", fmt.Errorf("decode base64 content: %w", err)
	}
	return data, contents.SHA, nil
}

// PutFile creates or updates a file. sha must be the current blob SHA when
// updating and empty when creating; a stale SHA yields ErrConflict.
func (c *Client) PutFile(ctx context.Context, path string, content []byte, sha, branch, message string) error {
	reqBody := putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  branch,
		SHA:     sha,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "PUT", c.contentsURL(path, ""), bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("put contents: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		// 409 for branch races, 422 for "sha does not match".
		return ErrConflict
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("put contents %s: status %d: %s", path, resp.StatusCode, string(body))
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}

// The contents API wraps base64 payloads with newlines.
func removeNewlines(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			buf = append(buf, s[i])
		}
	}
	return string(buf)
}
