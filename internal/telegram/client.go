package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const apiBase = "https://api.telegram.org"

// Telegram caps messages at 4096 characters; split comfortably below that.
const maxMessageLen = 4000

type Client struct {
	BaseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		BaseURL: apiBase,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing telegram response body: %v", err)
		}
	}()

	body, _ := io.ReadAll(resp.Body)
	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("telegram %s returned status %d: %s", method, resp.StatusCode, string(body))
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram %s failed: %s", method, apiResp.Description)
	}
	if result != nil {
		return json.Unmarshal(apiResp.Result, result)
	}
	return nil
}

// Send delivers text to a chat with Markdown formatting. If the API rejects
// the markup it retries once as plain text so the operator still gets a
// readable reply. Long messages are split on line boundaries.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text) {
		payload := map[string]any{
			"chat_id":    chatID,
			"text":       chunk,
			"parse_mode": "Markdown",
		}
		if err := c.call(ctx, "sendMessage", payload, nil); err != nil {
			log.Printf("Telegram: markdown send failed (%v), retrying plain", err)
			delete(payload, "parse_mode")
			if err := c.call(ctx, "sendMessage", payload, nil); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}
	return nil
}

type fileInfo struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// DownloadFile fetches the raw bytes of an uploaded file along with the
// API-side file path (used to pick a file extension).
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, string, error) {
	var info fileInfo
	if err := c.call(ctx, "getFile", map[string]any{"file_id": fileID}, &info); err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}
	if info.FilePath == "" {
		return nil, "", fmt.Errorf("get file: empty file path for %s", fileID)
	}

	url := fmt.Sprintf("%s/file/bot%s/%s", c.BaseURL, c.token, info.FilePath)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	return data, info.FilePath, nil
}

func splitMessage(text string) []string {
	if len(text) <= maxMessageLen {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > maxMessageLen {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	// One enormous line; fall back to rune splitting.
	if len(chunks) == 0 {
		runes := []rune(text)
		for i := 0; i < len(runes); i += maxMessageLen {
			end := i + maxMessageLen
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, string(runes[i:end]))
		}
	}
	return chunks
}
