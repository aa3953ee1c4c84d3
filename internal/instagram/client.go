// Package instagram is the boundary to the external publishing service.
// Publish failures may be soft ("please wait a few minutes") or hard; the
// caller tells them apart by the message.
package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const defaultBaseURL = "https://i.instagram.com/api/v1"

type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	sessionID  string
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    baseURL,
	}
}

type loginResponse struct {
	LoggedIn  bool   `json:"logged_in"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/accounts/login/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to decode login response: %w", err)
	}

	if !result.LoggedIn {
		if result.Message == "" {
			result.Message = resp.Status
		}
		return errors.New(result.Message)
	}

	c.username = username
	c.sessionID = result.SessionID
	return nil
}

func (c *Client) PhotoUpload(ctx context.Context, path, caption string) (string, error) {
	return c.upload(ctx, "/media/photo/", []string{path}, caption)
}

func (c *Client) VideoUpload(ctx context.Context, path, caption string) (string, error) {
	return c.upload(ctx, "/media/video/", []string{path}, caption)
}

func (c *Client) AlbumUpload(ctx context.Context, paths []string, caption string) (string, error) {
	return c.upload(ctx, "/media/album/", paths, caption)
}

type uploadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Media   struct {
		PK string `json:"pk"`
	} `json:"media"`
}

// upload sends the media files and caption as one multipart request and
// returns the handle of the created media.
func (c *Client) upload(ctx context.Context, endpoint string, paths []string, caption string) (string, error) {
	if c.sessionID == "" {
		return "", errors.New("client is not logged in")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return "", err
		}
		part, err := writer.CreateFormFile("files", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		file.Close()
		if err != nil {
			return "", err
		}
	}
	if err := writer.WriteField("caption", caption); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: c.sessionID})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	// The service reports its own pacing rules in the message, e.g.
	// "please wait a few minutes before you try again".
	if result.Status != "ok" {
		if result.Message == "" {
			result.Message = resp.Status
		}
		return "", errors.New(result.Message)
	}

	return result.Media.PK, nil
}
