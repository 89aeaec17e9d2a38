package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	DisplayName     string `json:"displayName"`
	MarketplaceRole string `json:"marketplaceRole"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Artwork struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	ImageURL string   `json:"imageUrl"`
	Tags     []string `json:"tags"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"displayName"`
	ContentID   string `json:"contentId"`
	Score       int    `json:"score"`
	MaxScore    int    `json:"maxScore"`
	TimeSpent   int    `json:"timeSpent"`
}

// RegisterUser creates a new account with a unique username
func (c *APIClient) RegisterUser(baseName, displayName string) (*User, string, error) {
	username := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)

	body := map[string]string{
		"username":    username,
		"email":       username + "@seed.heritage.test",
		"password":    "testpassword123",
		"displayName": displayName,
	}

	resp, err := c.do(http.MethodPost, "/auth/register", body, "")
	if err != nil {
		return nil, "", fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusCreated, "register"); err != nil {
		return nil, "", err
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}

	return &result.User, result.AccessToken, nil
}

// SetRole switches the user's marketplace role
func (c *APIClient) SetRole(token, role string) error {
	resp, err := c.do(http.MethodPut, "/users/me", map[string]string{"marketplaceRole": role}, token)
	if err != nil {
		return fmt.Errorf("update profile request failed: %w", err)
	}
	defer resp.Body.Close()

	return expectStatus(resp, http.StatusOK, "update profile")
}

// UploadArtwork sends a multipart upload with the image under the "artwork" field
func (c *APIClient) UploadArtwork(token, title, description, tags, fileName string, image []byte) (*Artwork, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("title", title)
	writer.WriteField("description", description)
	writer.WriteField("tags", tags)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="artwork"; filename=%q`, fileName))
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/artworks/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusCreated, "upload"); err != nil {
		return nil, err
	}

	var artwork Artwork
	if err := json.NewDecoder(resp.Body).Decode(&artwork); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &artwork, nil
}

// SubmitScore records one game session
func (c *APIClient) SubmitScore(token, contentID string, score, maxScore, timeSpent int) error {
	body := map[string]interface{}{
		"contentId":   contentID,
		"score":       score,
		"maxScore":    maxScore,
		"timeSpent":   timeSpent,
		"isCompleted": true,
	}

	resp, err := c.do(http.MethodPost, "/games/sessions", body, token)
	if err != nil {
		return fmt.Errorf("submit score request failed: %w", err)
	}
	defer resp.Body.Close()

	return expectStatus(resp, http.StatusCreated, "submit score")
}

// Leaderboard fetches the ranked sessions for contentID
func (c *APIClient) Leaderboard(contentID string, limit int) ([]LeaderboardEntry, error) {
	query := url.Values{}
	if contentID != "" {
		query.Set("contentId", contentID)
	}
	query.Set("limit", strconv.Itoa(limit))

	resp, err := c.do(http.MethodGet, "/games/leaderboard?"+query.Encode(), nil, "")
	if err != nil {
		return nil, fmt.Errorf("leaderboard request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := expectStatus(resp, http.StatusOK, "leaderboard"); err != nil {
		return nil, err
	}

	var entries []LeaderboardEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return entries, nil
}

// HTTP helpers

func (c *APIClient) do(method, path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func expectStatus(resp *http.Response, want int, action string) error {
	if resp.StatusCode == want {
		return nil
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s failed (status %d): %s", action, resp.StatusCode, string(bodyBytes))
}
