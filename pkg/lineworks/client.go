package lineworks

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stmiyata/seibi-backend/config"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

var (
	ErrNotConfigured = errors.New("lineworks is not configured")
	ErrTokenRequest  = errors.New("lineworks token request failed")
	ErrSendMessage   = errors.New("lineworks message send failed")
)

// Client talks to the LINE WORKS bot API. Access tokens are obtained
// with a service-account JWT assertion and cached until shortly before
// they expire.
type Client struct {
	cfg        config.LineWorksConfig
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg config.LineWorksConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether all required credentials are present
func (c *Client) Enabled() bool {
	return c.cfg.ClientID != "" &&
		c.cfg.ClientSecret != "" &&
		c.cfg.ServiceAccount != "" &&
		c.cfg.PrivateKeyPath != "" &&
		c.cfg.BotID != ""
}

// GetAccessToken returns a cached token or requests a new one
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	assertion, err := c.buildAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("assertion", assertion)
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("scope", "bot")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		logger.Error("LINE WORKS token request failed", ErrTokenRequest, map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return "", fmt.Errorf("%w: status %d", ErrTokenRequest, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrTokenRequest)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(50 * time.Minute)

	logger.Debug("LINE WORKS access token obtained", nil)
	return c.accessToken, nil
}

// buildAssertion signs the service-account JWT with the bot private key
func (c *Client) buildAssertion() (string, error) {
	keyData, err := os.ReadFile(c.cfg.PrivateKeyPath)
	if err != nil {
		return "", fmt.Errorf("failed to read private key: %w", err)
	}

	privateKey, err := parsePrivateKey(keyData)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": c.cfg.ClientID,
		"sub": c.cfg.ServiceAccount,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(privateKey)
}

func parsePrivateKey(data []byte) (interface{}, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM private key")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, errors.New("unsupported private key format")
}

// SendTextMessage sends a text message to a LINE WORKS user via the bot
func (c *Client) SendTextMessage(ctx context.Context, userID, text string) error {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"content": map[string]string{
			"type": "text",
			"text": text,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bots/%s/users/%s/messages", c.cfg.APIBaseURL, c.cfg.BotID, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendMessage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(resp.Body)
		logger.Error("LINE WORKS message send failed", ErrSendMessage, map[string]interface{}{
			"status":  resp.StatusCode,
			"body":    string(respBody),
			"user_id": userID,
		})
		return fmt.Errorf("%w: status %d", ErrSendMessage, resp.StatusCode)
	}

	logger.Info("LINE WORKS message sent", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
