package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	defaultTokenURI   = "https://oauth2.googleapis.com/token" //nolint:gosec // public endpoint
	defaultBaseURL    = "https://sheets.googleapis.com"
	spreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"
	jwtBearerGrant    = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	assertionTTL = time.Hour

	// tokens are refreshed this long before Google says they expire
	expirySkew = time.Minute
)

// Credentials is the subset of a service-account key file the client needs.
type Credentials struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ParseCredentials decodes a service-account JSON key. Keys pasted into env
// vars often carry literal "\n" sequences; those are turned back into newlines.
func ParseCredentials(raw string) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, errors.Wrap(err, "parse service account credentials")
	}
	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return nil, errors.New("service account credentials need client_email and private_key")
	}
	creds.PrivateKey = strings.ReplaceAll(creds.PrivateKey, `\n`, "\n")
	if creds.TokenURI == "" {
		creds.TokenURI = defaultTokenURI
	}
	return &creds, nil
}

// Client appends rows to Google Sheets as a service account.
type Client interface {
	Append(ctx context.Context, spreadsheetID, sheet string, row []any) (string, error)
}

type clientImpl struct {
	creds      *Credentials
	baseURL    string
	httpClient *http.Client
	now        func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

type Option func(*clientImpl)

func WithBaseURL(u string) Option {
	return func(c *clientImpl) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientImpl) { c.httpClient = hc }
}

// NewClient creates a Sheets client for the given service account.
func NewClient(creds *Credentials, opts ...Option) Client {
	c := &clientImpl{
		creds:      creds,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// assertion builds the signed RS256 JWT exchanged for an access token.
func (c *clientImpl) assertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(c.creds.PrivateKey))
	if err != nil {
		return "", errors.Wrap(err, "parse service account private key")
	}

	iat := c.now()
	claims := jwt.MapClaims{
		"iss":   c.creds.ClientEmail,
		"scope": spreadsheetsScope,
		"aud":   c.creds.TokenURI,
		"iat":   iat.Unix(),
		"exp":   iat.Add(assertionTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, "sign service account assertion")
	}
	return signed, nil
}

func (c *clientImpl) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expires) {
		return c.token, nil
	}

	assertion, err := c.assertion()
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "token exchange failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("failed to get access token: %s", strings.TrimSpace(string(body)))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", errors.Wrap(err, "failed to decode token response")
	}
	if tok.AccessToken == "" {
		return "", errors.New("token response carried no access_token")
	}

	c.token = tok.AccessToken
	c.expires = c.now().Add(time.Duration(tok.ExpiresIn)*time.Second - expirySkew)
	return c.token, nil
}

// Append adds one row after the last row of the sheet tab and returns the
// range Google reports as updated.
func (c *clientImpl) Append(ctx context.Context, spreadsheetID, sheet string, row []any) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{"values": [][]any{row}})
	if err != nil {
		return "", errors.Wrap(err, "error creating payload")
	}

	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=RAW",
		c.baseURL, url.PathEscape(spreadsheetID), url.PathEscape(sheet))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "append request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "error reading response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("Google Sheets API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Updates struct {
			UpdatedRange string `json:"updatedRange"`
		} `json:"updates"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", errors.Wrap(err, "failed to decode append response")
	}
	return result.Updates.UpdatedRange, nil
}
