package twilio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/stylemirror/backend/internal/config"
)

var (
	// ErrMediaUnavailable reports an inbound image that could not be
	// retrieved from the transport.
	ErrMediaUnavailable = errors.New("media unavailable")

	// ErrDispatchFailed reports an outbound reply the transport rejected.
	ErrDispatchFailed = errors.New("dispatch failed")
)

const apiBase = "https://api.twilio.com"

// Client wraps the Twilio REST API: it resolves inbound media references
// into image bytes and sends outbound WhatsApp replies.
type Client struct {
	rest       *twilio.RestClient
	http       *http.Client
	accountSID string
	authToken  string
	from       string
	mediaBase  string
}

// NewClient builds a transport client from the configured credentials.
func NewClient(cfg config.TwilioConfig) *Client {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &Client{
		rest:       rest,
		http:       &http.Client{Timeout: 60 * time.Second},
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.WhatsAppFrom,
		mediaBase:  apiBase,
	}
}

// FetchMedia resolves an inbound media URL into the image bytes it points
// at. Resolution is two steps: look up the media resource metadata via
// the REST API, then download the binary with basic auth. Any failure on
// either step surfaces as ErrMediaUnavailable.
func (c *Client) FetchMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	messageSid, mediaSid, err := parseMediaRef(mediaURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaUnavailable, err)
	}

	media, err := c.rest.Api.FetchMedia(messageSid, mediaSid, &openapi.FetchMediaParams{})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch media resource %s: %v", ErrMediaUnavailable, mediaSid, err)
	}
	if media.Uri == nil || *media.Uri == "" {
		return nil, fmt.Errorf("%w: media resource %s has no uri", ErrMediaUnavailable, mediaSid)
	}

	// The metadata URI points at the JSON representation; stripping the
	// suffix yields the binary download location.
	binaryURL := c.mediaBase + strings.TrimSuffix(*media.Uri, ".json")
	data, err := c.download(ctx, binaryURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaUnavailable, err)
	}
	return data, nil
}

func (c *Client) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("media download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// SendText sends a plain text message to the user.
func (c *Client) SendText(to, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetFrom(c.from)
	params.SetTo(to)
	params.SetBody(body)

	if _, err := c.rest.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return nil
}

// SendMedia sends a message carrying a publicly retrievable media URL.
func (c *Client) SendMedia(to, body, mediaURL string) error {
	params := &openapi.CreateMessageParams{}
	params.SetFrom(c.from)
	params.SetTo(to)
	params.SetBody(body)
	params.SetMediaUrl([]string{mediaURL})

	if _, err := c.rest.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return nil
}

// parseMediaRef extracts the message and media sids from an inbound media
// URL, whose path ends .../Messages/{MessageSid}/Media/{MediaSid}.
func parseMediaRef(mediaURL string) (string, string, error) {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return "", "", fmt.Errorf("malformed media reference %q: %v", mediaURL, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 {
		return "", "", fmt.Errorf("malformed media reference %q", mediaURL)
	}

	mediaSid := parts[len(parts)-1]
	messageSid := parts[len(parts)-3]
	if parts[len(parts)-2] != "Media" || parts[len(parts)-4] != "Messages" {
		return "", "", fmt.Errorf("malformed media reference %q", mediaURL)
	}
	if messageSid == "" || mediaSid == "" {
		return "", "", fmt.Errorf("malformed media reference %q", mediaURL)
	}
	return messageSid, mediaSid, nil
}
