package tryon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/stylemirror/backend/internal/config"
	"github.com/stylemirror/backend/internal/service/artifact"
)

var (
	// ErrSynthesisFailed reports an inference call that errored, timed
	// out, or returned an unusable response.
	ErrSynthesisFailed = errors.New("synthesis failed")

	// ErrResultUnavailable reports an inference call that succeeded but
	// whose output image could not be brought local.
	ErrResultUnavailable = errors.New("synthesis result unavailable")
)

// Fixed options for the /tryon endpoint. These are part of the service
// contract, not user inputs.
const (
	garmentDescription = "A cool description of the garment"
	useAutoMask        = true
	useAutoCrop        = false
	denoiseSteps       = 30
	seed               = 42
)

// Client drives the try-on inference service over the Gradio HTTP API:
// upload both images, invoke the endpoint, stream the result event, then
// download and normalize the output image into the artifact store.
type Client struct {
	baseURL   string
	timeout   time.Duration
	http      *http.Client
	artifacts *artifact.Store
}

// NewClient builds a synthesis client against the configured service.
func NewClient(cfg config.TryOnConfig, artifacts *artifact.Store) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		timeout:   cfg.Timeout(),
		http:      &http.Client{},
		artifacts: artifacts,
	}
}

// fileData is the Gradio file payload shape the service reports for
// outputs.
type fileData struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

func fileRef(path string) map[string]any {
	return map[string]any{
		"path": path,
		"meta": map[string]string{"_type": "gradio.FileData"},
	}
}

// Synthesize runs one try-on inference over the person and garment
// images and returns the public URL of the stored result. The whole
// attempt runs under a single deadline; expiry surfaces as
// ErrSynthesisFailed.
func (c *Client) Synthesize(ctx context.Context, person, garment []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	personPath, err := c.upload(ctx, "person_image.jpg", person)
	if err != nil {
		return "", fmt.Errorf("%w: upload person image: %v", ErrSynthesisFailed, err)
	}
	garmentPath, err := c.upload(ctx, "garment_image.jpg", garment)
	if err != nil {
		return "", fmt.Errorf("%w: upload garment image: %v", ErrSynthesisFailed, err)
	}

	eventID, err := c.invoke(ctx, personPath, garmentPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	output, err := c.awaitResult(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	raw, err := c.downloadOutput(ctx, output)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResultUnavailable, err)
	}

	png, err := normalizePNG(raw)
	if err != nil {
		return "", fmt.Errorf("%w: decode output image: %v", ErrSynthesisFailed, err)
	}

	name, publicURL, err := c.artifacts.Save(png)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResultUnavailable, err)
	}
	log.Printf("[tryon] result saved as %s", name)
	return publicURL, nil
}

// upload pushes one image to the service and returns its server-side path.
func (c *Client) upload(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gradio_api/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload returned status %d", resp.StatusCode)
	}

	var paths []string
	if err := json.NewDecoder(resp.Body).Decode(&paths); err != nil {
		return "", fmt.Errorf("decode upload response: %v", err)
	}
	if len(paths) == 0 || paths[0] == "" {
		return "", fmt.Errorf("upload returned no file path")
	}
	return paths[0], nil
}

// invoke starts the try-on run and returns the event id to stream.
func (c *Client) invoke(ctx context.Context, personPath, garmentPath string) (string, error) {
	payload := map[string]any{
		"data": []any{
			map[string]any{
				"background": fileRef(personPath),
				"layers":     []any{},
				"composite":  nil,
			},
			fileRef(garmentPath),
			garmentDescription,
			useAutoMask,
			useAutoCrop,
			denoiseSteps,
			seed,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gradio_api/call/tryon", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("call returned status %d", resp.StatusCode)
	}

	var callResp struct {
		EventID string `json:"event_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&callResp); err != nil {
		return "", fmt.Errorf("decode call response: %v", err)
	}
	if callResp.EventID == "" {
		return "", fmt.Errorf("call returned no event id")
	}
	return callResp.EventID, nil
}

// awaitResult streams server-sent events for the run until it completes
// and returns the first output file of the completed event.
func (c *Client) awaitResult(ctx context.Context, eventID string) (fileData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/gradio_api/call/tryon/"+eventID, nil)
	if err != nil {
		return fileData{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fileData{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fileData{}, fmt.Errorf("result stream returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "complete":
				return parseCompleteData(data)
			case "error":
				return fileData{}, fmt.Errorf("service reported error: %s", data)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fileData{}, fmt.Errorf("result stream: %v", err)
	}
	return fileData{}, fmt.Errorf("result stream ended without completion")
}

func parseCompleteData(data string) (fileData, error) {
	var outputs []json.RawMessage
	if err := json.Unmarshal([]byte(data), &outputs); err != nil {
		return fileData{}, fmt.Errorf("decode completion data: %v", err)
	}
	if len(outputs) == 0 {
		return fileData{}, fmt.Errorf("completion carried no outputs")
	}

	var out fileData
	if err := json.Unmarshal(outputs[0], &out); err != nil {
		return fileData{}, fmt.Errorf("decode output file: %v", err)
	}
	if out.URL == "" && out.Path == "" {
		return fileData{}, fmt.Errorf("completion carried no output image")
	}
	return out, nil
}

// downloadOutput retrieves the reported output image, preferring its
// direct URL over the file-serving route.
func (c *Client) downloadOutput(ctx context.Context, out fileData) ([]byte, error) {
	rawURL := out.URL
	if rawURL == "" {
		rawURL = c.baseURL + "/gradio_api/file=" + out.Path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("output download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
