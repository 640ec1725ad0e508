package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nianverse/storechat/internal/config"
	"github.com/nianverse/storechat/internal/domain"
	"github.com/nianverse/storechat/internal/logging"
)

// Coordinator uploads attachments to the remote file-storage endpoint.
// Failures never escape as errors: every attempt produces a tagged
// domain.UploadResult so a bad file cannot abort a whole send.
type Coordinator struct {
	url         string
	authToken   string
	apiKey      string
	storageBase string
	client      *http.Client
	log         *logging.Logger
}

// NewCoordinator creates an upload coordinator from config.
func NewCoordinator(cfg config.UploadConfig, log *logging.Logger) *Coordinator {
	return &Coordinator{
		url:         cfg.URL,
		authToken:   cfg.AuthToken,
		apiKey:      cfg.APIKey,
		storageBase: cfg.StorageBaseURL,
		client:      &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:         log.Sub("upload"),
	}
}

// Upload sends one file as a multipart request tagged with folderName.
func (c *Coordinator) Upload(ctx context.Context, f File, folderName string) domain.UploadResult {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", f.Name)
	if err != nil {
		return failure(fmt.Sprintf("building request: %v", err))
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return failure(fmt.Sprintf("reading file: %v", err))
	}
	if err := writer.WriteField("FolderName", folderName); err != nil {
		return failure(fmt.Sprintf("building request: %v", err))
	}
	if err := writer.Close(); err != nil {
		return failure(fmt.Sprintf("building request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return failure(fmt.Sprintf("building request: %v", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("api_key", c.apiKey)

	c.log.Debug().Str("file", f.Name).Str("folder", folderName).Msg("uploading file")

	resp, err := c.client.Do(req)
	if err != nil {
		return failure(fmt.Sprintf("upload failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(fmt.Sprintf("reading response: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Str("file", f.Name).Int("status", resp.StatusCode).Msg("upload rejected")
		return failure(fmt.Sprintf("upload failed with status %d", resp.StatusCode))
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return failure("upload response is not valid JSON")
	}

	if url, ok := ExtractURL(decoded, c.storageBase); ok {
		return domain.UploadResult{Success: true, URL: url}
	}

	// No recognizable field: report success with the stringified body so the
	// content still reaches the conversation. Known defect surface pending a
	// server-side content-type fix.
	c.log.Warn().Str("file", f.Name).Msg("upload response had no recognizable URL field")
	return domain.UploadResult{Success: true, URL: stringifyBody(decoded)}
}

// UploadMany uploads files independently and concurrently. Result order
// matches input order, and one failure never cancels the other uploads.
func (c *Coordinator) UploadMany(ctx context.Context, files []File, folderName string) []domain.UploadResult {
	results := make([]domain.UploadResult, len(files))

	var g errgroup.Group
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = c.Upload(ctx, f, folderName)
			return nil
		})
	}
	g.Wait()

	return results
}

func failure(msg string) domain.UploadResult {
	return domain.UploadResult{Success: false, Error: msg}
}
