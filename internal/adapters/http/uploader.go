package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/frameship/internal/domain"
	"github.com/bft-labs/frameship/internal/ports"
	"github.com/bft-labs/frameship/pkg/log"
)

const artifactsEndpoint = "/v1/ingest/artifacts"

// UploadMetadata describes the destination and identity of this agent.
type UploadMetadata struct {
	// ServiceURL is the base URL of the ingestion service
	ServiceURL string

	// AuthKey is the API authentication key
	AuthKey string

	// Prefix is prepended to the artifact name to form the object key
	Prefix string

	// DeviceID identifies the capture device
	DeviceID string

	// Hostname is the agent's hostname
	Hostname string
}

// manifest is sent alongside the artifact bytes.
type manifest struct {
	ObjectKey  string    `json:"object_key"`
	Bytes      int64     `json:"bytes"`
	DeviceID   string    `json:"device_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Uploader implements ports.Uploader using HTTP multipart form upload.
type Uploader struct {
	client   ports.HTTPClient
	metadata UploadMetadata
	logger   log.Logger
}

// NewUploader creates a new HTTP uploader.
func NewUploader(client ports.HTTPClient, metadata UploadMetadata, logger log.Logger) *Uploader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}
	metadata.ServiceURL = strings.TrimRight(metadata.ServiceURL, "/")
	return &Uploader{
		client:   client,
		metadata: metadata,
		logger:   logger,
	}
}

// ObjectKey returns the remote key for an artifact.
func (u *Uploader) ObjectKey(artifact domain.ArtifactHandle) string {
	return u.metadata.Prefix + artifact.Name()
}

// Upload transmits the artifact to the ingestion service.
func (u *Uploader) Upload(ctx context.Context, artifact domain.ArtifactHandle) error {
	data, err := os.ReadFile(artifact.Path())
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	key := u.ObjectKey(artifact)

	// Build multipart request body
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	manifestJSON, err := json.Marshal(manifest{
		ObjectKey:  key,
		Bytes:      int64(len(data)),
		DeviceID:   u.metadata.DeviceID,
		UploadedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	manifestPart, err := writer.CreateFormField("manifest")
	if err != nil {
		return fmt.Errorf("create manifest field: %w", err)
	}
	if _, err := manifestPart.Write(manifestJSON); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	artifactPart, err := writer.CreateFormFile("artifact", artifact.Name())
	if err != nil {
		return fmt.Errorf("create artifact field: %w", err)
	}
	if _, err := artifactPart.Write(data); err != nil {
		return fmt.Errorf("write artifact data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart: %w", err)
	}

	// Build request
	url := u.metadata.ServiceURL + artifactsEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+u.metadata.AuthKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("X-Object-Key", key)
	req.Header.Set("X-Agent-Hostname", u.metadata.Hostname)
	req.Header.Set("X-Agent-OSArch", runtime.GOOS+"/"+runtime.GOARCH)
	if u.metadata.DeviceID != "" {
		req.Header.Set("X-Device-Id", u.metadata.DeviceID)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	u.logger.Debug("artifact accepted",
		log.String("object_key", key),
		log.String("request_id", requestID),
		log.Int("bytes", len(data)),
	)
	return nil
}
