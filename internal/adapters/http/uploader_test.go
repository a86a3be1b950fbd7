package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/bft-labs/frameship/internal/domain"
)

func writeArtifact(t *testing.T, content string) domain.ArtifactHandle {
	t.Helper()
	p := filepath.Join(t.TempDir(), "out_1700000000.h264")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return domain.ArtifactHandle(p)
}

func TestUploader_Upload(t *testing.T) {
	var (
		gotAuth, gotKey, gotReqID, gotOSArch string
		gotPath                              string
		gotManifest                          manifest
		gotData                              []byte
		gotFilename                          string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-Object-Key")
		gotReqID = r.Header.Get("X-Request-Id")
		gotOSArch = r.Header.Get("X-Agent-OSArch")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.Unmarshal([]byte(r.FormValue("manifest")), &gotManifest)

		f, hdr, err := r.FormFile("artifact")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotFilename = hdr.Filename
		gotData, _ = io.ReadAll(f)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	u := NewUploader(srv.Client(), UploadMetadata{
		ServiceURL: srv.URL + "/",
		AuthKey:    "secret",
		Prefix:     "live/",
		DeviceID:   "cam-1",
		Hostname:   "edge-01",
	}, nil)

	artifact := writeArtifact(t, "h264-bytes")
	if err := u.Upload(context.Background(), artifact); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if gotPath != artifactsEndpoint {
		t.Errorf("path = %s, want %s", gotPath, artifactsEndpoint)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotKey != "live/out_1700000000.h264" || gotManifest.ObjectKey != gotKey {
		t.Errorf("object key header = %q, manifest = %q", gotKey, gotManifest.ObjectKey)
	}
	if _, err := uuid.Parse(gotReqID); err != nil {
		t.Errorf("X-Request-Id %q is not a uuid: %v", gotReqID, err)
	}
	if !strings.Contains(gotOSArch, "/") {
		t.Errorf("X-Agent-OSArch = %q", gotOSArch)
	}
	if gotManifest.Bytes != int64(len("h264-bytes")) || gotManifest.DeviceID != "cam-1" {
		t.Errorf("manifest = %+v", gotManifest)
	}
	if string(gotData) != "h264-bytes" || gotFilename != "out_1700000000.h264" {
		t.Errorf("artifact part = %q (%s)", gotData, gotFilename)
	}

	// The local file is the caller's to remove.
	if _, err := os.Stat(artifact.Path()); err != nil {
		t.Errorf("artifact removed by uploader: %v", err)
	}
}

func TestUploader_Non2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	u := NewUploader(srv.Client(), UploadMetadata{ServiceURL: srv.URL}, nil)
	err := u.Upload(context.Background(), writeArtifact(t, "x"))
	if err == nil {
		t.Fatal("Upload() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error = %q, want status and body", err)
	}
}

// failingClient fails every request.
type failingClient struct{}

func (failingClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestUploader_TransportError(t *testing.T) {
	u := NewUploader(failingClient{}, UploadMetadata{ServiceURL: "http://127.0.0.1:1"}, nil)
	if err := u.Upload(context.Background(), writeArtifact(t, "x")); err == nil {
		t.Error("Upload() error = nil, want transport error")
	}
}

func TestUploader_MissingArtifact(t *testing.T) {
	u := NewUploader(failingClient{}, UploadMetadata{}, nil)
	if err := u.Upload(context.Background(), "/nonexistent/out.h264"); err == nil {
		t.Error("Upload() of missing file = nil, want error")
	}
}

func TestUploader_ObjectKey(t *testing.T) {
	u := NewUploader(nil, UploadMetadata{Prefix: "site-a/cam-2/"}, nil)
	if got := u.ObjectKey("/tmp/x/out_5.h264"); got != "site-a/cam-2/out_5.h264" {
		t.Errorf("ObjectKey() = %s", got)
	}
}
