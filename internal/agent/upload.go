package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Uploader sends snapshots to the central service's ingestion endpoint.
type Uploader struct {
	url        string
	hostname   string
	httpClient *http.Client
}

func NewUploader(serverURL, hostname string, timeout time.Duration) *Uploader {
	return &Uploader{
		url:      serverURL,
		hostname: hostname,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload posts one snapshot as multipart/form-data with a "file" part plus
// "hostname" and "timestamp" form fields. A non-2xx response is an error.
// Failed snapshots are not queued, the caller moves on to the next tick.
func (u *Uploader) Upload(ctx context.Context, snapshot *Snapshot) error {
	timestamp := snapshot.Timestamp.Format(TimestampFormat)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fmt.Sprintf("snapshot_%s.log", timestamp))
	if err != nil {
		return fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := part.Write(snapshot.Data); err != nil {
		return fmt.Errorf("could not write snapshot data: %w", err)
	}
	if err := writer.WriteField("hostname", u.hostname); err != nil {
		return fmt.Errorf("could not write hostname field: %w", err)
	}
	if err := writer.WriteField("timestamp", timestamp); err != nil {
		return fmt.Errorf("could not write timestamp field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("could not finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, &body)
	if err != nil {
		return fmt.Errorf("could not create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("server returned status %s: %s", res.Status, string(msg))
	}

	return nil
}
