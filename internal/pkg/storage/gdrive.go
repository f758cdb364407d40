package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveStorage keeps files in a Google Drive folder. Keys are Drive file IDs.
type DriveStorage struct {
	files    *drive.FilesService
	folderID string
}

func NewDriveStorage(ctx context.Context, folderID, credentialsFile string) (*DriveStorage, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveFileScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}

	return &DriveStorage{files: srv.Files, folderID: folderID}, nil
}

func (s *DriveStorage) Upload(ctx context.Context, file io.Reader, filePath string, contentType string) (string, error) {
	meta := &drive.File{
		Name:     path.Base(filePath),
		Parents:  []string{s.folderID},
		MimeType: contentType,
	}

	created, err := s.files.Create(meta).
		Media(file, googleapi.ContentType(contentType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload to drive: %w", err)
	}

	return created.Id, nil
}

func (s *DriveStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.files.Get(key).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, key)
		}
		return nil, fmt.Errorf("failed to download from drive: %w", err)
	}
	return resp.Body, nil
}

func (s *DriveStorage) Delete(ctx context.Context, key string) error {
	err := s.files.Delete(key).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete from drive: %w", err)
	}
	return nil
}

// GetURL returns the Drive viewer link; Drive links do not expire.
func (s *DriveStorage) GetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	f, err := s.files.Get(key).Fields("webViewLink").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, key)
		}
		return "", fmt.Errorf("failed to get drive link: %w", err)
	}
	return f.WebViewLink, nil
}

func (s *DriveStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.files.Get(key).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
