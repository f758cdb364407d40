package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

type FileStorage interface {
	// Upload stores a file and returns the key it can be fetched by.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a file
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, key string) error

	// GetURL returns a link to the file
	GetURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Exists checks if file exists
	Exists(ctx context.Context, key string) (bool, error)
}

// New builds the backend named by storageType.
func New(ctx context.Context, storageType, basePath, baseURL, driveFolderID, credentialsFile string) (FileStorage, error) {
	switch storageType {
	case "local":
		return NewLocalStorage(basePath, baseURL)
	case "gdrive":
		return NewDriveStorage(ctx, driveFolderID, credentialsFile)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", storageType)
	}
}
