package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoding for scanned documents
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/absence"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/storage"
	"golang.org/x/image/draw"
)

const (
	// Scanned images above this size are re-encoded before upload.
	maxImageBytes = 1 << 20
	// Longest side of a shrunk image, in pixels.
	maxImageSide = 2000
	linkExpiry   = 7 * 24 * time.Hour
)

type FileService interface {
	// UploadAbsenceDocument stores the document attached to an absence
	// request and returns the link kept on the request.
	UploadAbsenceDocument(ctx context.Context, employeeEmail string, date string, doc absence.Document) (string, error)

	DeleteFile(ctx context.Context, key string) error
	GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}

// UploadAbsenceDocument implements FileService.
func (s *fileServiceImpl) UploadAbsenceDocument(ctx context.Context, employeeEmail string, date string, doc absence.Document) (string, error) {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	if ext != ".pdf" && ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", fmt.Errorf("invalid file type: only pdf, jpg, jpeg, png allowed")
	}

	content := doc.Content
	contentType := contentTypeFor(ext)

	if ext != ".pdf" {
		raw, err := io.ReadAll(io.LimitReader(doc.Content, absence.MaxDocumentSize+1))
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
		if len(raw) > maxImageBytes {
			shrunk, err := shrinkImage(raw, maxImageSide)
			if err != nil {
				return "", fmt.Errorf("failed to shrink image: %w", err)
			}
			raw, ext, contentType = shrunk, ".jpg", "image/jpeg"
		}
		content = bytes.NewReader(raw)
	}

	// absences/{email}/{date}-{uuid}.{ext}
	key := path.Join("absences", employeeEmail, fmt.Sprintf("%s-%s%s", date, uuid.NewString(), ext))

	stored, err := s.storage.Upload(ctx, content, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload absence document: %w", err)
	}

	link, err := s.storage.GetURL(ctx, stored, linkExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to get document link: %w", err)
	}
	return link, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, key, expiry)
}

// shrinkImage decodes a JPEG or PNG, scales it so its longest side is at most
// maxSide and re-encodes it as JPEG.
func shrinkImage(buffer []byte, maxSide int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if longest := max(width, height); longest > maxSide {
		width = width * maxSide / longest
		height = height * maxSide / longest
		img = resizeImage(img, max(width, 1), max(height, 1))
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// CatmullRom keeps small print readable when downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
