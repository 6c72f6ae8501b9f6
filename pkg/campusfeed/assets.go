package campusfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadPolicy bounds what a call site accepts. Policies are parameters,
// not global constants: the same manager serves 5 MB logo uploads and
// 5 GB recording uploads from different call sites.
type UploadPolicy struct {
	AllowedTypes []string
	MaxBytes     int64
}

// Default policies for common call sites.
var (
	ImagePolicy = UploadPolicy{
		AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		MaxBytes:     5 << 20,
	}
	DocumentPolicy = UploadPolicy{
		AllowedTypes: []string{"application/pdf"},
		MaxBytes:     10 << 20,
	}
	VideoPolicy = UploadPolicy{
		AllowedTypes: []string{"video/mp4", "video/webm"},
		MaxBytes:     5 << 30,
	}
)

// Validate rejects the file before any network call is made.
func (p UploadPolicy) Validate(file File) error {
	allowed := false
	for _, t := range p.AllowedTypes {
		if strings.EqualFold(t, file.MimeType) {
			allowed = true
			break
		}
	}
	if !allowed {
		return &ValidationError{Field: "mime_type", Reason: fmt.Sprintf("%s is not an accepted type", file.MimeType)}
	}
	if file.Size <= 0 {
		return &ValidationError{Field: "size", Reason: "empty file"}
	}
	if file.Size > p.MaxBytes {
		return &ValidationError{Field: "size", Reason: fmt.Sprintf("%d bytes exceeds limit of %d", file.Size, p.MaxBytes)}
	}
	return nil
}

// File describes an incoming attachment.
type File struct {
	Name     string
	MimeType string
	Size     int64
	Reader   io.Reader
}

// AssetManager owns the lifecycle of binary attachments in object
// storage, independent of any adapter. Blob-store failures are always
// surfaced: silent fallback is not safe for binary data.
type AssetManager struct {
	store  BlobStore
	urls   *URLResolver
	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// AssetOption configures an AssetManager.
type AssetOption func(*AssetManager)

// WithAssetIDGenerator overrides the object id generator (default: uuid).
func WithAssetIDGenerator(fn func() string) AssetOption {
	return func(m *AssetManager) { m.newID = fn }
}

// WithAssetClock overrides the timestamp source.
func WithAssetClock(fn func() time.Time) AssetOption {
	return func(m *AssetManager) { m.now = fn }
}

// WithAssetLogger sets the logger used for orphan warnings.
func WithAssetLogger(logger *slog.Logger) AssetOption {
	return func(m *AssetManager) { m.logger = logger }
}

// NewAssetManager creates an asset manager over a blob store and URL
// resolver.
func NewAssetManager(store BlobStore, urls *URLResolver, opts ...AssetOption) (*AssetManager, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if urls == nil {
		return nil, fmt.Errorf("url resolver is required")
	}

	m := &AssetManager{
		store:  store,
		urls:   urls,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Upload validates the file against the policy, writes it under
// {logicalPath}/{id}-{timestamp}{ext} and returns the public URL.
// Validation happens before any store call.
func (m *AssetManager) Upload(ctx context.Context, file File, logicalPath string, policy UploadPolicy) (string, error) {
	if err := policy.Validate(file); err != nil {
		return "", err
	}
	if logicalPath == "" {
		return "", &ValidationError{Field: "logical_path", Reason: "required"}
	}

	key := m.objectKey(logicalPath, file)
	if err := m.store.Put(ctx, key, file.Reader, file.MimeType); err != nil {
		return "", &StorageError{Key: key, Op: "upload", Err: err}
	}
	return m.urls.PublicURL(key), nil
}

// Replace uploads the new asset first and deletes the old one only after
// the upload succeeds, so a failed upload never destroys a still-valid
// reference. A failed old-asset delete leaves an orphaned blob behind;
// that is logged and tolerated, not surfaced.
func (m *AssetManager) Replace(ctx context.Context, oldURL string, file File, logicalPath string, policy UploadPolicy) (string, error) {
	url, err := m.Upload(ctx, file, logicalPath, policy)
	if err != nil {
		return "", err
	}

	if oldURL != "" {
		if err := m.Delete(ctx, oldURL); err != nil {
			m.logger.Warn("previous asset delete failed during replace, blob orphaned",
				"url", oldURL, "error", err)
		}
	}
	return url, nil
}

// Delete derives the storage key from the URL and removes the object.
// Deleting a key that does not exist is not an error.
func (m *AssetManager) Delete(ctx context.Context, rawURL string) error {
	key, err := m.urls.Key(rawURL)
	if err != nil {
		return err
	}

	exists, err := m.store.Exists(ctx, key)
	if err != nil {
		return &StorageError{Key: key, Op: "exists", Err: err}
	}
	if !exists {
		return nil
	}

	if err := m.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrKeyNotFound) {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

func (m *AssetManager) objectKey(logicalPath string, file File) string {
	return fmt.Sprintf("%s/%s-%d%s",
		strings.Trim(logicalPath, "/"), m.newID(), m.now().Unix(), extensionFor(file))
}

var mimeExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
}

func extensionFor(file File) string {
	if ext := path.Ext(file.Name); ext != "" {
		return ext
	}
	if ext, ok := mimeExtensions[strings.ToLower(file.MimeType)]; ok {
		return ext
	}
	return ".bin"
}
