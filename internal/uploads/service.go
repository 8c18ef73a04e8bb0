package uploads

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
)

const maxUploadBytes = 20 * 1024 * 1024

// Kind names the category of file being uploaded. The category decides the
// object key prefix and which content types are accepted.
type Kind string

const (
	KindResume     Kind = "resume"
	KindSubmission Kind = "submission"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindResume, KindSubmission:
		return true
	}
	return false
}

var mimeTypesByKind = map[Kind][]string{
	KindResume:     {"application/pdf"},
	KindSubmission: {"application/pdf", "application/zip", "image/png", "image/jpeg", "text/plain"},
}

type signer interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

// Service issues short-lived signed URLs against the upload bucket and
// cleans up objects that are no longer referenced.
type Service interface {
	PresignUpload(userID uuid.UUID, input PresignInput) (*PresignOutput, error)
	PresignDownload(objectKey string) (*DownloadOutput, error)
	RemoveObjectForURL(ctx context.Context, objectURL string) error
}

type service struct {
	gcs         signer
	bucket      string
	uploadTTL   time.Duration
	downloadTTL time.Duration
}

// NewService constructs an uploads service backed by the provided GCS signer.
func NewService(gcsClient signer, bucket string, uploadTTL, downloadTTL time.Duration) (Service, error) {
	if gcsClient == nil {
		return nil, fmt.Errorf("gcs client required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if uploadTTL <= 0 || downloadTTL <= 0 {
		return nil, fmt.Errorf("url expiries must be positive")
	}
	return &service{
		gcs:         gcsClient,
		bucket:      bucket,
		uploadTTL:   uploadTTL,
		downloadTTL: downloadTTL,
	}, nil
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	Kind      Kind
	MimeType  string
	FileName  string
	SizeBytes int64
}

// PresignOutput is returned to the client. ObjectURL is the stable address the
// caller stores back on the application (file_url or resume_url); SignedPutURL
// is the one-shot target for the actual PUT.
type PresignOutput struct {
	ObjectKey    string    `json:"object_key"`
	ObjectURL    string    `json:"object_url"`
	SignedPutURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// DownloadOutput carries a short-lived read URL for a stored object.
type DownloadOutput struct {
	SignedGetURL string    `json:"signed_get_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *service) PresignUpload(userID uuid.UUID, input PresignInput) (*PresignOutput, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid upload kind")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}

	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be at most %d bytes", maxUploadBytes))
	}

	mimeType := strings.TrimSpace(input.MimeType)
	if mimeType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type is required")
	}
	if !isAllowedMime(input.Kind, mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type not allowed for upload kind")
	}

	objectKey := buildObjectKey(input.Kind, userID, fileName)
	expiresAt := time.Now().Add(s.uploadTTL)
	signedURL, err := s.gcs.SignedURL(s.bucket, objectKey, mimeType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		ObjectKey:    objectKey,
		ObjectURL:    fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectKey),
		SignedPutURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *service) PresignDownload(objectKey string) (*DownloadOutput, error) {
	key := strings.TrimSpace(objectKey)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object_key is required")
	}

	expiresAt := time.Now().Add(s.downloadTTL)
	signedURL, err := s.gcs.SignedReadURL(s.bucket, key, s.downloadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}

	return &DownloadOutput{
		SignedGetURL: signedURL,
		ExpiresAt:    expiresAt,
	}, nil
}

// RemoveObjectForURL deletes the object a stored URL points at, if the URL
// lives in this service's bucket. URLs outside the bucket are ignored so
// callers can pass any stored value without pre-checking its origin.
func (s *service) RemoveObjectForURL(ctx context.Context, objectURL string) error {
	key, ok := s.objectKeyForURL(objectURL)
	if !ok {
		return nil
	}
	if err := s.gcs.DeleteObject(ctx, s.bucket, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
	}
	return nil
}

func (s *service) objectKeyForURL(objectURL string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(objectURL))
	if err != nil || parsed.Host != "storage.googleapis.com" {
		return "", false
	}
	key, found := strings.CutPrefix(parsed.Path, "/"+s.bucket+"/")
	if !found || key == "" {
		return "", false
	}
	return key, true
}

func isAllowedMime(kind Kind, mimeType string) bool {
	for _, candidate := range mimeTypesByKind[kind] {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}

func buildObjectKey(kind Kind, userID uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	id := uuid.New()
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("uploads/%s/%s/%s/%s", kind, userID, id, cleanName)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" || clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
