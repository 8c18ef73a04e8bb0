package uploads

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
)

type stubSigner struct {
	putBucket  string
	putObject  string
	putMime    string
	readObject string
	deleted    []string
	err        error
}

func (s *stubSigner) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.putBucket = bucket
	s.putObject = object
	s.putMime = contentType
	return "https://signed.example/" + object, nil
}

func (s *stubSigner) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.readObject = object
	return "https://signed.example/read/" + object, nil
}

func (s *stubSigner) DeleteObject(ctx context.Context, bucket, object string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, bucket+"/"+object)
	return nil
}

func newTestService(t *testing.T, signer *stubSigner) Service {
	t.Helper()
	svc, err := NewService(signer, "gigboard-uploads", 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func expectValidation(t *testing.T, err error) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPresignUploadResume(t *testing.T) {
	signer := &stubSigner{}
	svc := newTestService(t, signer)
	userID := uuid.New()

	out, err := svc.PresignUpload(userID, PresignInput{
		Kind:      KindResume,
		MimeType:  "application/pdf",
		FileName:  "My Resume (final).pdf",
		SizeBytes: 120_000,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	if signer.putBucket != "gigboard-uploads" || signer.putMime != "application/pdf" {
		t.Fatalf("unexpected signer call bucket=%s mime=%s", signer.putBucket, signer.putMime)
	}
	prefix := "uploads/resume/" + userID.String() + "/"
	if !strings.HasPrefix(out.ObjectKey, prefix) {
		t.Fatalf("expected object key under %s, got %s", prefix, out.ObjectKey)
	}
	if !strings.HasSuffix(out.ObjectKey, "/My-Resume-(final).pdf") {
		t.Fatalf("expected sanitized file name in key, got %s", out.ObjectKey)
	}
	if out.ObjectURL != "https://storage.googleapis.com/gigboard-uploads/"+out.ObjectKey {
		t.Fatalf("unexpected object url %s", out.ObjectURL)
	}
	if out.SignedPutURL == "" || out.ExpiresAt.IsZero() {
		t.Fatalf("expected signed url and expiry, got %+v", out)
	}
}

func TestPresignUploadRejectsBadInput(t *testing.T) {
	svc := newTestService(t, &stubSigner{})
	userID := uuid.New()
	base := PresignInput{
		Kind:      KindSubmission,
		MimeType:  "application/zip",
		FileName:  "work.zip",
		SizeBytes: 1024,
	}

	in := base
	in.Kind = "avatar"
	_, err := svc.PresignUpload(userID, in)
	expectValidation(t, err)

	in = base
	in.MimeType = "application/x-msdownload"
	_, err = svc.PresignUpload(userID, in)
	expectValidation(t, err)

	in = base
	in.SizeBytes = maxUploadBytes + 1
	_, err = svc.PresignUpload(userID, in)
	expectValidation(t, err)

	in = base
	in.FileName = "   "
	_, err = svc.PresignUpload(userID, in)
	expectValidation(t, err)

	_, err = svc.PresignUpload(uuid.Nil, base)
	expectValidation(t, err)
}

func TestPresignUploadResumeRejectsNonPDF(t *testing.T) {
	svc := newTestService(t, &stubSigner{})

	_, err := svc.PresignUpload(uuid.New(), PresignInput{
		Kind:      KindResume,
		MimeType:  "image/png",
		FileName:  "resume.png",
		SizeBytes: 1024,
	})
	expectValidation(t, err)
}

func TestPresignDownload(t *testing.T) {
	signer := &stubSigner{}
	svc := newTestService(t, signer)

	out, err := svc.PresignDownload("uploads/resume/abc/def/resume.pdf")
	if err != nil {
		t.Fatalf("presign download: %v", err)
	}
	if signer.readObject != "uploads/resume/abc/def/resume.pdf" {
		t.Fatalf("unexpected read object %s", signer.readObject)
	}
	if out.SignedGetURL == "" {
		t.Fatal("expected signed get url")
	}

	_, err = svc.PresignDownload("  ")
	expectValidation(t, err)
}

func TestRemoveObjectForURL(t *testing.T) {
	signer := &stubSigner{}
	svc := newTestService(t, signer)
	ctx := context.Background()

	url := "https://storage.googleapis.com/gigboard-uploads/uploads/resume/abc/def/resume.pdf"
	if err := svc.RemoveObjectForURL(ctx, url); err != nil {
		t.Fatalf("remove: %v", err)
	}
	want := "gigboard-uploads/uploads/resume/abc/def/resume.pdf"
	if len(signer.deleted) != 1 || signer.deleted[0] != want {
		t.Fatalf("expected delete of %s, got %v", want, signer.deleted)
	}
}

func TestRemoveObjectForURLIgnoresForeignURLs(t *testing.T) {
	signer := &stubSigner{}
	svc := newTestService(t, signer)
	ctx := context.Background()

	for _, url := range []string{
		"",
		"https://example.com/resume.pdf",
		"https://storage.googleapis.com/other-bucket/resume.pdf",
		"https://storage.googleapis.com/gigboard-uploads/",
	} {
		if err := svc.RemoveObjectForURL(ctx, url); err != nil {
			t.Fatalf("remove %q: %v", url, err)
		}
	}
	if len(signer.deleted) != 0 {
		t.Fatalf("expected no deletes, got %v", signer.deleted)
	}
}
