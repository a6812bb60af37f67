package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"
	"kaavalcircle/pkg/storage"
)

func newLocalEvidence(t *testing.T, maxSize int64) (EvidenceService, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:5000/uploads")
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}
	return NewEvidenceService(local, maxSize, logger.NewDiscardLogger()), local
}

func TestStoreEvidenceAndFetch(t *testing.T) {
	svc, local := newLocalEvidence(t, 1024)
	ctx := context.Background()

	urls, err := svc.StoreEvidence(ctx, []*UploadedFile{
		{Filename: "scene.PNG", ContentType: "image/png", Size: 4, Reader: strings.NewReader("data")},
		{Filename: "statement.pdf", ContentType: "application/pdf", Size: 3, Reader: strings.NewReader("pdf")},
	})
	if err != nil {
		t.Fatalf("StoreEvidence() error = %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("urls = %v", urls)
	}
	if !strings.HasPrefix(urls[0], "http://localhost:5000/uploads/evidence/") || !strings.HasSuffix(urls[0], ".png") {
		t.Errorf("url = %q", urls[0])
	}

	data, err := svc.Fetch(ctx, urls[0])
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "data" {
		t.Errorf("Fetch() = %q", data)
	}

	entries, err := os.ReadDir(filepath.Join(local.BasePath(), "evidence"))
	if err != nil || len(entries) != 2 {
		t.Errorf("stored files = %v, err = %v", entries, err)
	}
}

func TestStoreEvidenceRejectsBeforeUploading(t *testing.T) {
	svc, local := newLocalEvidence(t, 1024)

	_, err := svc.StoreEvidence(context.Background(), []*UploadedFile{
		{Filename: "ok.jpg", ContentType: "image/jpeg", Size: 2, Reader: strings.NewReader("ok")},
		{Filename: "virus.exe", ContentType: "application/octet-stream", Size: 2, Reader: strings.NewReader("mz")},
	})

	var verrs validators.ValidationErrors
	if !errors.As(err, &verrs) || verrs[0].Message != utils.ErrEvidenceRejected {
		t.Fatalf("StoreEvidence() error = %v, want rejection", err)
	}
	if _, statErr := os.Stat(filepath.Join(local.BasePath(), "evidence")); !os.IsNotExist(statErr) {
		t.Error("nothing should be stored when a file is rejected")
	}
}

func TestStoreEvidenceSizeLimit(t *testing.T) {
	svc, _ := newLocalEvidence(t, 4)

	_, err := svc.StoreEvidence(context.Background(), []*UploadedFile{
		{Filename: "big.mp4", ContentType: "video/mp4", Size: 5, Reader: strings.NewReader("12345")},
	})
	var verrs validators.ValidationErrors
	if !errors.As(err, &verrs) || verrs[0].Field != "evidence" {
		t.Errorf("StoreEvidence() error = %v, want size error", err)
	}
}

func TestStoreEvidenceEmpty(t *testing.T) {
	svc, _ := newLocalEvidence(t, 4)
	urls, err := svc.StoreEvidence(context.Background(), nil)
	if err != nil || urls == nil || len(urls) != 0 {
		t.Errorf("StoreEvidence(nil) = %#v, %v", urls, err)
	}
}

func TestFetchForeignURL(t *testing.T) {
	svc, _ := newLocalEvidence(t, 1024)
	if _, err := svc.Fetch(context.Background(), "https://elsewhere.example.com/a.png"); err == nil {
		t.Error("Fetch() of a foreign URL should fail")
	}
}

func TestStorePhotoShrinks(t *testing.T) {
	svc, _ := newLocalEvidence(t, utils.MaxEvidenceSize)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1024, 512))); err != nil {
		t.Fatalf("encode: %v", err)
	}

	url, err := svc.StorePhoto(context.Background(), &UploadedFile{
		Filename:    "me.png",
		ContentType: "image/png",
		Size:        int64(buf.Len()),
		Reader:      &buf,
	})
	if err != nil {
		t.Fatalf("StorePhoto() error = %v", err)
	}

	data, err := svc.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode stored photo: %v", err)
	}
	if cfg.Width != utils.MaxPhotoEdge || cfg.Height != utils.MaxPhotoEdge/2 {
		t.Errorf("stored photo = %dx%d, want %dx%d", cfg.Width, cfg.Height, utils.MaxPhotoEdge, utils.MaxPhotoEdge/2)
	}

	if _, err := svc.StorePhoto(context.Background(), &UploadedFile{Filename: "me.gif", Reader: strings.NewReader("")}); err == nil {
		t.Error("StorePhoto() accepted a gif")
	}
}
