package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"
	"kaavalcircle/pkg/metrics"
	"kaavalcircle/pkg/storage"
)

const (
	evidencePrefix = "evidence"
	photoPrefix    = "photos"
)

// UploadedFile is one multipart file handed over by the HTTP layer.
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// EvidenceService stores uploaded evidence and profile photos, and loads
// stored objects back for report rendering.
type EvidenceService interface {
	StoreEvidence(ctx context.Context, files []*UploadedFile) ([]string, error)
	StorePhoto(ctx context.Context, file *UploadedFile) (string, error)
	// Fetch reads a stored object by the URL StoreEvidence returned.
	Fetch(ctx context.Context, ref string) ([]byte, error)
	// Discard removes objects written by StoreEvidence or StorePhoto. Refs
	// this provider does not hold are ignored.
	Discard(ctx context.Context, refs []string)
}

type evidenceService struct {
	provider storage.Provider
	maxSize  int64
	now      func() time.Time
	logger   *logger.Logger
}

func NewEvidenceService(provider storage.Provider, maxSize int64, log *logger.Logger) EvidenceService {
	if maxSize <= 0 {
		maxSize = utils.MaxEvidenceSize
	}
	return &evidenceService{
		provider: provider,
		maxSize:  maxSize,
		now:      time.Now,
		logger:   log,
	}
}

// StoreEvidence checks every file before uploading any of them. If an upload
// fails the objects already written are removed.
func (s *evidenceService) StoreEvidence(ctx context.Context, files []*UploadedFile) ([]string, error) {
	urls := []string{}
	if len(files) == 0 {
		return urls, nil
	}
	if len(files) > utils.MaxEvidenceFiles {
		return nil, validators.NewValidationError("evidence",
			fmt.Sprintf("at most %d evidence files are allowed", utils.MaxEvidenceFiles))
	}

	var errs validators.ValidationErrors
	for _, f := range files {
		if !utils.IsAllowedEvidence(f.Filename, f.ContentType) {
			errs = append(errs, validators.NewValidationError("evidence", utils.ErrEvidenceRejected)...)
			continue
		}
		if f.Size > s.maxSize {
			errs = append(errs, validators.NewValidationError("evidence",
				fmt.Sprintf("%s exceeds the %d MB limit", f.Filename, s.maxSize/(1024*1024)))...)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(files))
	for _, f := range files {
		resp, err := s.upload(ctx, evidencePrefix, f.Filename, f.ContentType, f.Size, f.Reader)
		if err != nil {
			s.rollback(ctx, keys)
			return nil, err
		}
		keys = append(keys, resp.Key)
		urls = append(urls, resp.URL)
	}
	return urls, nil
}

func (s *evidenceService) StorePhoto(ctx context.Context, file *UploadedFile) (string, error) {
	if !utils.IsAllowedFileType(file.Filename, utils.AllowedPhotoTypes) {
		return "", validators.NewValidationError("photo", "photo must be a JPEG or PNG image")
	}
	if file.Size > utils.MaxPhotoSize {
		return "", validators.NewValidationError("photo", "photo exceeds the 5 MB limit")
	}

	raw, err := io.ReadAll(io.LimitReader(file.Reader, utils.MaxPhotoSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	data := utils.ShrinkImage(raw, utils.MaxPhotoEdge)

	resp, err := s.upload(ctx, photoPrefix, file.Filename, utils.GetContentType(file.Filename), int64(len(data)), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (s *evidenceService) Fetch(ctx context.Context, ref string) ([]byte, error) {
	key, ok := s.provider.KeyFromURL(ref)
	if !ok {
		return nil, fmt.Errorf("evidence %q is not held by %s storage", ref, s.provider.Name())
	}

	resp, err := s.provider.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer resp.Reader.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Reader, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, errors.New("stored evidence exceeds the size limit")
	}
	return data, nil
}

func (s *evidenceService) upload(ctx context.Context, prefix, filename, contentType string, size int64, r io.Reader) (*storage.UploadResponse, error) {
	resp, err := s.provider.Upload(ctx, &storage.UploadRequest{
		Key:         utils.GenerateObjectKey(prefix, filename, s.now()),
		Reader:      r,
		ContentType: contentType,
		Size:        size,
		Metadata:    map[string]string{"original-name": filename},
	})
	metrics.RecordEvidenceUpload(s.provider.Name(), err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", filename, err)
	}
	return resp, nil
}

func (s *evidenceService) Discard(ctx context.Context, refs []string) {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		if key, ok := s.provider.KeyFromURL(ref); ok {
			keys = append(keys, key)
		}
	}
	s.rollback(ctx, keys)
}

// rollback deletes keys even when the request context is already cancelled.
func (s *evidenceService) rollback(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	for _, key := range keys {
		if err := s.provider.Delete(ctx, key); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to remove partially stored evidence")
		}
	}
}
