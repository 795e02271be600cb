package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"coachingportal/models"
	"coachingportal/utils"
)

const GalleryPrefix = "Gallery"

// PhotoView is a gallery entry with a signed link to the image.
type PhotoView struct {
	models.Photo
	URL string `json:"url"`
}

// PhotoService manages the public gallery. It shares the storage limit with notes and
// results but publishes nothing.
type PhotoService struct {
	photos      PhotoStore
	storage     ObjectStorage
	quota       *StorageService
	maxFileSize int64
	now         func() time.Time
}

func NewPhotoService(photos PhotoStore, storage ObjectStorage, quota *StorageService, maxFileSize int64) *PhotoService {
	return &PhotoService{
		photos:      photos,
		storage:     storage,
		quota:       quota,
		maxFileSize: maxFileSize,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Upload stores one image. The title defaults to the file name without its extension.
func (s *PhotoService) Upload(ctx context.Context, adminID string, up FileUpload) (*models.Photo, error) {
	if err := utils.ValidateImage(up.Filename, up.Size, s.maxFileSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	title := strings.TrimSpace(up.Title)
	if title == "" {
		base := path.Base(strings.ReplaceAll(up.Filename, "\\", "/"))
		title = strings.TrimSuffix(base, path.Ext(base))
	}

	if err := s.quota.CheckUpload(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	uploaded, err := s.storage.Upload(ctx, ObjectName(GalleryPrefix, "", up.Filename, now), up.Content)
	if err != nil {
		return nil, err
	}

	photo := &models.Photo{
		Title:      title,
		ObjectName: uploaded.ObjectName,
		Size:       uploaded.Size,
		SHA1Hash:   uploaded.SHA1,
		UploadedBy: adminID,
		CreatedAt:  now,
	}
	if err := s.photos.Insert(ctx, photo); err != nil {
		if delErr := s.storage.Delete(ctx, uploaded.ObjectName); delErr != nil {
			return nil, fmt.Errorf("failed to save photo: %w (cleanup also failed: %v)", err, delErr)
		}
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	return photo, nil
}

// List returns the gallery newest first, each photo with a signed preview link.
func (s *PhotoService) List(ctx context.Context) ([]PhotoView, error) {
	photos, err := s.photos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	views := make([]PhotoView, 0, len(photos))
	for _, p := range photos {
		url, err := s.storage.SignedURL(ctx, p.ObjectName, PreviewURLDuration)
		if err != nil {
			return nil, err
		}
		views = append(views, PhotoView{Photo: p, URL: url})
	}
	return views, nil
}

// Delete removes the document, then the stored image. An object delete failure is
// returned after the photo has already left the gallery.
func (s *PhotoService) Delete(ctx context.Context, id string) error {
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.photos.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	if err := s.storage.Delete(ctx, photo.ObjectName); err != nil {
		return fmt.Errorf("photo %s removed from gallery but not from storage: %w", id, err)
	}
	return nil
}
