package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"

	"photoselect/internal/apperror"
	"photoselect/internal/config"
	"photoselect/internal/ids"
	"photoselect/internal/media/sniffer"
	"photoselect/internal/models"
	"photoselect/internal/repository"
	"photoselect/internal/storage"
)

type PhotoService struct {
	photos *repository.PhotoRepository
	store  storage.ObjectStore
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewPhotoService(photos *repository.PhotoRepository, store storage.ObjectStore, cfg *config.AppConfig, log zerolog.Logger) *PhotoService {
	return &PhotoService{
		photos: photos,
		store:  store,
		cfg:    cfg,
		log:    log,
	}
}

type UploadInput struct {
	User        models.User
	WorkspaceID string
	File        multipart.File
	Header      *multipart.FileHeader
}

// Upload validates the file by magic bytes, stores the object, then
// records the photo row pointing at it.
func (s *PhotoService) Upload(ctx context.Context, input UploadInput) (models.Photo, error) {
	if input.File == nil || input.Header == nil {
		return models.Photo{}, apperror.New(apperror.KindValidation, "file required")
	}
	if input.Header.Size > s.cfg.Storage.MaxUpload {
		return models.Photo{}, apperror.New(apperror.KindPayload, "file exceeds upload limit")
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.cfg.Storage.MaxUpload+1))
	if err != nil {
		return models.Photo{}, apperror.Wrap(apperror.KindStorage, "read upload", err)
	}
	if int64(len(data)) > s.cfg.Storage.MaxUpload {
		return models.Photo{}, apperror.New(apperror.KindPayload, "file exceeds upload limit")
	}
	if len(data) == 0 {
		return models.Photo{}, apperror.New(apperror.KindValidation, "empty file")
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return models.Photo{}, apperror.New(apperror.KindValidation, "unsupported photo format")
	}

	declared := sniffer.MimeTypeFromHTTP(http.Header(input.Header.Header))
	if declared != "" && declared != result.MIME {
		return models.Photo{}, apperror.New(apperror.KindValidation,
			fmt.Sprintf("content type mismatch: declared %s, actual %s", declared, result.MIME))
	}

	photoID := ids.New()
	filename := fmt.Sprintf("%s.%s", photoID, result.Type)
	if err := storage.ValidateFilename(filename); err != nil {
		return models.Photo{}, apperror.Wrap(apperror.KindValidation, "invalid filename", err)
	}

	if err := s.store.Put(ctx, filename, bytes.NewReader(data), int64(len(data)), result.MIME); err != nil {
		return models.Photo{}, apperror.Wrap(apperror.KindStorage, "store photo", err)
	}

	sum := sha256.Sum256(data)
	photo := models.Photo{
		ID:           photoID,
		WorkspaceID:  input.WorkspaceID,
		UploaderID:   input.User.ID,
		Filename:     filename,
		OriginalName: input.Header.Filename,
		URL:          s.store.URL(filename),
		MimeType:     result.MIME,
		SizeBytes:    int64(len(data)),
		Checksum:     sum[:],
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		if removeErr := s.store.Remove(ctx, filename); removeErr != nil {
			s.log.Error().Err(removeErr).Str("filename", filename).Msg("orphan cleanup failed")
		}
		return models.Photo{}, apperror.Wrap(apperror.KindDatabase, "save photo", err)
	}

	return photo, nil
}

// Delete removes the row, then the stored file best effort: a storage
// failure is logged, never surfaced, and never blocks the DB delete.
func (s *PhotoService) Delete(ctx context.Context, user models.User, photoID string) error {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return apperror.New(apperror.KindNotFound, "photo not found")
		}
		return apperror.Wrap(apperror.KindDatabase, "load photo", err)
	}

	if !user.CanManage(photo.WorkspaceID) && photo.UploaderID != user.ID {
		return apperror.New(apperror.KindAuthorization, "not allowed to delete this photo")
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		return apperror.Wrap(apperror.KindDatabase, "delete photo", err)
	}

	if err := s.store.Remove(ctx, photo.Filename); err != nil {
		s.log.Error().Err(err).Str("filename", photo.Filename).Msg("file removal failed")
	}
	return nil
}

// DeleteBulk removes the given photos within one workspace, then
// cleans up their files best effort.
func (s *PhotoService) DeleteBulk(ctx context.Context, user models.User, workspaceID string, photoIDs []string) (int, error) {
	if len(photoIDs) == 0 {
		return 0, apperror.New(apperror.KindValidation, "no photo ids given")
	}
	if !user.CanManage(workspaceID) {
		return 0, apperror.New(apperror.KindAuthorization, "not allowed to bulk delete in this workspace")
	}

	filenames, err := s.photos.DeleteBulk(ctx, workspaceID, photoIDs)
	if err != nil {
		return 0, apperror.Wrap(apperror.KindDatabase, "bulk delete", err)
	}

	for _, filename := range filenames {
		if err := s.store.Remove(ctx, filename); err != nil {
			s.log.Error().Err(err).Str("filename", filename).Msg("file removal failed")
		}
	}
	return len(filenames), nil
}
