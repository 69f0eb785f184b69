package service

import (
	"context"
	"io"
	"strings"

	"fabtrack/internal/apperrors"
	"fabtrack/internal/domain/parts"
	"fabtrack/internal/filestore"
	"fabtrack/internal/store"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// FileMetadata describes a file that is already stored.
type FileMetadata struct {
	FileName    string
	FilePath    string
	FileType    string
	MimeType    string
	FileSize    int64
	UploadStage string
	UploadedBy  string
}

// FileUpload is a file whose bytes still have to be stored.
type FileUpload struct {
	FileName   string
	Size       int64
	Body       io.Reader
	UploadedBy string
}

type RevisionService struct {
	store *store.Store
	files filestore.FileStore
}

func NewRevisionService(st *store.Store, files filestore.FileStore) *RevisionService {
	return &RevisionService{store: st, files: files}
}

// nextVersion locks the part row and returns max(version)+1 for it.
func nextVersion(tx *gorm.DB, partID string) (int, error) {
	var p parts.Part
	if err := loadPart(tx, partID, &p, true); err != nil {
		return 0, err
	}
	var top int
	if err := tx.Model(&parts.Revision{}).
		Where("part_id = ?", p.ID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&top).Error; err != nil {
		return 0, err
	}
	return top + 1, nil
}

func revisionFromMetadata(partID string, version int, meta FileMetadata) (*parts.Revision, error) {
	name := strings.TrimSpace(meta.FileName)
	if name == "" {
		return nil, apperrors.ErrInvalidInput.Msg("file name is required")
	}
	stage := ClassifyStage(name)
	if meta.UploadStage != "" {
		s, ok := parts.ParseUploadStage(meta.UploadStage)
		if !ok {
			return nil, apperrors.ErrInvalidInput.Msg("unknown upload stage " + meta.UploadStage)
		}
		stage = s
	}
	fileType := strings.ToLower(strings.TrimSpace(meta.FileType))
	if fileType == "" {
		fileType = strings.TrimPrefix(fileExt(name), ".")
	}
	return &parts.Revision{
		PartID:        partID,
		VersionNumber: version,
		FileName:      name,
		FilePath:      meta.FilePath,
		FileType:      fileType,
		MimeType:      meta.MimeType,
		FileSize:      meta.FileSize,
		UploadStage:   stage,
		UploadedBy:    meta.UploadedBy,
	}, nil
}

// AddRevision records a new version of a part. Versions count up from 1 per
// part; the part row lock serialises concurrent uploads to the same part.
func (s *RevisionService) AddRevision(ctx context.Context, partID string, meta FileMetadata) (*parts.Revision, error) {
	if _, err := revisionFromMetadata(partID, 0, meta); err != nil {
		return nil, err
	}

	var rev *parts.Revision
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		version, err := nextVersion(tx, partID)
		if err != nil {
			return err
		}
		rev, err = revisionFromMetadata(partID, version, meta)
		if err != nil {
			return err
		}
		return tx.Create(rev).Error
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// UploadRevision stores the bytes as {stage}_v{N}{ext} and records revision N.
// The file is removed again when the record cannot be committed.
func (s *RevisionService) UploadRevision(ctx context.Context, partID string, up FileUpload) (*parts.Revision, error) {
	name := strings.TrimSpace(up.FileName)
	if name == "" {
		return nil, apperrors.ErrInvalidInput.Msg("file name is required")
	}
	if up.Body == nil || up.Size == 0 {
		return nil, apperrors.ErrInvalidInput.Msg("file is empty")
	}
	if s.files == nil {
		return nil, apperrors.ErrStorageUnavailable.Msg("no file storage configured")
	}

	stage := ClassifyStage(name)
	ext := fileExt(name)
	mime, body := sniffMIME(up.Body)

	var (
		rev *parts.Revision
		key string
	)
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		version, err := nextVersion(tx, partID)
		if err != nil {
			return err
		}

		key = filestore.RevisionKey(partID, string(stage), version, ext)
		path, err := s.files.Put(ctx, key, body, up.Size, mime)
		if err != nil {
			key = ""
			return apperrors.ErrStorageUnavailable.MsgErr("failed to store revision file", err)
		}

		rev, err = revisionFromMetadata(partID, version, FileMetadata{
			FileName:    name,
			FilePath:    path,
			MimeType:    mime,
			FileSize:    up.Size,
			UploadStage: string(stage),
			UploadedBy:  up.UploadedBy,
		})
		if err != nil {
			return err
		}
		return tx.Create(rev).Error
	})
	if err != nil {
		if key != "" {
			if rmErr := s.files.Remove(context.WithoutCancel(ctx), key); rmErr != nil {
				log.Ctx(ctx).Warn().Err(rmErr).Str("key", key).Msg("failed to remove orphaned revision file")
			}
		}
		return nil, err
	}
	return rev, nil
}

// Latest returns the current revision, or nil when the part has none.
func (s *RevisionService) Latest(ctx context.Context, partID string) (*parts.Revision, error) {
	db := s.store.DB(ctx)
	var p parts.Part
	if err := loadPart(db, partID, &p, false); err != nil {
		return nil, store.Translate(err, "load part")
	}
	var revs []parts.Revision
	if err := db.Where("part_id = ?", p.ID).
		Order("version_number DESC").
		Limit(1).
		Find(&revs).Error; err != nil {
		return nil, store.Translate(err, "load latest revision")
	}
	if len(revs) == 0 {
		return nil, nil
	}
	return &revs[0], nil
}

// List returns every revision of a part, oldest version first.
func (s *RevisionService) List(ctx context.Context, partID string) ([]parts.Revision, error) {
	db := s.store.DB(ctx)
	var p parts.Part
	if err := loadPart(db, partID, &p, false); err != nil {
		return nil, store.Translate(err, "load part")
	}
	var revs []parts.Revision
	if err := db.Where("part_id = ?", p.ID).
		Order("version_number ASC").
		Find(&revs).Error; err != nil {
		return nil, store.Translate(err, "list revisions")
	}
	return revs, nil
}
