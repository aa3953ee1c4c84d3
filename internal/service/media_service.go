package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	config "github.com/maheshrc27/postpilot/configs"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type MediaInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	URL       string    `json:"url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MediaService interface {
	SaveUpload(ctx context.Context, file *multipart.FileHeader) (*MediaInfo, error)
	Resolve(filename string) (string, error)
	ListPhotos() ([]*MediaInfo, error)
	ListVideos() ([]*MediaInfo, error)
}

type mediaService struct {
	cfg config.Config
	r2  *R2Service
}

func NewMediaService(cfg config.Config, r2 *R2Service) MediaService {
	return &mediaService{cfg: cfg, r2: r2}
}

var photoExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {},
}

var videoUploadExtensions = map[string]struct{}{
	"mp4": {}, "mov": {}, "avi": {},
}

// SaveUpload sniffs the real file type of the upload, stores it in the
// photos or videos directory under a generated name, and mirrors it to R2
// when a bucket is configured.
func (s *mediaService) SaveUpload(ctx context.Context, file *multipart.FileHeader) (*MediaInfo, error) {
	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer content.Close()

	fileBytes, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	kind, err := filetype.Match(fileBytes)
	if err != nil || kind == types.Unknown {
		return nil, fmt.Errorf("unsupported file type: %w", err)
	}

	var dir string
	switch {
	case hasKey(photoExtensions, kind.Extension):
		dir = s.cfg.PhotosDir
	case hasKey(videoUploadExtensions, kind.Extension):
		dir = s.cfg.VideosDir
	default:
		return nil, fmt.Errorf("file type %s is not allowed", kind.Extension)
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	name := id + "." + kind.Extension

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, name), fileBytes, 0o644); err != nil {
		return nil, fmt.Errorf("error saving file: %w", err)
	}

	info := &MediaInfo{
		Name:      name,
		Size:      int64(len(fileBytes)),
		UpdatedAt: time.Now(),
	}

	if s.r2 != nil && s.r2.Enabled() {
		if err := s.r2.Upload(ctx, name, fileBytes, kind.MIME.Value); err != nil {
			slog.Warn("unable to mirror media to R2", "file", name, "error", err)
		} else {
			info.URL = s.r2.PublicURL(name)
		}
	}

	return info, nil
}

// Resolve finds the media reference on disk, trying the photos directory
// first, then videos.
func (s *mediaService) Resolve(filename string) (string, error) {
	for _, dir := range []string{s.cfg.PhotosDir, s.cfg.VideosDir} {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("media file not found: %s", filename)
}

func (s *mediaService) ListPhotos() ([]*MediaInfo, error) {
	return listDir(s.cfg.PhotosDir)
}

func (s *mediaService) ListVideos() ([]*MediaInfo, error) {
	return listDir(s.cfg.VideosDir)
}

func listDir(dir string) ([]*MediaInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []*MediaInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, &MediaInfo{
			Name:      entry.Name(),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
	}
	return files, nil
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
