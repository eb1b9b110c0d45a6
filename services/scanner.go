package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dhowden/tag"

	"musicren/types"
)

// FileService interface defines methods for discovering and inspecting
// audio files in a target directory
type FileService interface {
	ListAudioFiles(dir string) ([]types.AudioFile, error)
	AudioFilePaths(dir string) ([]string, error)
	ReadTags(path string) (*types.AudioMetadata, error)
}

// fileService implements the FileService interface
type fileService struct{}

// NewFileService creates a new file service
func NewFileService() FileService {
	return &fileService{}
}

// AudioFilePaths returns the absolute paths of the audio files directly
// inside dir (non-recursive), in name order. A missing or unreadable
// directory is a fatal configuration error for the caller.
func (fs *fileService) AudioFilePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !types.IsAudioFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ListAudioFiles enumerates the audio files in dir along with their size,
// format and current tags.
func (fs *fileService) ListAudioFiles(dir string) ([]types.AudioFile, error) {
	paths, err := fs.AudioFilePaths(dir)
	if err != nil {
		return nil, err
	}

	files := make([]types.AudioFile, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			// File vanished between listing and stat; skip it.
			continue
		}

		file := types.AudioFile{
			Filename: filepath.Base(path),
			Path:     path,
			Size:     info.Size(),
			Format:   types.FormatOf(path),
		}
		if metadata, err := fs.ReadTags(path); err == nil {
			file.Metadata = metadata
		}
		files = append(files, file)
	}
	return files, nil
}

// ReadTags reads the tags currently present on an audio file using the
// dhowden/tag library. Files without a parseable tag block return an error;
// callers decide whether that means "skip" or "use placeholders".
func (fs *fileService) ReadTags(path string) (*types.AudioMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse audio metadata: %w", err)
	}

	metadata := &types.AudioMetadata{
		Title:    meta.Title(),
		Artist:   meta.Artist(),
		Album:    meta.Album(),
		HasCover: meta.Picture() != nil,
	}
	trackNum, _ := meta.Track()
	metadata.TrackNumber = trackNum

	return metadata, nil
}
