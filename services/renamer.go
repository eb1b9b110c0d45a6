package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"musicren/types"
)

// RenameEngine renames audio files to "Artist - Title.ext" based on their
// tags and can undo a previous rename pass from its recorded change set.
type RenameEngine interface {
	RenameByTags(dir string) (types.ChangeSet, error)
	Undo(dir string, changes types.ChangeSet) (int, error)
}

// renameEngine processes files sequentially so collision suffixes are
// assigned deterministically.
type renameEngine struct {
	files   FileService
	dialect Dialect
}

// NewRenameEngine creates an engine using the current platform's filename
// rules.
func NewRenameEngine(files FileService) RenameEngine {
	return &renameEngine{files: files, dialect: CurrentDialect()}
}

// RenameByTags renames every eligible audio file in the directory. Files
// without usable tags, with placeholder artist or title, or already named
// correctly are left alone and get no change-set entry. The returned
// ChangeSet maps each new name back to the original, so applying it in
// reverse undoes the pass.
func (r *renameEngine) RenameByTags(dir string) (types.ChangeSet, error) {
	paths, err := r.files.AudioFilePaths(dir)
	if err != nil {
		return nil, fmt.Errorf("listing audio files: %w", err)
	}

	changes := make(types.ChangeSet)
	for _, path := range paths {
		originalName := filepath.Base(path)

		meta, err := r.files.ReadTags(path)
		if err != nil {
			log.Printf("Skipping %s: could not read tags: %v", originalName, err)
			continue
		}
		if !renameEligible(meta) {
			continue
		}

		ext := strings.ToLower(filepath.Ext(path))
		candidate := SanitizeFilename(fmt.Sprintf("%s - %s%s", meta.Artist, meta.Title, ext), r.dialect)
		if candidate == originalName {
			continue
		}

		newName, err := r.safeRename(dir, path, candidate)
		if err != nil {
			log.Printf("Warning: could not rename %s: %v", originalName, err)
			continue
		}
		changes[newName] = originalName
	}
	return changes, nil
}

// renameEligible reports whether the file's tags identify it well enough to
// derive a filename. Placeholder values never produce a rename.
func renameEligible(meta *types.AudioMetadata) bool {
	if meta == nil {
		return false
	}
	if meta.Artist == "" || meta.Artist == types.PlaceholderArtist {
		return false
	}
	if meta.Title == "" || meta.Title == types.PlaceholderTitle {
		return false
	}
	return true
}

// safeRename renames path to candidate inside dir, appending " (N)" to the
// stem until the target name is free. It returns the name actually used.
func (r *renameEngine) safeRename(dir, path, candidate string) (string, error) {
	ext := filepath.Ext(candidate)
	stem := strings.TrimSuffix(candidate, ext)

	newName := candidate
	for counter := 1; ; counter++ {
		target := filepath.Join(dir, newName)
		_, err := os.Stat(target)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			// Anything other than "not there" means we cannot probe the
			// target, so suffixing would loop forever.
			return "", fmt.Errorf("checking target name %s: %w", newName, err)
		}
		newName = fmt.Sprintf("%s (%d)%s", stem, counter, ext)
	}

	if err := os.Rename(path, filepath.Join(dir, newName)); err != nil {
		return "", err
	}
	return newName, nil
}

// Undo restores original filenames from a change set. Entries whose file
// has disappeared or whose original name is now taken are skipped with a
// warning; the returned count is the number of files actually restored.
func (r *renameEngine) Undo(dir string, changes types.ChangeSet) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}

	restored := 0
	for newName, originalName := range changes {
		current := filepath.Join(dir, newName)
		if _, err := os.Stat(current); err != nil {
			log.Printf("Warning: cannot undo rename of %s: %v", newName, err)
			continue
		}
		target := filepath.Join(dir, originalName)
		if _, err := os.Stat(target); err == nil {
			log.Printf("Warning: cannot restore %s, a file with that name already exists", originalName)
			continue
		}
		if err := os.Rename(current, target); err != nil {
			log.Printf("Warning: could not restore %s: %v", originalName, err)
			continue
		}
		restored++
	}
	return restored, nil
}
