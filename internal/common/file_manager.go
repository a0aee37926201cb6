package common

import (
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
)

// FileReadOptions controls how FileManager reads a file
type FileReadOptions struct {
	MaxSize int64 // Maximum bytes read, 0 means unlimited
}

// DefaultFileReadOptions returns options for reading a whole file of at most 10MB
func DefaultFileReadOptions() FileReadOptions {
	return FileReadOptions{MaxSize: 10 * 1024 * 1024}
}

// FileManager provides file operations with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists checks if a regular file exists at path
func (fm *FileManager) FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ReadFile reads a file with the given options
func (fm *FileManager) ReadFile(path string, opts FileReadOptions) ([]byte, error) {
	if path == "" {
		return nil, NewValidationError("path", path, "path cannot be empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, WrapErrorf(err, "failed to open file: %s", path)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fm.logger.Error().Err(err).Str("path", path).Msg("Failed to close file.")
		}
	}()

	var reader io.Reader = file
	if opts.MaxSize > 0 {
		reader = io.LimitReader(file, opts.MaxSize)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, WrapErrorf(err, "failed to read file content: %s", path)
	}
	return content, nil
}

// EnsureDirectory creates a directory and its parents if they don't exist
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return WrapErrorf(err, "failed to create directory: %s", path)
	}

	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}
