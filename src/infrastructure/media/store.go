package media

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "go-wa-dispatch/src/infrastructure/logger"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/gabriel-vasile/mimetype"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Store writes inbound media under a single directory.
type Store struct {
	Dir    string
	Logger *logger.Logger
}

func NewStore(dir string, loggerInstance *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media dir %s: %w", dir, err)
	}
	return &Store{Dir: dir, Logger: loggerInstance}, nil
}

// Save names the file after the message id and picks the extension from
// the content. It returns the path written.
func (s *Store) Save(messageID string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty media for message %s", messageID)
	}
	name := unsafeChars.ReplaceAllString(messageID, "_")
	if name == "" {
		name = "media"
	}
	mime, ext := Detect(data)

	path, err := securejoin.SecureJoin(s.Dir, name+ext)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.Logger.Error("Error writing media file", zap.String("path", path), zap.Error(err))
		return "", err
	}
	s.Logger.Info("Media stored",
		zap.String("messageId", messageID),
		zap.String("mime", mime),
		zap.String("file", filepath.Base(path)),
		zap.Int("bytes", len(data)))
	return path, nil
}

// Detect sniffs the MIME type and a file extension (with its dot) from the
// content. filetype wins for the extension when it recognises the bytes.
func Detect(data []byte) (string, string) {
	detected := mimetype.Detect(data)
	mime := detected.String()
	ext := detected.Extension()

	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		ext = "." + kind.Extension
		if strings.HasPrefix(mime, "application/octet-stream") {
			mime = kind.MIME.Value
		}
	}
	if ext == "" {
		ext = ".bin"
	}
	return mime, ext
}
