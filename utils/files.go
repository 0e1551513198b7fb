package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

func FileNameFromCd(cd string) string {
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	fn := strings.TrimSpace(params["filename"])
	fn = strings.ReplaceAll(fn, string(os.PathSeparator), "_")
	return fn
}

// FileNameFromURL returns the last path segment of rawURL, or "" when there is none.
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// SanitizeFilename strips directories and whitespace from a server supplied
// name and guarantees an extension, falling back to fallbackExt.
func SanitizeFilename(filename, fallbackStem, fallbackExt string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return fallbackStem + fallbackExt
	}

	filename = filepath.Base(filename)

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	if ext == "" || ext == "." {
		ext = fallbackExt
	}

	stem = strings.Join(strings.Fields(stem), "-")
	stem = strings.ReplaceAll(stem, ".", "-")
	stem = strings.Trim(stem, "-")
	if stem == "" {
		stem = fallbackStem
	}

	ext = strings.ToLower(strings.ReplaceAll(ext, " ", ""))
	return stem + ext
}

// prevents directory traversal; only writes under baseDir
func SafeSubdir(base, subdir string) (string, error) {
	subdir = strings.TrimSpace(subdir)
	subdir = strings.TrimPrefix(subdir, "/")
	subdir = strings.TrimPrefix(subdir, "\\")
	clean := filepath.Clean(subdir)

	if clean == "." || clean == "" {
		return filepath.Abs(base)
	}

	joined := filepath.Join(base, clean)

	baseAbs, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	joinedAbs, err := filepath.Abs(joined)
	if err != nil {
		return "", err
	}

	sep := string(os.PathSeparator)
	if !(joinedAbs == baseAbs || strings.HasPrefix(joinedAbs, baseAbs+sep)) {
		return "", errors.New("path traversal detected")
	}
	return joinedAbs, nil
}

func NewJobID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
