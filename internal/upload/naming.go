// Package upload stores point photos under collision-resistant names, either on
// disk or in an S3-compatible bucket.
package upload

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const prefixBytes = 6

// GenerateName returns "{12 hex chars}-{base name of original}".
func GenerateName(original string) (string, error) {
	return generateName(rand.Reader, original)
}

func generateName(r io.Reader, original string) (string, error) {
	base := filepath.Base(strings.TrimSpace(original))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "", fmt.Errorf("invalid file name %q", original)
	}

	buf := make([]byte, prefixBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf) + "-" + base, nil
}
