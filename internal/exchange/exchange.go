// Package exchange reads and writes exercise documents in the formats
// authors work with: the native JSON document and an XLSX sheet with one
// row per card.
package exchange

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benewagner/musicmapping/internal/content"
)

// ErrUnsupportedFormat is returned for file extensions with no codec.
var ErrUnsupportedFormat = errors.New("unsupported exercise format")

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Decode parses data in the given format and validates the result.
func Decode(data []byte, format Format) (content.Content, error) {
	switch format {
	case FormatJSON:
		return content.Parse(data)
	case FormatXLSX:
		return DecodeXLSX(data)
	}
	return content.Content{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Encode renders c in the given format.
func Encode(c content.Content, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return content.Encode(c)
	case FormatXLSX:
		return EncodeXLSX(c)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ReadFile loads and validates the document at path.
func ReadFile(path string) (content.Content, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return content.Content{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return content.Content{}, fmt.Errorf("read %s: %w", path, err)
	}
	c, err := Decode(data, format)
	if err != nil {
		return content.Content{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WriteFile writes c to path in the format implied by its extension.
func WriteFile(path string, c content.Content) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(c, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
