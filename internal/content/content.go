// Package content loads authored content files and converts them into the
// normalized JSON the store keeps. JSON passes through untouched; YAML keeps
// its mapping order; TOML tables follow the order of the document.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/landing/pkg/denorm"
)

// Format names a content file syntax.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Errors returned by this package.
var (
	ErrUnknownFormat = errors.New("unknown content format")
	ErrUnsupported   = errors.New("value has no JSON representation")
)

// ParseFormat maps a format name or file extension to a Format. It accepts
// "yml" as YAML and ignores a leading dot and case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// DetectFormat picks a format from a file name. Names without a known
// extension, stdin ("-") included, are treated as JSON.
func DetectFormat(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatJSON
}

// Decode converts data in format f into a denorm value.
func Decode(data []byte, f Format) (denorm.Value, error) {
	switch f {
	case FormatJSON, "":
		return denorm.Parse(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		return decodeTOML(data)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFormat, string(f))
}

// ToJSON converts data in format f into normalized JSON. JSON input is
// validated and returned as is so literals survive byte for byte.
func ToJSON(data []byte, f Format) ([]byte, error) {
	if f == FormatJSON || f == "" {
		if _, err := denorm.Parse(data); err != nil {
			return nil, err
		}
		return data, nil
	}
	v, err := Decode(data, f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Read loads path, or r when path is "-", and converts it to normalized
// JSON. An empty format is detected from the file name.
func Read(path string, r io.Reader, f Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if f == "" {
		f = DetectFormat(path)
	}
	out, err := ToJSON(data, f)
	if err != nil {
		return nil, fmt.Errorf("decode %s content: %w", f, err)
	}
	return out, nil
}
