package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxPathLen bounds split path length.
const MaxPathLen = 255

// ValidatePath checks a split path for traversal and separators.
// Split paths are plain file names inside the dataset directory.
func ValidatePath(path string) error {
	if path == "" {
		return &ValidationError{Type: "invalid_path", Details: "empty path"}
	}
	if len(path) > MaxPathLen {
		return &ValidationError{
			Type:    "invalid_path",
			Field:   path,
			Details: fmt.Sprintf("length %d > max %d", len(path), MaxPathLen),
		}
	}
	if filepath.IsAbs(path) {
		return &ValidationError{Type: "invalid_path", Field: path, Details: "absolute path"}
	}
	if strings.Contains(path, "..") {
		return &ValidationError{Type: "invalid_path", Field: path, Details: "contains '..'"}
	}
	if strings.ContainsAny(path, `/\`) {
		return &ValidationError{Type: "invalid_path", Field: path, Details: "contains path separator (/ or \\)"}
	}
	if strings.Contains(path, "\x00") {
		return &ValidationError{Type: "invalid_path", Field: path, Details: "contains null byte"}
	}
	return nil
}

// Validate checks descriptor structure. When dir is non-empty, each split's payload file
// under dir must also exist with exactly the size its shape and dtype imply.
func (d *Descriptor) Validate(dir string) error {
	if d.Dataset == "" {
		return &ValidationError{Type: "missing_field", Field: "dataset", Details: "dataset name is empty"}
	}
	if d.ModelName == "" {
		return &ValidationError{Type: "missing_field", Field: "model_name", Details: "model name is empty"}
	}

	seen := make(map[string]string, 4)
	for _, ns := range d.Splits() {
		s := ns.Split
		if err := ValidatePath(s.Path); err != nil {
			return &ValidationError{Type: "invalid_path", Field: ns.Name, Details: err.Error()}
		}
		if other, dup := seen[s.Path]; dup {
			return &ValidationError{
				Type:    "duplicate_path",
				Field:   ns.Name,
				Details: fmt.Sprintf("%s already used by %s", s.Path, other),
			}
		}
		seen[s.Path] = ns.Name
		if err := s.Shape.Validate(); err != nil {
			return &ValidationError{Type: "invalid_shape", Field: ns.Name, Details: err.Error()}
		}
		if s.DType.String() == "unknown" {
			return &ValidationError{Type: "invalid_dtype", Field: ns.Name, Details: s.DType.String()}
		}
	}

	for _, key := range d.ExtraKeys() {
		if err := d.Extra[key].validate(); err != nil {
			return &ValidationError{Type: "invalid_extra", Field: key, Details: err.Error()}
		}
	}

	if dir == "" {
		return nil
	}
	return d.validateFiles(dir)
}

func (d *Descriptor) validateFiles(dir string) error {
	for _, ns := range d.Splits() {
		info, err := os.Stat(filepath.Join(dir, ns.Split.Path))
		if err != nil {
			return &ValidationError{Type: "missing_payload", Field: ns.Name, Details: err.Error()}
		}
		if want := ns.Split.ByteSize(); info.Size() != want {
			return &ValidationError{
				Type:    "size_mismatch",
				Field:   ns.Name,
				Details: fmt.Sprintf("%s is %d bytes, shape %s %s needs %d", ns.Split.Path, info.Size(), ns.Split.Shape, ns.Split.DType, want),
			}
		}
	}
	return nil
}
