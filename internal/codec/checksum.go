package codec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ComputeChecksum returns the hex-encoded SHA-256 of data.
func ComputeChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ComputeChecksumReader computes the hex-encoded SHA-256 of everything read from r.
// This is useful for computing checksums of large payloads without loading them into memory.
func ComputeChecksumReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ChecksumFile computes the checksum of the payload stored at path.
func ChecksumFile(path string) (string, error) {
	//nolint:gosec // G304: payload paths come from descriptors
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open payload file: %w", err)
	}
	defer file.Close()

	sum, err := ComputeChecksumReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return sum, nil
}

// ValidateChecksum compares a computed checksum against a stored one.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored string) error {
	if computed != stored {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, computed, stored)
	}
	return nil
}
