package middleware

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

// MaxContentBytes caps text submitted for scanning over HTTP.
const MaxContentBytes = 1 << 20

const maxLabelBytes = 256

// ValidateKind accepts the scan kinds the path endpoint understands.
func ValidateKind(kind string) (string, error) {
	switch strings.ToLower(kind) {
	case "file":
		return "file", nil
	case "", string(domain.KindDir):
		return string(domain.KindDir), nil
	case string(domain.KindGit):
		return string(domain.KindGit), nil
	}
	return "", fmt.Errorf("invalid kind: %s (allowed: file, dir, git)", kind)
}

// ValidatePath validates file paths (for security)
func ValidatePath(path string) error {
	if path == "" {
		return nil // Optional field
	}

	cleaned := filepath.Clean(path)

	// Block path traversal attempts
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("path traversal detected")
		}
	}

	// Pseudo filesystems never hold source and reading them can hang
	blocked := []string{"/proc", "/sys", "/dev"}
	for _, b := range blocked {
		if cleaned == b || strings.HasPrefix(cleaned, b+"/") {
			return fmt.Errorf("access to %s is not allowed", b)
		}
	}

	dangerous := []string{"$(", "`", "&", "|", ";", "\n", "\r", "\x00"}
	for _, d := range dangerous {
		if strings.Contains(path, d) {
			return fmt.Errorf("invalid characters in path")
		}
	}
	return nil
}

// ValidateOutput confines a report destination to root, or to exactly the
// configured file. Symlinks are resolved on both sides.
func ValidateOutput(out, root, configured string) error {
	if out == "" {
		return nil
	}
	target := resolvePath(out)
	if configured != "" && resolvePath(configured) == target {
		return nil
	}
	if root == "" {
		return fmt.Errorf("output must be the configured baseline path")
	}
	base := resolvePath(root)
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output must stay inside %s", base)
	}
	return nil
}

// resolvePath follows symlinks of path, or of its parent when path does not
// exist yet.
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}

// ValidateContent rejects empty or oversized scan input.
func ValidateContent(content string) error {
	if content == "" {
		return fmt.Errorf("content cannot be empty")
	}
	if len(content) > MaxContentBytes {
		return fmt.Errorf("content exceeds %d bytes", MaxContentBytes)
	}
	return nil
}

// SanitizeLabel removes dangerous characters from display labels
func SanitizeLabel(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	out := strings.TrimSpace(result.String())
	if len(out) > maxLabelBytes {
		cut := maxLabelBytes
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}

// ValidateScanID validates scan ID format
func ValidateScanID(scanID string) error {
	if scanID == "" {
		return fmt.Errorf("scan ID cannot be empty")
	}
	if _, err := uuid.Parse(scanID); err != nil {
		return fmt.Errorf("invalid scan ID format")
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
