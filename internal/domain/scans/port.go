package scans

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, s *Scan) error
	Get(ctx context.Context, id ScanID) (*Scan, error)
	Latest(ctx context.Context, limit int) ([]*Scan, error)
	// filters: kind, status, target (substring)
	Paginate(ctx context.Context, page, pageSize int, filters map[string]any) (PaginatedResult, error)
	Cursor(ctx context.Context, cursorTime time.Time, cursorID string, pageSize int) ([]*Scan, error)
}

// Runner port (interface untuk eksekusi scanner)
type Runner interface {
	// Start launches args[0] with args[1:]. onExit may be nil; when set it is
	// called once after the process exits with the captured output, and the
	// scratch buffer is dropped afterwards.
	Start(args []string, onExit func(exit Exit, output string)) (Process, error)
}

// ArtifactStore port (interface untuk penyimpanan artefak)
type ArtifactStore interface {
	UploadBytes(ctx context.Context, data []byte, key, contentType string) (string, error)
}
