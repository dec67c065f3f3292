package docgen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedImageFormat is returned when an embedded image's byte
// signature is neither PNG nor JPEG.
var ErrUnsupportedImageFormat = errors.New("unsupported image format: expected PNG or JPEG signature")

// ErrNoLayouts is returned when a PPTX template yields zero discoverable
// layouts, leaving nothing to map slides onto.
var ErrNoLayouts = errors.New("template has no discoverable layouts")

// ValidationError reports a spec that failed its schema before any
// drawing occurred. No partial document is ever produced alongside one.
type ValidationError struct {
	Format string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s spec validation failed: %s", e.Format, strings.Join(e.Issues, "; "))
}

// BatchError identifies which document type failed a generation batch.
// A single failing type aborts the whole batch; nothing is persisted.
type BatchError struct {
	DocumentType string
	Err          error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("generating %q: %v", e.DocumentType, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
