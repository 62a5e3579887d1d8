package ports

import (
	"context"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
)

// ResultStore persists completed analysis results keyed by fingerprint.
// It backs the orchestrator's in-memory cache with a durable second
// level; entries are write-once per fingerprint.
type ResultStore interface {
	Save(ctx context.Context, result *analysis.AnalysisResult) error
	// Find returns core.ErrResultNotFound when no entry exists.
	Find(ctx context.Context, fp core.Fingerprint) (*analysis.AnalysisResult, error)
}
