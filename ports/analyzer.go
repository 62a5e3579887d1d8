package ports

import (
	"context"

	"tabscope/domain/analysis"
	"tabscope/domain/dataset"
)

// AnalyzerPort is the single entry point the CLI, HTTP API and report
// generator consume. Implementations return best-effort results with
// per-column errors attached; only dataset access failures abort.
type AnalyzerPort interface {
	Analyze(ctx context.Context, ds *dataset.Dataset, cfg analysis.Config) (*analysis.AnalysisResult, error)
}

// DatasetReader materializes a Dataset from an external source.
// The engine never reads files itself.
type DatasetReader interface {
	Read(ctx context.Context, path string) (*dataset.Dataset, error)
}
