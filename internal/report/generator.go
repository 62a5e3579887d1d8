// Package report renders a completed analysis as a markdown document,
// with optional HTML conversion for browser consumption.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
)

// Generator renders analysis results
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Markdown renders the full result as a markdown document
func (g *Generator) Markdown(result *analysis.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Report: %s\n\n", result.DatasetName)
	fmt.Fprintf(&b, "- Run: `%s`\n", result.RunID)
	fmt.Fprintf(&b, "- Fingerprint: `%s`\n", result.Fingerprint)
	fmt.Fprintf(&b, "- Rows: %d, Columns: %d\n", result.Rows, result.ColumnCount)
	fmt.Fprintf(&b, "- Generated: %s (%dms)\n\n", result.CreatedAt.Format("2006-01-02 15:04:05 MST"), result.DurationMs)

	g.writeSchema(&b, result)
	g.writeStats(&b, result)
	g.writeMissingness(&b, result)
	g.writeOutliers(&b, result)
	g.writeCorrelations(&b, result)
	g.writeDistributionTests(&b, result)
	g.writeErrors(&b, result)

	return b.String()
}

// HTML renders the markdown report to an HTML fragment
func (g *Generator) HTML(result *analysis.AnalysisResult) []byte {
	extensions := parser.CommonExtensions | parser.Tables
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(g.Markdown(result)))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func (g *Generator) writeSchema(b *strings.Builder, result *analysis.AnalysisResult) {
	if len(result.Schema) == 0 {
		return
	}
	b.WriteString("## Schema\n\n")
	b.WriteString("| Column | Type | Nullable | Distinct | Nulls |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, entry := range result.Schema {
		fmt.Fprintf(b, "| %s | %s | %t | %d | %d |\n",
			entry.Name, entry.Type, entry.Nullable, entry.DistinctCount, entry.NullCount)
	}
	b.WriteString("\n")
}

func (g *Generator) writeStats(b *strings.Builder, result *analysis.AnalysisResult) {
	if len(result.Stats) == 0 {
		return
	}
	b.WriteString("## Column Statistics\n\n")
	for _, s := range result.Stats {
		fmt.Fprintf(b, "### %s (%s)\n\n", s.Column, s.Type)
		fmt.Fprintf(b, "- count: %d, nulls: %d\n", s.Count, s.NullCount)
		if s.Numeric != nil {
			n := s.Numeric
			fmt.Fprintf(b, "- mean: %.6g, stddev: %.6g\n", n.Mean, n.StdDevSample)
			fmt.Fprintf(b, "- min: %.6g, q1: %.6g, median: %.6g, q3: %.6g, max: %.6g\n",
				n.Min, n.Q1, n.Median, n.Q3, n.Max)
			fmt.Fprintf(b, "- skewness: %.6g, kurtosis: %.6g (quantiles: %s)\n", n.Skewness, n.Kurtosis, n.Quantiles)
			if s.Insufficient {
				b.WriteString("- dispersion statistics unreliable: fewer than two values\n")
			}
		}
		if s.Categorical != nil {
			c := s.Categorical
			fmt.Fprintf(b, "- mode: %q (%d), unique: %d, entropy: %.4f\n",
				c.Mode, c.ModeCount, c.UniqueCount, c.Entropy)
			for _, vc := range c.TopValues {
				fmt.Fprintf(b, "  - %q: %d\n", vc.Value, vc.Count)
			}
			if c.OtherCount > 0 {
				fmt.Fprintf(b, "  - (other): %d\n", c.OtherCount)
			}
		}
		if s.Numeric == nil && s.Categorical == nil {
			b.WriteString("- statistics undefined: no analyzable values\n")
		}
		b.WriteString("\n")
	}
}

func (g *Generator) writeMissingness(b *strings.Builder, result *analysis.AnalysisResult) {
	m := result.Missingness
	if m == nil {
		return
	}
	b.WriteString("## Missingness\n\n")
	fmt.Fprintf(b, "- overall missing rate: %.4f\n", m.OverallMissingRate)
	fmt.Fprintf(b, "- complete rows: %d\n\n", m.CompleteRows)

	names := make([]string, 0, len(m.NullRates))
	for name := range m.NullRates {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		rate := m.NullRates[core.ColumnKey(name)]
		if rate > 0 {
			fmt.Fprintf(b, "- %s: %.4f null rate\n", name, rate)
		}
	}
	for _, cluster := range m.Clusters {
		parts := make([]string, len(cluster))
		for i, key := range cluster {
			parts[i] = string(key)
		}
		fmt.Fprintf(b, "- correlated missingness: %s\n", strings.Join(parts, ", "))
	}
	for _, mono := range m.Monotone {
		fmt.Fprintf(b, "- monotone pattern: %s missing implies %s missing\n", mono.Driver, mono.Dependent)
	}
	b.WriteString("\n")
}

func (g *Generator) writeOutliers(b *strings.Builder, result *analysis.AnalysisResult) {
	if result.Outliers == nil || len(result.Outliers.Columns) == 0 {
		return
	}
	b.WriteString("## Outliers\n\n")
	names := make([]string, 0, len(result.Outliers.Columns))
	for name := range result.Outliers.Columns {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		col := result.Outliers.Columns[core.ColumnKey(name)]
		fmt.Fprintf(b, "### %s\n\n", name)
		methods := make([]string, 0, len(col.Methods))
		for method := range col.Methods {
			methods = append(methods, string(method))
		}
		sort.Strings(methods)
		for _, key := range methods {
			method := col.Methods[analysis.OutlierMethod(key)]
			if method.Skipped {
				fmt.Fprintf(b, "- %s: skipped (%s)\n", method.Method, method.Reason)
				continue
			}
			fmt.Fprintf(b, "- %s: %d flagged\n", method.Method, len(method.Flagged))
		}
		b.WriteString("\n")
	}
}

func (g *Generator) writeCorrelations(b *strings.Builder, result *analysis.AnalysisResult) {
	c := result.Correlations
	if c == nil || len(c.Entries) == 0 {
		return
	}
	b.WriteString("## Correlations\n\n")
	b.WriteString("| Pair | Method | Coefficient | n |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, entry := range c.Entries {
		coeff := "undefined"
		if entry.Defined {
			coeff = fmt.Sprintf("%.4f", entry.Coefficient)
		}
		fmt.Fprintf(b, "| %s ~ %s | %s | %s | %d |\n",
			entry.Pair.Left, entry.Pair.Right, entry.Method, coeff, entry.Observations)
	}
	b.WriteString("\n")
}

func (g *Generator) writeDistributionTests(b *strings.Builder, result *analysis.AnalysisResult) {
	if len(result.DistributionTests) == 0 {
		return
	}
	b.WriteString("## Distribution Tests\n\n")
	for _, t := range result.DistributionTests {
		if !t.Applicable {
			fmt.Fprintf(b, "- %s / %s: not applicable (%s)\n", t.Column, t.Test, t.Reason)
			continue
		}
		verdict := "consistent with normality"
		if t.Reject {
			verdict = "normality rejected"
		}
		fmt.Fprintf(b, "- %s / %s: statistic=%.4f p=%.4g (alpha=%.2g): %s\n",
			t.Column, t.Test, t.Statistic, t.PValue, t.Alpha, verdict)
	}
	b.WriteString("\n")
}

func (g *Generator) writeErrors(b *strings.Builder, result *analysis.AnalysisResult) {
	if len(result.Errors) == 0 {
		return
	}
	b.WriteString("## Component Errors\n\n")
	for _, e := range result.Errors {
		target := string(e.Column)
		if e.Pair != nil {
			target = fmt.Sprintf("%s ~ %s", e.Pair.Left, e.Pair.Right)
		}
		if target == "" {
			target = "(dataset)"
		}
		fmt.Fprintf(b, "- [%s] %s: %s\n", e.Component, target, e.Message)
	}
	b.WriteString("\n")
}
