package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"golens/domain/explain"
)

// Renderer turns aggregation statistics into a markdown report and,
// optionally, HTML for serving.
type Renderer struct {
	// MaxRows caps the conditions listed per label; 0 means all.
	MaxRows int
}

// NewRenderer creates a renderer listing at most maxRows conditions per label.
func NewRenderer(maxRows int) *Renderer {
	return &Renderer{MaxRows: maxRows}
}

// Markdown renders the per-label average-rank tables.
func (r *Renderer) Markdown(stats *explain.AggregationStats) string {
	var b strings.Builder
	b.WriteString("# Feature importance report\n\n")
	fmt.Fprintf(&b, "Aggregation: %s over %d samples\n\n", stats.Type, stats.Processed)

	for _, label := range stats.LabelKeys() {
		fmt.Fprintf(&b, "## %s\n\n", label)
		b.WriteString("| # | condition | average rank | support |\n")
		b.WriteString("|---|-----------|--------------|---------|\n")
		for i, row := range stats.Ranking(label) {
			if r.MaxRows > 0 && i >= r.MaxRows {
				break
			}
			fmt.Fprintf(&b, "| %d | %s | %.2f | %d |\n", i+1, row.Condition, row.AverageRank, row.Support)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the markdown report to an HTML fragment.
func (r *Renderer) HTML(stats *explain.AggregationStats) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(r.Markdown(stats)), p, renderer)
}
