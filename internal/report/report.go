package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"phewasview/domain/phewas"
	"phewasview/internal/pipeline"
)

// Section is one category's top rows
type Section struct {
	Category phewas.AnalysisType
	Table    pipeline.Table
}

// Markdown summarizes a load: gene statuses, the load log and the top rows
// of every category
func Markdown(rs *phewas.ResultSet, rep *phewas.LoadReport, sections []Section) []byte {
	var b bytes.Buffer

	b.WriteString("# ExPheWAS load report\n\n")
	if rs != nil {
		fmt.Fprintf(&b, "Subset: **%s**, %d rows for %d genes, loaded %s.\n\n",
			rs.Subset, len(rs.Rows), len(rs.Genes), rs.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}

	if rep != nil && len(rep.Genes) > 0 {
		b.WriteString("## Genes\n\n")
		b.WriteString("| Token | Symbol | Ensembl ID | Rows | Status |\n")
		b.WriteString("|---|---|---|---:|---|\n")
		for _, g := range rep.Genes {
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n",
				cell(g.Token), cell(g.Symbol), cell(g.EnsemblID), g.Rows, cell(status(g)))
		}
		b.WriteString("\n")
	}

	if rep != nil && len(rep.Log) > 0 {
		b.WriteString("## Log\n\n")
		for _, line := range rep.Log {
			fmt.Fprintf(&b, "- %s\n", escape(line))
		}
		b.WriteString("\n")
	}

	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Category.Label())
		if len(s.Table.Rows) == 0 {
			b.WriteString("_No rows._\n\n")
			continue
		}
		records := s.Table.Records()
		b.WriteString("| " + strings.Join(records[0], " | ") + " |\n")
		b.WriteString(strings.Repeat("|---", len(records[0])) + "|\n")
		for _, rec := range records[1:] {
			cells := make([]string, len(rec))
			for i, v := range rec {
				cells[i] = cell(v)
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

// HTML renders report markdown as a standalone page
func HTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "ExPheWAS load report",
	})
	return markdown.ToHTML(md, p, renderer)
}

func status(g phewas.GeneStatus) string {
	switch {
	case g.Skipped:
		return "unresolved"
	case g.Error != "":
		return "error: " + g.Error
	default:
		return "ok"
	}
}

// cell keeps a value from breaking the table row
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(escape(s), "|", `\|`)
}

var markdownEscaper = strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return markdownEscaper.Replace(strings.ReplaceAll(s, "\n", " "))
}
