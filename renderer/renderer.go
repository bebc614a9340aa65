// Package renderer turns simulation reports into markdown documents.
//
// Each document is a text/template assembled from the embedded .md files
// living next to this package: an assembly template (summary.md) plus the
// partials it includes (summary_accounts.md, ...). Keeping the markup in
// standalone files makes the layout reviewable without reading Go code.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/foresight"
)

//go:embed *.md
var templates embed.FS

// SummaryRenderOptions holds configuration for rendering a summary report.
type SummaryRenderOptions struct {
	SkipAccounts bool // Do not render the per-account breakdown.
	SkipTaxes    bool // Do not render the yearly tax section.
}

// RenderSummary renders a SummaryReport to a markdown string.
func RenderSummary(s *foresight.SummaryReport, opts SummaryRenderOptions) string {
	partials := map[string]string{
		"summary_accounts": "summary_accounts.md",
		"summary_taxes":    "summary_taxes.md",
		"summary_warnings": "summary_warnings.md",
	}

	// An empty file name yields an empty partial, which drops the section.
	if opts.SkipAccounts {
		partials["summary_accounts"] = ""
	}
	if opts.SkipTaxes {
		partials["summary_taxes"] = ""
	}

	return renderTemplate("summary", "summary.md", partials, s)
}

// RenderCashFlow renders a CashFlowReport to a markdown string.
func RenderCashFlow(r *foresight.CashFlowReport) string {
	return renderTemplate("cashflow", "cashflow.md", nil, r)
}

// RenderLedger renders a LedgerReport to a markdown string.
func RenderLedger(r *foresight.LedgerReport) string {
	return renderTemplate("ledger", "ledger.md", nil, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
