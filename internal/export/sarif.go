package export

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/chrisjgaze/bp-analyzer/internal/analysis"
	"github.com/chrisjgaze/bp-analyzer/internal/findings"
)

const toolName = "bp-analyzer"

const informationURI = "https://github.com/chrisjgaze/bp-analyzer"

// ruleDescriptions is the SARIF reporting-descriptor text per category.
var ruleDescriptions = map[string]string{
	findings.CategorySQL:          "Embedded SQL statement in automation code",
	findings.CategoryHTTP:         "Outbound HTTP call from automation code",
	findings.CategoryFileIO:       "Direct file system access",
	findings.CategoryCrypto:       "Cryptographic primitive usage",
	findings.CategoryReflection:   "Runtime reflection or dynamic type loading",
	findings.CategoryProcessStart: "External process or shell invocation",
	findings.CategoryCredential:   "Possible hardcoded credential",
	findings.CategoryPlatform:     "Direct dependency on platform internals",
	findings.CategoryURL:          "Hardcoded URL",
}

// ruleLevel maps a category to a SARIF severity level.
func ruleLevel(category string) string {
	switch category {
	case findings.CategoryCredential:
		return "error"
	case findings.CategorySQL, findings.CategoryProcessStart, findings.CategoryReflection:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes a SARIF 2.1.0 report with one result per finding.
// Code units have no file on disk, so each result points at a synthetic
// bp://<document>/<page>/<stage> artifact with the finding's line as
// the region.
func WriteSARIF(w io.Writer, units []analysis.Unit) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("create sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, informationURI)
	for _, u := range units {
		if len(u.Findings) == 0 {
			continue
		}
		uri := fmt.Sprintf("bp://%s/%s/%s", u.DocumentName, u.Page, u.StageName)
		for _, f := range u.Findings {
			rule := run.AddRule(f.Category).
				WithDescription(ruleDescriptions[f.Category]).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: ruleLevel(f.Category),
				})

			region := sarif.NewRegion()
			if f.Line > 0 {
				region = region.WithStartLine(f.Line)
			}
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri)).
					WithRegion(region),
			)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(f.Snippet)).
				WithLevel(ruleLevel(f.Category)).
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}
	}
	report.AddRun(run)

	return report.PrettyWrite(w)
}
