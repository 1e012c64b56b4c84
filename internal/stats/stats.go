// Package stats collects per-document stage statistics: stage-type
// counts, logging coverage, credential component usage, and resource
// object usage.
package stats

import "github.com/chrisjgaze/bp-analyzer/internal/bpxml"

// CredentialsObject is the platform component that stages invoke to
// fetch stored credentials.
const CredentialsObject = "Blueprism.Automate.clsCredentialsActions"

// LoggingSummary describes how much of a document's stage set writes
// session logs.
type LoggingSummary struct {
	TotalStages    int
	EnabledCount   int
	InhibitedCount int
	ExceptionCount int
	EnabledNames   []string
	InhibitedNames []string
	FullLoggingPct float64
	NoLoggingPct   float64
	ErrorOnlyPct   float64
}

// CredentialUse is one stage that touches the credentials component.
type CredentialUse struct {
	Page  string
	Stage string
}

// Report is everything collected from one document.
type Report struct {
	StageTypes  map[string]int
	Logging     LoggingSummary
	Credentials []CredentialUse
	Resources   []string // distinct resource objects, first-seen order
}

// Collect walks every stage of a document once and gathers all
// statistics. Pure function of the document.
func Collect(doc *bpxml.Document) Report {
	rep := Report{StageTypes: map[string]int{}}
	seenResources := map[string]bool{}

	for _, page := range doc.Pages {
		for _, st := range page.Stages {
			marker := st.TypeMarker
			if marker == "" {
				marker = "N/A"
			}
			rep.StageTypes[marker]++

			name := st.Name
			if name == "" {
				name = "Unnamed Stage"
			}

			if marker == "Exception" {
				rep.Logging.ExceptionCount++
			}
			if st.LogInhibited {
				rep.Logging.InhibitedCount++
				rep.Logging.InhibitedNames = append(rep.Logging.InhibitedNames, name)
			} else {
				rep.Logging.EnabledCount++
				rep.Logging.EnabledNames = append(rep.Logging.EnabledNames, name)
			}

			if st.Resource != nil && st.Resource.Object != "" {
				if st.Resource.Object == CredentialsObject {
					rep.Credentials = append(rep.Credentials, CredentialUse{Page: page.Name, Stage: name})
				}
				if !seenResources[st.Resource.Object] {
					seenResources[st.Resource.Object] = true
					rep.Resources = append(rep.Resources, st.Resource.Object)
				}
			}
		}
	}

	l := &rep.Logging
	l.TotalStages = l.EnabledCount + l.InhibitedCount
	l.FullLoggingPct = SafePct(l.EnabledCount, l.TotalStages)
	l.NoLoggingPct = SafePct(l.InhibitedCount, l.TotalStages)
	l.ErrorOnlyPct = SafePct(l.ExceptionCount, l.TotalStages)

	return rep
}

// SafePct returns part/whole as a percentage rounded to two decimals,
// and 0 for an empty whole.
func SafePct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	pct := float64(part) / float64(whole) * 100
	return float64(int(pct*100+0.5)) / 100
}
