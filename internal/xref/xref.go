// Package xref walks a structural document and records the calls it
// makes to other documents: subprocess invocations and object-action
// invocations. Recording is faithful extraction of the literal target
// written in the export; resolving a target to a known document is the
// registry's concern, and a target that resolves to nothing is still a
// valid reference.
package xref

import "github.com/chrisjgaze/bp-analyzer/internal/bpxml"

// Kind labels the direction of a cross-reference.
type Kind string

const (
	KindSubProcess   Kind = "subprocess-call"
	KindObjectAction Kind = "object-action-call"
)

// CrossReference is one call site. Duplicate call sites to the same
// target produce duplicate records; call-site count is meaningful.
type CrossReference struct {
	SourceID   string `json:"source_id"`
	SourceName string `json:"source_name"`
	Kind       Kind   `json:"kind"`

	// Target is the literal reference as written in the XML: the called
	// process id for subprocess calls (stage display name when the id is
	// absent), or the object name for object-action calls.
	Target string `json:"target"`

	// Action is the invoked action name, object-action calls only.
	Action string `json:"action,omitempty"`

	Page  string `json:"page"`
	Stage string `json:"stage"`
}

// Resolve extracts every cross-reference from a document in document
// order.
func Resolve(docID, docName string, doc *bpxml.Document) []CrossReference {
	var refs []CrossReference

	for _, page := range doc.Pages {
		for _, st := range page.Stages {
			ref := CrossReference{
				SourceID:   docID,
				SourceName: docName,
				Page:       page.Name,
				Stage:      st.Name,
			}

			switch st.Kind {
			case bpxml.StageSubProcess:
				ref.Kind = KindSubProcess
				ref.Target = st.Name
				if st.Call != nil && st.Call.ProcessID != "" {
					ref.Target = st.Call.ProcessID
				}
			case bpxml.StageAction:
				if st.Resource == nil || st.Resource.Object == "" {
					continue
				}
				ref.Kind = KindObjectAction
				ref.Target = st.Resource.Object
				ref.Action = st.Resource.Action
			default:
				continue
			}

			refs = append(refs, ref)
		}
	}
	return refs
}
