package bpxml

import (
	"regexp"
	"strings"
)

// LanguageUnknown marks code whose language could not be determined.
// It is a recorded value, never a failure.
const LanguageUnknown = "Unknown"

var languageTags = []string{"language", "codelanguage", "lang"}

// NormalizeLanguage folds the language spellings seen across exports
// onto canonical names.
func NormalizeLanguage(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "vb", "vb.net", "visualbasic", "visual basic", "visual_basic":
		return "VB"
	case "c#", "csharp", "cs", "c sharp":
		return "C#"
	case "":
		return LanguageUnknown
	}
	return language
}

// findLanguageTag scans known language tag spellings under an element
// and returns the first non-blank value.
func findLanguageTag(e *element) string {
	for _, tag := range languageTags {
		if n := e.find(tag); n != nil && strings.TrimSpace(n.text) != "" {
			return strings.TrimSpace(n.text)
		}
	}
	return ""
}

// stageLanguage detects a stage's code language: stage-level tags win,
// then document-level tags, then the code element's own attribute.
func stageLanguage(root, stage *element) string {
	if lang := findLanguageTag(stage); lang != "" {
		return NormalizeLanguage(lang)
	}
	if n := stage.find("code"); n != nil && n.attr("language") != "" {
		return NormalizeLanguage(n.attr("language"))
	}
	if lang := findLanguageTag(root); lang != "" {
		return NormalizeLanguage(lang)
	}
	return LanguageUnknown
}

var (
	vbKeywordRe = regexp.MustCompile(`(?im)^\s*(dim|set|byval|byref|end if|end sub|end function|select case|end select)\b`)
	vbIfThenRe  = regexp.MustCompile(`(?im)^\s*if\s+.*\bthen\b`)
	csKeywordRe = regexp.MustCompile(`(?im)^\s*(using\s+\w+|public|private|protected|internal)\b`)
)

// InferLanguage falls back to content signals when the export metadata
// is missing or weak. Purely lexical; never parses the code.
func InferLanguage(language, code string) string {
	lang := NormalizeLanguage(language)
	if lang != LanguageUnknown {
		return lang
	}

	if vbKeywordRe.MatchString(code) || vbIfThenRe.MatchString(code) {
		return "VB"
	}
	if csKeywordRe.MatchString(code) {
		return "C#"
	}
	if strings.Contains(code, "{") && strings.Contains(code, "}") && strings.Contains(code, ";") {
		return "C#"
	}
	return LanguageUnknown
}
