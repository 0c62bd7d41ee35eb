// Package classify assigns a document type to raw PDF text using an ordered
// keyword rule table. Classification runs once per uploaded file over the
// whole-document text; the resulting label applies to every page of the file.
package classify

import "strings"

// DocType labels the five supported Spanish payroll document kinds.
type DocType string

const (
	Modelo190 DocType = "modelo_190"
	Doc10T    DocType = "10t"
	RNT       DocType = "rnt"
	IDC       DocType = "idc"
	Convenio  DocType = "convenio"
	Unknown   DocType = "unknown"
)

type rule struct {
	label DocType
	match func(string) bool
}

func containsAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	}
}

func containsAll(keywords ...string) func(string) bool {
	return func(text string) bool {
		for _, kw := range keywords {
			if !strings.Contains(text, kw) {
				return false
			}
		}
		return true
	}
}

// rules are evaluated top-down, first match wins. The order encodes
// precedence: a page mentioning both "modelo 190" and RNT wording is a
// modelo 190 document.
var rules = []rule{
	{Modelo190, containsAny("modelo 190", "percepción íntegra")},
	{Doc10T, containsAny("documento 10t", "rendimiento a integrar")},
	{RNT, containsAny("rnt", "base de contingencias comunes")},
	{IDC, containsAny("tipos de cotización", "contingencias profesionales")},
	{Convenio, containsAll("convenio", "jornada", "horas")},
}

// Classify returns the document type for the given text, or Unknown when no
// rule matches. Pure and deterministic over the lower-cased input.
func Classify(text string) DocType {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.match(lower) {
			return r.label
		}
	}
	return Unknown
}
