// Package ruling parses court rulings (acórdãos), which are organized by
// section rather than the article/paragraph hierarchy package classifier
// handles.
package ruling

// SectionType enumerates the four canonical sections every ruling is
// consolidated into.
type SectionType string

const (
	SectionSummary  SectionType = "summary"
	SectionReport   SectionType = "report"
	SectionVote     SectionType = "vote"
	SectionDecision SectionType = "decision"
)

// AuthorityLevel is fixed per section type and carried onto every chunk
// cut from that section.
type AuthorityLevel string

const (
	AuthorityMetadata    AuthorityLevel = "metadata"
	AuthorityInformative AuthorityLevel = "informative"
	AuthorityReasoning   AuthorityLevel = "reasoning"
	AuthorityBinding     AuthorityLevel = "binding"
)

func authorityFor(s SectionType) AuthorityLevel {
	switch s {
	case SectionSummary:
		return AuthorityMetadata
	case SectionReport:
		return AuthorityInformative
	case SectionVote:
		return AuthorityReasoning
	case SectionDecision:
		return AuthorityBinding
	default:
		return AuthorityInformative
	}
}

// Header is the metadata block extracted from a ruling's first region.
type Header struct {
	RulingNumber  string
	RulingYear    int
	Panel         string // normalized: "Plenário", "1ª Turma", "2ª Turma"
	CaseNumber    string
	Rapporteur    string
	SessionDate   string
	TechnicalUnit string
	Summary       string
	Outcome       string // "procedente" | "improcedente" | "parcialmente procedente"
}

// Section is one of the four consolidated sections, with its own char
// range into the document's canonical text.
type Section struct {
	Type      SectionType
	SpanID    string // "SEC-REPORT", "SEC-VOTE", "SEC-DECISION", "SEC-SUMMARY"
	Text      string
	CharStart int
	CharEnd   int
}

// RulingChunk is one addressable chunk emitted for a ruling: either a
// section part from the overlap chunker (DeviceType "section"; a section
// that fits under the size limit produces exactly one part whose SpanID
// is bare, no "-P.." suffix) or a device inside a section — a numbered
// paragraph ("paragraph", PAR-REPORT-<n>/PAR-VOTE-<n>) or a dotted
// decision item ("item_ruling", ITEM-9.1).
type RulingChunk struct {
	DeviceType     string
	SectionType    SectionType
	AuthorityLevel AuthorityLevel
	SpanID         string
	Text           string
	CharStart      int
	CharEnd        int
	PartIndex      int
	PartTotal      int
}
