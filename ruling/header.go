package ruling

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rulingNumberPattern  = regexp.MustCompile(`(?i)Ac[oó]rd[aã]o\s+n[ºo°]?\s*(\d+)[/\s](\d{4})`)
	panelPattern         = regexp.MustCompile(`(?i)(Plen[áa]rio|1[ªa]\s*Turma|2[ªa]\s*Turma|Primeira\s+Turma|Segunda\s+Turma)`)
	caseNumberPattern    = regexp.MustCompile(`(?i)Processo\s+n[ºo°]?\s*([\d./-]+)`)
	rapporteurPattern    = regexp.MustCompile(`(?i)Relator(?:a)?\s*:?\s*([A-ZÀ-Ý][\p{L}.\s]+)`)
	sessionDatePattern   = regexp.MustCompile(`(?i)Sess[ãa]o\s+(?:de\s+julgamento\s+)?(?:em|de)?\s*:?\s*(\d{1,2}/\d{1,2}/\d{4})`)
	technicalUnitPattern = regexp.MustCompile(`(?i)Unidade\s+T[eé]cnica\s*:?\s*([^\n]+)`)

	outcomeProcedente             = regexp.MustCompile(`(?i)\bprocedente\b`)
	outcomeImprocedente           = regexp.MustCompile(`(?i)\bimprocedente\b`)
	outcomeParcialmenteProcedente = regexp.MustCompile(`(?i)parcialmente\s+procedente`)
)

// ParseHeader extracts ruling metadata from the header region: the text
// that precedes the first primary section marker (SEC-REPORT/SEC-VOTE/
// SEC-DECISION).
func ParseHeader(headerText string) Header {
	h := Header{Summary: strings.TrimSpace(headerText)}

	if m := rulingNumberPattern.FindStringSubmatch(headerText); m != nil {
		h.RulingNumber = m[1]
		if y, err := strconv.Atoi(m[2]); err == nil {
			h.RulingYear = y
		}
	}
	if m := panelPattern.FindStringSubmatch(headerText); m != nil {
		h.Panel = normalizePanel(m[1])
	}
	if m := caseNumberPattern.FindStringSubmatch(headerText); m != nil {
		h.CaseNumber = strings.TrimSpace(m[1])
	}
	if m := rapporteurPattern.FindStringSubmatch(headerText); m != nil {
		h.Rapporteur = strings.TrimSpace(m[1])
	}
	if m := sessionDatePattern.FindStringSubmatch(headerText); m != nil {
		h.SessionDate = m[1]
	}
	if m := technicalUnitPattern.FindStringSubmatch(headerText); m != nil {
		h.TechnicalUnit = strings.TrimSpace(m[1])
	}

	switch {
	case outcomeParcialmenteProcedente.MatchString(headerText):
		h.Outcome = "parcialmente procedente"
	case outcomeImprocedente.MatchString(headerText):
		h.Outcome = "improcedente"
	case outcomeProcedente.MatchString(headerText):
		h.Outcome = "procedente"
	}

	return h
}

func normalizePanel(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(lower, "plen"):
		return "Plenário"
	case strings.Contains(lower, "1") || strings.HasPrefix(lower, "primeira"):
		return "1ª Turma"
	case strings.Contains(lower, "2") || strings.HasPrefix(lower, "segunda"):
		return "2ª Turma"
	default:
		return raw
	}
}
