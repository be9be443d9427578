package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"refgraph/models"
)

// ErrInvalidDOI: die Eingabe ist leer oder lässt sich nicht auf die kanonische Form bringen.
var ErrInvalidDOI = errors.New("invalid DOI")

// doiPattern matcht die kanonische "10.xxxx/yyyy"-Form innerhalb einer Eingabe.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s"<>]+`)

// NormalizeDOI bringt eine DOI-Eingabe auf die kanonische, kleingeschriebene Form.
// URL-Präfixe (https://doi.org/...) und "doi:"-Präfixe werden entfernt.
// DOI-Vergleiche sind immer case-insensitiv; gespeichert wird nur die normalisierte Form.
func NormalizeDOI(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidDOI)
	}

	s = strings.ToLower(s)
	s = strings.TrimPrefix(s, "https://doi.org/")
	s = strings.TrimPrefix(s, "http://doi.org/")
	s = strings.TrimPrefix(s, "https://dx.doi.org/")
	s = strings.TrimPrefix(s, "http://dx.doi.org/")
	s = strings.TrimPrefix(s, "doi:")
	s = strings.TrimSpace(s)

	match := doiPattern.FindString(s)
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidDOI, raw)
	}
	// Abschließende Interpunktion stammt meist aus kopiertem Fließtext.
	match = strings.TrimRight(match, ".,;")
	return match, nil
}

// SanitizeDOI macht eine DOI dateinamen- und schlüsseltauglich:
// Slashes werden ersetzt, das Ergebnis auf 20 Bytes gekürzt.
func SanitizeDOI(doi string) string {
	return TruncateField(strings.ReplaceAll(doi, "/", "_"), 20)
}

// CitationKey erzeugt den deterministischen, eindeutigen Zitationsschlüssel
// einer Entität: ref_<typ-präfix>_<id>_<sanitisierte-doi>.
func CitationKey(typeTag string, id uint, doi string) string {
	prefix := typeTag
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("ref_%s_%d_%s", prefix, id, SanitizeDOI(doi))
}

// AuthorDisplay gibt die Autorenliste als Anzeige-String in Zitationsreihenfolge zurück.
func AuthorDisplay(authors []models.Author) string {
	names := make([]string, 0, len(authors))
	for i := range authors {
		names = append(names, authors[i].FullName())
	}
	return strings.Join(names, ", ")
}

// ORCIDSuffix extrahiert die eigentliche ORCID-Kennung aus einer ORCID-URL
// (alles nach dem letzten '/'), z.B. "https://orcid.org/0000-0002-1825-0097".
func ORCIDSuffix(orcid string) string {
	if orcid == "" {
		return ""
	}
	if idx := strings.LastIndex(orcid, "/"); idx >= 0 {
		return orcid[idx+1:]
	}
	return orcid
}

// TruncateField kürzt einen String auf das Storage-Limit der Zielspalte.
// Der Schnitt landet immer auf einer Runen-Grenze; ein zerschnittenes
// Multibyte-Zeichen wäre kein gültiges UTF-8 mehr und würde vom
// Postgres-Treiber abgelehnt.
func TruncateField(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
