package providers

import (
	"context"
	"errors"
)

// Fehler-Taxonomie für Registry-Aufrufe. Netzwerkfehler, Timeouts und kaputte
// Payloads werden auf ErrRegistry abgebildet; eine unbekannte DOI auf ErrWorkNotFound.
var (
	ErrRegistry     = errors.New("registry unavailable")
	ErrWorkNotFound = errors.New("work not found in registry")
)

// Work ist das normalisierte Metadaten-Modell, das jede Registry liefert.
type Work struct {
	Title          string
	ContainerTitle string
	Volume         string
	Issue          string
	Pages          string
	DOI            string

	Contributors []Contributor

	// DateParts: [Jahr, Monat, Tag]; Monat und Tag können fehlen.
	DateParts []int
}

// Contributor ist ein Autoren-Eintrag aus der Registry-Antwort.
type Contributor struct {
	Given        string
	Family       string
	ORCID        string
	Affiliations []string
}

// Registry ist das Interface, das jeder DOI-Resolver (z.B. Crossref, DataCite) implementieren muss.
type Registry interface {
	// Lookup löst eine normalisierte DOI in ein Work auf.
	Lookup(ctx context.Context, doi string) (*Work, error)

	// Name gibt den eindeutigen Namen der Registry zurück (z.B. "crossref").
	Name() string
}
