package crossref

import "refgraph/providers"

// worksResponse ist die Top-Level-Struktur der Crossref /works/{doi}-Antwort.
type worksResponse struct {
	Status  string  `json:"status"`
	Message message `json:"message"`
}

// message enthält die eigentlichen Werk-Metadaten.
type message struct {
	Title          []string `json:"title"`
	ContainerTitle []string `json:"container-title"`
	Volume         string   `json:"volume"`
	Issue          string   `json:"issue"`
	Page           string   `json:"page"`
	DOI            string   `json:"DOI"`

	Author []author `json:"author"`

	Published      dateField `json:"published"`
	PublishedPrint dateField `json:"published-print"`
	Issued         dateField `json:"issued"`
}

// author ist ein einzelner Autoren-Eintrag in der Crossref-Antwort.
type author struct {
	Given       string `json:"given"`
	Family      string `json:"family"`
	ORCID       string `json:"ORCID"`
	Affiliation []struct {
		Name string `json:"name"`
	} `json:"affiliation"`
}

// dateField kapselt Crossrefs date-parts-Struktur (Liste von [Jahr, Monat, Tag]).
type dateField struct {
	DateParts [][]int `json:"date-parts"`
}

// first gibt die erste date-parts-Liste zurück, oder nil.
func (d dateField) first() []int {
	if len(d.DateParts) == 0 {
		return nil
	}
	return d.DateParts[0]
}

// mapMessageToWork konvertiert die Crossref-Message in unser normalisiertes Work-Modell.
// Jeder Feldzugriff hat einen expliziten Fallback; die Registry liefert notorisch Teil-Daten.
func mapMessageToWork(msg *message) *providers.Work {
	work := &providers.Work{
		Volume: msg.Volume,
		Issue:  msg.Issue,
		Pages:  msg.Page,
		DOI:    msg.DOI,
	}

	if len(msg.Title) > 0 {
		work.Title = msg.Title[0]
	}
	if len(msg.ContainerTitle) > 0 {
		work.ContainerTitle = msg.ContainerTitle[0]
	}

	// "published" ist das bevorzugte Datum, "published-print" und "issued" sind Fallbacks.
	work.DateParts = msg.Published.first()
	if work.DateParts == nil {
		work.DateParts = msg.PublishedPrint.first()
	}
	if work.DateParts == nil {
		work.DateParts = msg.Issued.first()
	}

	for _, a := range msg.Author {
		contributor := providers.Contributor{
			Given:  a.Given,
			Family: a.Family,
			ORCID:  a.ORCID,
		}
		for _, aff := range a.Affiliation {
			if aff.Name != "" {
				contributor.Affiliations = append(contributor.Affiliations, aff.Name)
			}
		}
		work.Contributors = append(work.Contributors, contributor)
	}

	return work
}
