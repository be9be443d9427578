package datacite

import "refgraph/providers"

// doiResponse ist die Top-Level-Struktur der DataCite JSON:API-Antwort.
type doiResponse struct {
	Data struct {
		Attributes attributes `json:"attributes"`
	} `json:"data"`
}

// attributes enthält die Werk-Metadaten eines DataCite-DOI.
type attributes struct {
	DOI    string `json:"doi"`
	Titles []struct {
		Title string `json:"title"`
	} `json:"titles"`
	Creators []creator `json:"creators"`

	PublicationYear int `json:"publicationYear"`

	Container struct {
		Title     string `json:"title"`
		Volume    string `json:"volume"`
		Issue     string `json:"issue"`
		FirstPage string `json:"firstPage"`
		LastPage  string `json:"lastPage"`
	} `json:"container"`
}

// creator ist ein Autoren-Eintrag in der DataCite-Antwort.
type creator struct {
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	NameIdentifiers []struct {
		NameIdentifier       string `json:"nameIdentifier"`
		NameIdentifierScheme string `json:"nameIdentifierScheme"`
	} `json:"nameIdentifiers"`
	Affiliation []string `json:"affiliation"`
}

// mapAttributesToWork konvertiert DataCite-Attribute in unser normalisiertes Work-Modell.
func mapAttributesToWork(attrs *attributes) *providers.Work {
	work := &providers.Work{
		DOI:            attrs.DOI,
		ContainerTitle: attrs.Container.Title,
		Volume:         attrs.Container.Volume,
		Issue:          attrs.Container.Issue,
	}

	if len(attrs.Titles) > 0 {
		work.Title = attrs.Titles[0].Title
	}
	if attrs.Container.FirstPage != "" {
		work.Pages = attrs.Container.FirstPage
		if attrs.Container.LastPage != "" {
			work.Pages += "-" + attrs.Container.LastPage
		}
	}
	if attrs.PublicationYear > 0 {
		work.DateParts = []int{attrs.PublicationYear}
	}

	for _, c := range attrs.Creators {
		contributor := providers.Contributor{
			Given:  c.GivenName,
			Family: c.FamilyName,
		}
		for _, ni := range c.NameIdentifiers {
			if ni.NameIdentifierScheme == "ORCID" {
				contributor.ORCID = ni.NameIdentifier
				break
			}
		}
		contributor.Affiliations = append(contributor.Affiliations, c.Affiliation...)
		work.Contributors = append(work.Contributors, contributor)
	}

	return work
}
