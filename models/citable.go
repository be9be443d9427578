package models

// Citable ist die gemeinsame Sicht auf alle Entitäten, die zitieren oder
// zitiert werden können. Die konkreten Typen bleiben eigenständige Tabellen.
type Citable interface {
	EntityID() uint
	TypeTag() string
	DisplayTitle() string
	// EntityDOI gibt die normalisierte DOI zurück, oder "" wenn keine vorhanden ist.
	EntityDOI() string
	EntityCitationKey() string
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (a *Article) EntityID() uint            { return a.ID }
func (a *Article) TypeTag() string           { return "article" }
func (a *Article) DisplayTitle() string      { return a.Title }
func (a *Article) EntityDOI() string         { return derefOrEmpty(a.DOI) }
func (a *Article) EntityCitationKey() string { return derefOrEmpty(a.CitationKey) }

func (b *Book) EntityID() uint            { return b.ID }
func (b *Book) TypeTag() string           { return "book" }
func (b *Book) DisplayTitle() string      { return b.Title }
func (b *Book) EntityDOI() string         { return derefOrEmpty(b.DOI) }
func (b *Book) EntityCitationKey() string { return derefOrEmpty(b.CitationKey) }

func (t *TranslatedBook) EntityID() uint            { return t.ID }
func (t *TranslatedBook) TypeTag() string           { return "translatedbook" }
func (t *TranslatedBook) DisplayTitle() string      { return t.Title }
func (t *TranslatedBook) EntityDOI() string         { return "" }
func (t *TranslatedBook) EntityCitationKey() string { return derefOrEmpty(t.CitationKey) }

func (t *Thesis) EntityID() uint            { return t.ID }
func (t *Thesis) TypeTag() string           { return "thesis" }
func (t *Thesis) DisplayTitle() string      { return t.Title }
func (t *Thesis) EntityDOI() string         { return derefOrEmpty(t.DOI) }
func (t *Thesis) EntityCitationKey() string { return derefOrEmpty(t.CitationKey) }

func (r *ResearchProject) EntityID() uint            { return r.ID }
func (r *ResearchProject) TypeTag() string           { return "researchproject" }
func (r *ResearchProject) DisplayTitle() string      { return r.Title }
func (r *ResearchProject) EntityDOI() string         { return "" }
func (r *ResearchProject) EntityCitationKey() string { return derefOrEmpty(r.CitationKey) }

func (r *ResearchProposal) EntityID() uint            { return r.ID }
func (r *ResearchProposal) TypeTag() string           { return "researchproposal" }
func (r *ResearchProposal) DisplayTitle() string      { return r.Title }
func (r *ResearchProposal) EntityDOI() string         { return "" }
func (r *ResearchProposal) EntityCitationKey() string { return derefOrEmpty(r.CitationKey) }
