// Package dashboard turns a fetched patient collection into the regions of
// the dashboard page. Each renderer fills exactly one region; Dispatch runs
// either the full success path or the failure path, never a mix of both.
package dashboard

import (
	"html/template"
	"sync"
)

// Region names an insertion point of the page layout
type Region string

const (
	RegionPatientCard   Region = "patient-card"
	RegionVitals        Region = "vitals-grid"
	RegionChart         Region = "bpChart"
	RegionDiagnosisList Region = "diagnosis-list"
	RegionOtherPatients Region = "other-patients-list"
)

// DefaultRegions is the set declared by the embedded layout
var DefaultRegions = []Region{
	RegionPatientCard,
	RegionVitals,
	RegionChart,
	RegionDiagnosisList,
	RegionOtherPatients,
}

// PrimaryRegions must all show success or all show failure together
var PrimaryRegions = []Region{
	RegionPatientCard,
	RegionVitals,
	RegionChart,
	RegionDiagnosisList,
}

// Page holds the rendered content of each declared region. Regions that
// were not declared cannot be written.
type Page struct {
	mu      sync.RWMutex
	order   []Region
	content map[Region]template.HTML
}

// NewPage declares the given regions, all initially empty
func NewPage(regions ...Region) *Page {
	p := &Page{
		order:   make([]Region, 0, len(regions)),
		content: make(map[Region]template.HTML, len(regions)),
	}
	for _, r := range regions {
		if _, dup := p.content[r]; dup {
			continue
		}
		p.order = append(p.order, r)
		p.content[r] = ""
	}
	return p
}

// NewDefaultPage declares every region of the embedded layout
func NewDefaultPage() *Page {
	return NewPage(DefaultRegions...)
}

// Has reports whether r is declared
func (p *Page) Has(r Region) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.content[r]
	return ok
}

// Set replaces the content of r. It returns false when r is not declared.
func (p *Page) Set(r Region, html template.HTML) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.content[r]; !ok {
		return false
	}
	p.content[r] = html
	return true
}

// Get returns the content of r and whether r is declared
func (p *Page) Get(r Region) (template.HTML, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	html, ok := p.content[r]
	return html, ok
}

// Region is the template accessor; absent regions render empty
func (p *Page) Region(name string) template.HTML {
	html, _ := p.Get(Region(name))
	return html
}

// Regions returns the declared regions in declaration order
func (p *Page) Regions() []Region {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Region, len(p.order))
	copy(out, p.order)
	return out
}
