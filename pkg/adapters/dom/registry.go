package dom

import "github.com/aretw0/hostbridge/pkg/ports"

// Registry adapts a Document to ports.ElementRegistry.
type Registry struct {
	Doc *Document
}

// NewRegistry wraps doc.
func NewRegistry(doc *Document) Registry {
	return Registry{Doc: doc}
}

// Lookup implements ports.ElementRegistry.
func (r Registry) Lookup(id string) (ports.Element, bool) {
	if r.Doc == nil {
		return nil, false
	}
	el, ok := r.Doc.Lookup(id)
	if !ok {
		return nil, false
	}
	return el, true
}
