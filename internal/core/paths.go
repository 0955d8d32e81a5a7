package core

import "sync"

// NodePathIndex remembers the slug of every structured row so later content
// can link to it by (language, kind, source id).
type NodePathIndex struct {
	mu    sync.RWMutex
	paths map[string]map[Kind]map[string]string
}

func NewNodePathIndex() *NodePathIndex {
	return &NodePathIndex{paths: make(map[string]map[Kind]map[string]string)}
}

// Save records slug, which may be empty.
func (p *NodePathIndex) Save(langcode string, kind Kind, id, slug string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	byKind, ok := p.paths[langcode]
	if !ok {
		byKind = make(map[Kind]map[string]string)
		p.paths[langcode] = byKind
	}
	byID, ok := byKind[kind]
	if !ok {
		byID = make(map[string]string)
		byKind[kind] = byID
	}
	byID[id] = slug
}

// Lookup returns the recorded slug. ok is false for rows never structured.
func (p *NodePathIndex) Lookup(langcode string, kind Kind, id string) (slug string, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	slug, ok = p.paths[langcode][kind][id]
	return slug, ok
}
