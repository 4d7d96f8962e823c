// Package iomem implements store.TaxonomyStore in memory. Nodes live in
// an arena indexed by their integer IDs. It serves dry runs and tests.
package iomem

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/gnames/gnbackbone/pkg/ent/rank"
	"github.com/gnames/gnbackbone/pkg/schema"
	"github.com/gnames/gnbackbone/pkg/store"
)

type lineageKey struct {
	rank string
	cls  schema.Classification
}

type synonymKey struct {
	name      string
	speciesID int
}

type memstore struct {
	mu sync.RWMutex

	nodes    map[int]*schema.Node
	lineage  map[lineageKey]int
	children map[int][]int
	genera   map[string][]int
	bySpID   map[int]int
	maxNode  int

	species       map[int]*schema.Species
	speciesByName map[string][]int
	lastSpeciesID int

	synonyms       map[int]*schema.Synonym
	synonymsByName map[string][]int
	synonymKeys    map[synonymKey]int
	lastSynonymID  int
}

// New creates an empty in-memory store.
func New() store.TaxonomyStore {
	return &memstore{
		nodes:          make(map[int]*schema.Node),
		lineage:        make(map[lineageKey]int),
		children:       make(map[int][]int),
		genera:         make(map[string][]int),
		bySpID:         make(map[int]int),
		species:        make(map[int]*schema.Species),
		speciesByName:  make(map[string][]int),
		synonyms:       make(map[int]*schema.Synonym),
		synonymsByName: make(map[string][]int),
		synonymKeys:    make(map[synonymKey]int),
	}
}

func (m *memstore) FindNodeByClassification(
	_ context.Context,
	r rank.Rank,
	cls schema.Classification,
) (*schema.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.lineage[lineageKey{rank: r.String(), cls: cls}]
	if !ok {
		return nil, nil
	}
	return m.nodeCopy(id), nil
}

func (m *memstore) InsertNode(_ context.Context, n *schema.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[n.ID]; ok {
		return DuplicateError("nodes", n.ID)
	}
	key := lineageKey{rank: n.Rank, cls: n.Classification}
	if n.Rank != rank.Life.String() {
		if _, ok := m.lineage[key]; ok {
			return DuplicateError("nodes", n.ID)
		}
		m.lineage[key] = n.ID
	}

	node := *n
	m.nodes[n.ID] = &node
	m.maxNode = max(m.maxNode, node.ID)
	m.addChild(node.ParentID, node.ID)
	if node.Rank == rank.Genus.String() {
		m.genera[node.Name] = append(m.genera[node.Name], node.ID)
	}
	if node.SpeciesID > 0 {
		m.bySpID[node.SpeciesID] = node.ID
	}
	return nil
}

func (m *memstore) UpdateNodeParent(_ context.Context, id, parentID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodes[id]
	if !ok {
		return NotFoundError("nodes", id)
	}
	if node.ParentID == parentID {
		return nil
	}
	m.children[node.ParentID] = slices.DeleteFunc(
		m.children[node.ParentID],
		func(v int) bool { return v == id },
	)
	node.ParentID = parentID
	m.addChild(parentID, id)
	return nil
}

func (m *memstore) UpdateNodeSpecies(_ context.Context, id, speciesID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodes[id]
	if !ok {
		return NotFoundError("nodes", id)
	}
	if node.SpeciesID > 0 {
		delete(m.bySpID, node.SpeciesID)
	}
	node.SpeciesID = speciesID
	m.bySpID[speciesID] = id
	return nil
}

func (m *memstore) GetNode(_ context.Context, id int) (*schema.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodeCopy(id), nil
}

func (m *memstore) MaxNodeID(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxNode, nil
}

func (m *memstore) FindGenusNodesByName(
	_ context.Context,
	name string,
) ([]schema.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodesByIDs(m.genera[name]), nil
}

func (m *memstore) GetChildren(_ context.Context, id int) ([]schema.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodesByIDs(m.children[id]), nil
}

func (m *memstore) GetDescendants(
	_ context.Context,
	n schema.Node,
) ([]schema.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var res []schema.Node
	for _, v := range m.nodes {
		if n.Contains(*v) {
			res = append(res, *v)
		}
	}
	slices.SortFunc(res, func(a, b schema.Node) int {
		return a.Lft - b.Lft
	})
	return res, nil
}

func (m *memstore) SetBounds(_ context.Context, id, lft, rgt int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodes[id]
	if !ok {
		return NotFoundError("nodes", id)
	}
	node.Lft = lft
	node.Rgt = rgt
	return nil
}

func (m *memstore) FindSpeciesByName(
	_ context.Context,
	name string,
) ([]schema.Species, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.speciesByIDs(m.speciesByName[name]), nil
}

func (m *memstore) FindSpeciesByNameFold(
	_ context.Context,
	name string,
) ([]schema.Species, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []int
	for k, v := range m.speciesByName {
		if strings.EqualFold(k, name) {
			ids = append(ids, v...)
		}
	}
	return m.speciesByIDs(ids), nil
}

func (m *memstore) FindSpeciesUnderGenus(
	_ context.Context,
	name string,
	genusID int,
) ([]schema.Species, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []int
	for _, id := range m.speciesByName[name] {
		nodeID, ok := m.bySpID[id]
		if !ok {
			continue
		}
		if m.nodes[nodeID].ParentID == genusID {
			ids = append(ids, id)
		}
	}
	return m.speciesByIDs(ids), nil
}

func (m *memstore) GetSpecies(_ context.Context, id int) (*schema.Species, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sp, ok := m.species[id]
	if !ok {
		return nil, nil
	}
	res := *sp
	return &res, nil
}

func (m *memstore) InsertSpecies(_ context.Context, s *schema.Species) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastSpeciesID++
	s.ID = m.lastSpeciesID
	sp := *s
	m.species[s.ID] = &sp
	m.speciesByName[s.CanonicalName] = append(m.speciesByName[s.CanonicalName], s.ID)
	return nil
}

func (m *memstore) FindSynonymByName(
	_ context.Context,
	name string,
) ([]schema.Synonym, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.synonymsByName[name]
	res := make([]schema.Synonym, 0, len(ids))
	for _, id := range ids {
		res = append(res, *m.synonyms[id])
	}
	return res, nil
}

func (m *memstore) FindSynonym(
	_ context.Context,
	name string,
	speciesID int,
) (*schema.Synonym, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.synonymKeys[synonymKey{name: name, speciesID: speciesID}]
	if !ok {
		return nil, nil
	}
	res := *m.synonyms[id]
	return &res, nil
}

func (m *memstore) InsertSynonym(_ context.Context, s *schema.Synonym) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := synonymKey{name: s.Name, speciesID: s.SpeciesID}
	if _, ok := m.synonymKeys[key]; ok {
		return DuplicateError("synonyms", s.SpeciesID)
	}
	m.lastSynonymID++
	s.ID = m.lastSynonymID
	syn := *s
	m.synonyms[s.ID] = &syn
	m.synonymKeys[key] = s.ID
	m.synonymsByName[s.Name] = append(m.synonymsByName[s.Name], s.ID)
	return nil
}

func (m *memstore) WalkNodes(
	ctx context.Context,
	fn func(schema.Node) error,
) error {
	m.mu.RLock()
	ids := make([]int, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	slices.Sort(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.mu.RLock()
		node := m.nodeCopy(id)
		m.mu.RUnlock()
		if node == nil {
			continue
		}
		if err := fn(*node); err != nil {
			return err
		}
	}
	return nil
}

func (m *memstore) CountSpecies(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.species), nil
}

func (m *memstore) CountSynonyms(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.synonyms), nil
}

// Flush is a no-op, writes are visible immediately.
func (m *memstore) Flush(_ context.Context) error {
	return nil
}

func (m *memstore) Close() error {
	return nil
}

func (m *memstore) addChild(parentID, id int) {
	kids := m.children[parentID]
	idx, _ := slices.BinarySearch(kids, id)
	m.children[parentID] = slices.Insert(kids, idx, id)
}

// nodeCopy expects the caller to hold the lock.
func (m *memstore) nodeCopy(id int) *schema.Node {
	node, ok := m.nodes[id]
	if !ok {
		return nil
	}
	res := *node
	return &res
}

func (m *memstore) nodesByIDs(ids []int) []schema.Node {
	res := make([]schema.Node, 0, len(ids))
	for _, id := range ids {
		res = append(res, *m.nodes[id])
	}
	return res
}

// speciesByIDs sorts a copy of ids, they may belong to an index.
func (m *memstore) speciesByIDs(ids []int) []schema.Species {
	ids = slices.Sorted(slices.Values(ids))
	res := make([]schema.Species, 0, len(ids))
	for _, id := range ids {
		res = append(res, *m.species[id])
	}
	return res
}
