package spreadsheet

import (
	"sort"

	"github.com/vogtb/sheetcalc/packages/address"
)

// DependencyNode represents a cell in the dependency graph
type DependencyNode struct {
	// address of *THIS* node
	Address address.CellAddress

	// cell-to-cell dependencies
	CellPrecedents map[address.CellAddress]*DependencyNode // cells this cell depends on
	CellDependents map[address.CellAddress]*DependencyNode // cells that depend on this cell

	// whether this node belongs to a cell with a formula. referenced-only
	// nodes are dropped once nothing points at them.
	HasFormula bool

	// dirty tracking
	IsDirty bool
}

// DependencyGraph manages cell dependencies and calculation order
type DependencyGraph struct {
	nodes    map[address.CellAddress]*DependencyNode // all nodes in the graph
	dirtySet map[address.CellAddress]struct{}        // cells needing recalculation
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes:    make(map[address.CellAddress]*DependencyNode),
		dirtySet: make(map[address.CellAddress]struct{}),
	}
}

// GetOrCreateNode gets an existing node or creates a new one
func (dg *DependencyGraph) GetOrCreateNode(addr address.CellAddress) *DependencyNode {
	if node, exists := dg.nodes[addr]; exists {
		return node
	}

	node := &DependencyNode{
		Address:        addr,
		CellPrecedents: make(map[address.CellAddress]*DependencyNode),
		CellDependents: make(map[address.CellAddress]*DependencyNode),
	}
	dg.nodes[addr] = node
	return node
}

// GetNode retrieves a node if it exists
func (dg *DependencyGraph) GetNode(addr address.CellAddress) (*DependencyNode, bool) {
	node, exists := dg.nodes[addr]
	return node, exists
}

// SetFormula records that a cell holds a formula (creates node if needed)
func (dg *DependencyGraph) SetFormula(addr address.CellAddress) {
	dg.GetOrCreateNode(addr).HasFormula = true
}

// RemoveNode drops a cell's own dependencies and its formula flag. nodes
// still referenced by other formulas stay so their dependents can be found.
func (dg *DependencyGraph) RemoveNode(addr address.CellAddress) bool {
	node, exists := dg.nodes[addr]
	if !exists {
		return false
	}

	dg.ClearDependencies(addr)
	node.HasFormula = false
	delete(dg.dirtySet, addr)
	node.IsDirty = false
	dg.cleanupNodeIfEmpty(addr)
	return true
}

// cleanupNodeIfEmpty removes a node if it has no dependencies or formula
func (dg *DependencyGraph) cleanupNodeIfEmpty(addr address.CellAddress) {
	node, exists := dg.nodes[addr]
	if !exists {
		return
	}

	// keep node if it has a formula or any dependencies
	if node.HasFormula || len(node.CellPrecedents) > 0 || len(node.CellDependents) > 0 {
		return
	}

	// remove empty node and its dirty flag
	delete(dg.nodes, addr)
	delete(dg.dirtySet, addr)
}

// AddCellDependency adds a cell-to-cell dependency (from depends on to)
func (dg *DependencyGraph) AddCellDependency(from, to address.CellAddress) {
	fromNode := dg.GetOrCreateNode(from)
	toNode := dg.GetOrCreateNode(to)

	fromNode.CellPrecedents[to] = toNode
	toNode.CellDependents[from] = fromNode
}

// RemoveCellDependency removes a cell-to-cell dependency
func (dg *DependencyGraph) RemoveCellDependency(from, to address.CellAddress) bool {
	fromNode, fromExists := dg.nodes[from]
	toNode, toExists := dg.nodes[to]

	if !fromExists || !toExists {
		return false
	}

	delete(fromNode.CellPrecedents, to)
	delete(toNode.CellDependents, from)

	// clean up empty nodes
	dg.cleanupNodeIfEmpty(from)
	dg.cleanupNodeIfEmpty(to)

	return true
}

// ClearDependencies clears all precedents of a cell
func (dg *DependencyGraph) ClearDependencies(addr address.CellAddress) {
	node, exists := dg.nodes[addr]
	if !exists {
		return
	}

	for precedentAddr := range node.CellPrecedents {
		dg.RemoveCellDependency(addr, precedentAddr)
	}
}

// WouldCycle reports whether making addr depend on precedents would close a
// loop: a precedent is addr itself or already (transitively) depends on it
func (dg *DependencyGraph) WouldCycle(addr address.CellAddress, precedents []address.CellAddress) bool {
	if len(precedents) == 0 {
		return false
	}

	dependents := make(map[address.CellAddress]struct{})
	for _, dep := range dg.GetAllDependents(addr) {
		dependents[dep] = struct{}{}
	}

	for _, p := range precedents {
		if p == addr {
			return true
		}
		if _, found := dependents[p]; found {
			return true
		}
	}
	return false
}

// MarkDirty marks a cell as needing recalculation
func (dg *DependencyGraph) MarkDirty(addr address.CellAddress) {
	dg.dirtySet[addr] = struct{}{}

	if node, exists := dg.nodes[addr]; exists {
		node.IsDirty = true
	}
}

// IsDirty reports whether a cell is waiting for recalculation
func (dg *DependencyGraph) IsDirty(addr address.CellAddress) bool {
	_, dirty := dg.dirtySet[addr]
	return dirty
}

// ClearDirty clears the dirty flag for a cell
func (dg *DependencyGraph) ClearDirty(addr address.CellAddress) {
	delete(dg.dirtySet, addr)

	if node, exists := dg.nodes[addr]; exists {
		node.IsDirty = false
	}
}

// ClearAllDirty clears all dirty flags
func (dg *DependencyGraph) ClearAllDirty() {
	dg.dirtySet = make(map[address.CellAddress]struct{})

	for _, node := range dg.nodes {
		node.IsDirty = false
	}
}

// DirtyCells returns the dirty set in row-major order
func (dg *DependencyGraph) DirtyCells() []address.CellAddress {
	result := make([]address.CellAddress, 0, len(dg.dirtySet))
	for addr := range dg.dirtySet {
		result = append(result, addr)
	}
	sortAddresses(result)
	return result
}

// GetDirectDependents returns cells directly depending on this cell
func (dg *DependencyGraph) GetDirectDependents(addr address.CellAddress) []address.CellAddress {
	node, exists := dg.nodes[addr]
	if !exists {
		return nil
	}

	result := make([]address.CellAddress, 0, len(node.CellDependents))
	for dependentAddr := range node.CellDependents {
		result = append(result, dependentAddr)
	}
	sortAddresses(result)
	return result
}

// GetAllDependents returns all cells affected by this cell (transitive closure)
func (dg *DependencyGraph) GetAllDependents(addr address.CellAddress) []address.CellAddress {
	visited := make(map[address.CellAddress]struct{})
	var result []address.CellAddress

	dg.collectDependents(addr, visited, &result)
	return result
}

// collectDependents recursively collects all dependents
func (dg *DependencyGraph) collectDependents(addr address.CellAddress, visited map[address.CellAddress]struct{}, result *[]address.CellAddress) {
	if _, alreadyVisited := visited[addr]; alreadyVisited {
		return
	}
	visited[addr] = struct{}{}

	node, exists := dg.nodes[addr]
	if !exists {
		return
	}

	for dependentAddr := range node.CellDependents {
		if _, alreadyVisited := visited[dependentAddr]; !alreadyVisited {
			*result = append(*result, dependentAddr)
			dg.collectDependents(dependentAddr, visited, result)
		}
	}
}

// GetDirectPrecedents returns cells this cell directly depends on
func (dg *DependencyGraph) GetDirectPrecedents(addr address.CellAddress) []address.CellAddress {
	node, exists := dg.nodes[addr]
	if !exists {
		return nil
	}

	result := make([]address.CellAddress, 0, len(node.CellPrecedents))
	for precedentAddr := range node.CellPrecedents {
		result = append(result, precedentAddr)
	}
	sortAddresses(result)
	return result
}

// NodeCount returns the number of nodes in the graph
func (dg *DependencyGraph) NodeCount() int {
	return len(dg.nodes)
}

// Clear removes all nodes and dependencies from the graph
func (dg *DependencyGraph) Clear() {
	dg.nodes = make(map[address.CellAddress]*DependencyNode)
	dg.dirtySet = make(map[address.CellAddress]struct{})
}

func sortAddresses(addrs []address.CellAddress) {
	sort.Slice(addrs, func(i, j int) bool {
		return address.Less(addrs[i], addrs[j])
	})
}
