package uniast

// NodeType classifies a graph node by the symbol kind it represents.
type NodeType string

const (
	KindFunc    NodeType = "FUNC"
	KindType    NodeType = "TYPE"
	KindVar     NodeType = "VAR"
	KindUnknown NodeType = "UNKNOWN"
)

// RelationKind distinguishes the two edge directions kept on every node.
type RelationKind string

const (
	// DependencyRelation marks a symbol the node needs.
	DependencyRelation RelationKind = "Dependency"
	// ReferenceRelation marks a symbol that needs the node.
	ReferenceRelation RelationKind = "Reference"
)

// Relation is a typed edge to another symbol.
type Relation struct {
	Identity
	Kind RelationKind `json:"Kind"`
	Desc string       `json:"Desc,omitempty"`
}

// Node is one symbol in the dependency graph. Dependencies point at the
// symbols this one uses; References point back at its users.
type Node struct {
	Identity
	Type         NodeType   `json:"Type"`
	Dependencies []Relation `json:"Dependencies,omitempty"`
	References   []Relation `json:"References,omitempty"`
}

func (n *Node) hasRelation(id Identity, kind RelationKind) bool {
	rels := n.Dependencies
	if kind == ReferenceRelation {
		rels = n.References
	}
	for _, r := range rels {
		if r.Identity == id {
			return true
		}
	}
	return false
}

// GetNode looks up a graph node by identity.
func (r *Repository) GetNode(id Identity) *Node {
	if r.Graph == nil {
		return nil
	}
	return r.Graph[id.String()]
}

// setNode registers id in the graph, upgrading an UNKNOWN placeholder when
// the real kind becomes known.
func (r *Repository) setNode(id Identity, typ NodeType) *Node {
	key := id.String()
	if n, ok := r.Graph[key]; ok {
		if n.Type == KindUnknown && typ != KindUnknown {
			n.Type = typ
		}
		return n
	}
	n := &Node{Identity: id, Type: typ}
	r.Graph[key] = n
	return n
}

// addRelation records a dependency edge from id to dep and the mirroring
// reference edge from dep back to id. Duplicate edges are dropped.
func (r *Repository) addRelation(id, dep Identity, desc string) {
	if id == dep {
		return
	}
	from := r.setNode(id, r.GetKind(id))
	to := r.setNode(dep, r.GetKind(dep))
	if !from.hasRelation(dep, DependencyRelation) {
		from.Dependencies = append(from.Dependencies, Relation{Identity: dep, Kind: DependencyRelation, Desc: desc})
	}
	if !to.hasRelation(id, ReferenceRelation) {
		to.References = append(to.References, Relation{Identity: id, Kind: ReferenceRelation, Desc: desc})
	}
}

// BuildGraph derives the symbol graph from the structural maps. Safe to call
// again after a merge; edges are deduplicated so the result is the same graph.
func (r *Repository) BuildGraph() {
	if r.Graph == nil {
		r.Graph = map[string]*Node{}
	}
	for _, mod := range r.Modules {
		for _, pkg := range mod.Packages {
			for _, f := range pkg.Functions {
				r.setNode(f.Identity, KindFunc)
				for _, dep := range f.FunctionCalls {
					r.addRelation(f.Identity, dep, "call")
				}
				for _, dep := range f.MethodCalls {
					r.addRelation(f.Identity, dep, "call")
				}
				for _, dep := range f.Types {
					r.addRelation(f.Identity, dep, "type")
				}
				for _, dep := range f.GlobalVars {
					r.addRelation(f.Identity, dep, "var")
				}
			}
			for _, t := range pkg.Types {
				r.setNode(t.Identity, KindType)
				for _, dep := range t.SubStruct {
					r.addRelation(t.Identity, dep, "field")
				}
				for _, dep := range t.InlineStruct {
					r.addRelation(t.Identity, dep, "embed")
				}
			}
			for _, v := range pkg.Vars {
				r.setNode(v.Identity, KindVar)
				if v.Type != nil {
					r.addRelation(v.Identity, *v.Type, "type")
				}
			}
		}
	}
}
