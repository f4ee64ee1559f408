package uniast

// Code is one translated item: the generated source, its use-declarations
// and the toml dependency block the oracle emitted alongside it.
type Code struct {
	Code    string          `json:"Code"`
	Imports map[string]bool `json:"Imports,omitempty"`
	Crates  string          `json:"Crates,omitempty"`
}

// AddImport records a use-declaration, allocating the set on first use.
func (c *Code) AddImport(imp string) {
	if c.Imports == nil {
		c.Imports = map[string]bool{}
	}
	c.Imports[imp] = true
}

// CodeCache accumulates translation output per symbol and per merged file.
// The ID doubles as the cache key, so a restarted run resumes from whatever
// was checkpointed.
type CodeCache struct {
	ID    string          `json:"id"`
	Nodes map[string]Code `json:"nodes"`
	Files map[string]Code `json:"files"`
}

// NewCodeCache creates an empty cache for the given repo key.
func NewCodeCache(id string) *CodeCache {
	return &CodeCache{ID: id, Nodes: map[string]Code{}, Files: map[string]Code{}}
}

// Get returns the cached translation of id.
func (c *CodeCache) Get(id Identity) (Code, bool) {
	code, ok := c.Nodes[id.String()]
	return code, ok
}

// Insert stores the translation of id.
func (c *CodeCache) Insert(id Identity, code Code) {
	c.Nodes[id.String()] = code
}

// GetFile returns the cached merged file under key "pkg/file".
func (c *CodeCache) GetFile(key string) (Code, bool) {
	code, ok := c.Files[key]
	return code, ok
}

// InsertFile stores a merged file under key "pkg/file".
func (c *CodeCache) InsertFile(key string, code Code) {
	c.Files[key] = code
}
