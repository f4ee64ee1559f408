package uniast

import (
	"testing"
)

func TestIdentityRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
	}{
		{"plain", Identity{ModPath: "example.com/app", PkgPath: "example.com/app/util", Name: "Min"}},
		{"method", Identity{ModPath: "example.com/app", PkgPath: "example.com/app", Name: "Server.Run"}},
		{"external", Identity{ModPath: "github.com/lib/pq@v1.10.0", PkgPath: "github.com/lib/pq", Name: "Open"}},
		{"empty module", Identity{ModPath: "", PkgPath: "unsafe", Name: "Pointer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIdentity(tt.id.String())
			if err != nil {
				t.Fatalf("ParseIdentity(%q) error: %v", tt.id.String(), err)
			}
			if got != tt.id {
				t.Errorf("round trip = %+v, want %+v", got, tt.id)
			}
		})
	}
}

func TestParseIdentityInvalid(t *testing.T) {
	for _, s := range []string{"", "no separators", "mod?pkg-no-name"} {
		if _, err := ParseIdentity(s); err == nil {
			t.Errorf("ParseIdentity(%q) expected error", s)
		}
	}
}

func TestIdentityInside(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want bool
	}{
		{"local", Identity{ModPath: "example.com/app", PkgPath: "example.com/app", Name: "main"}, true},
		{"versioned external", Identity{ModPath: "github.com/lib/pq@v1.10.9", PkgPath: "github.com/lib/pq", Name: "Open"}, false},
		{"no module", Identity{ModPath: "", PkgPath: "fmt", Name: "Println"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Inside(); got != tt.want {
				t.Errorf("Inside() = %v, want %v", got, tt.want)
			}
		})
	}
}

func testRepo() *Repository {
	mod := "example.com/app"
	pkg := "example.com/app"
	f := &Function{
		Identity: Identity{ModPath: mod, PkgPath: pkg, Name: "Run"},
		File:     "main.go", Line: 10, Exported: true,
		Content:       "func Run() {}",
		FunctionCalls: []Identity{{ModPath: mod, PkgPath: pkg, Name: "helper"}},
		Types:         []Identity{{ModPath: mod, PkgPath: pkg, Name: "Config"}},
	}
	h := &Function{
		Identity: Identity{ModPath: mod, PkgPath: pkg, Name: "helper"},
		File:     "main.go", Line: 20,
		Content: "func helper() {}",
	}
	c := &Struct{
		Identity: Identity{ModPath: mod, PkgPath: pkg, Name: "Config"},
		File:     "config.go", Line: 5, Exported: true, TypeKind: "struct",
		Content: "type Config struct{}",
	}
	return &Repository{
		ID: "app",
		Modules: map[string]*Module{
			mod: {
				Name: mod,
				Dir:  "/src/app",
				Packages: map[string]*Package{
					pkg: {
						PkgPath:   pkg,
						IsMain:    true,
						Functions: map[string]*Function{"Run": f, "helper": h},
						Types:     map[string]*Struct{"Config": c},
						Vars:      map[string]*Variant{},
					},
				},
			},
		},
	}
}

func TestBuildGraph(t *testing.T) {
	repo := testRepo()
	repo.BuildGraph()

	run := Identity{ModPath: "example.com/app", PkgPath: "example.com/app", Name: "Run"}
	helper := Identity{ModPath: "example.com/app", PkgPath: "example.com/app", Name: "helper"}

	node := repo.GetNode(run)
	if node == nil {
		t.Fatal("missing node for Run")
	}
	if node.Type != KindFunc {
		t.Errorf("Run node type = %s, want FUNC", node.Type)
	}
	if len(node.Dependencies) != 2 {
		t.Fatalf("Run dependencies = %d, want 2", len(node.Dependencies))
	}

	hn := repo.GetNode(helper)
	if hn == nil {
		t.Fatal("missing node for helper")
	}
	if len(hn.References) != 1 || hn.References[0].Identity != run {
		t.Errorf("helper references = %+v, want back-edge to Run", hn.References)
	}
}

func TestBuildGraphIdempotent(t *testing.T) {
	repo := testRepo()
	repo.BuildGraph()
	run := Identity{ModPath: "example.com/app", PkgPath: "example.com/app", Name: "Run"}
	before := len(repo.GetNode(run).Dependencies)

	repo.BuildGraph()
	if after := len(repo.GetNode(run).Dependencies); after != before {
		t.Errorf("dependencies after rebuild = %d, want %d", after, before)
	}
}

func TestMergePreservesSummaries(t *testing.T) {
	repo := testRepo()
	run := Identity{ModPath: "example.com/app", PkgPath: "example.com/app", Name: "Run"}
	repo.GetFunction(run).CompressData = "starts the app"
	repo.Modules["example.com/app"].Packages["example.com/app"].CompressData = "entry package"

	fresh := testRepo()
	fresh.GetFunction(run).Content = "func Run() { fmt.Println() }"
	fresh.GetFunction(run).Line = 12

	repo.MergeWith(fresh)

	got := repo.GetFunction(run)
	if got.CompressData != "starts the app" {
		t.Errorf("summary lost after merge: %q", got.CompressData)
	}
	if got.Content != "func Run() { fmt.Println() }" || got.Line != 12 {
		t.Errorf("structural fields not replaced: line=%d content=%q", got.Line, got.Content)
	}
	if pkg := repo.Modules["example.com/app"].Packages["example.com/app"]; pkg.CompressData != "entry package" {
		t.Errorf("package summary lost after merge: %q", pkg.CompressData)
	}
}

func TestMergeAddsNewSymbols(t *testing.T) {
	repo := testRepo()
	fresh := testRepo()
	extra := Identity{ModPath: "example.com/app", PkgPath: "example.com/app", Name: "Stop"}
	fresh.Modules["example.com/app"].Packages["example.com/app"].Functions["Stop"] = &Function{
		Identity: extra, File: "main.go", Line: 30, Content: "func Stop() {}",
	}

	repo.MergeWith(fresh)
	if repo.GetFunction(extra) == nil {
		t.Error("new symbol missing after merge")
	}
}

func TestContains(t *testing.T) {
	repo := testRepo()
	mod, pkg := "example.com/app", "example.com/app"

	tests := []struct {
		name string
		id   Identity
		want bool
	}{
		{"function", Identity{ModPath: mod, PkgPath: pkg, Name: "Run"}, true},
		{"type", Identity{ModPath: mod, PkgPath: pkg, Name: "Config"}, true},
		{"missing", Identity{ModPath: mod, PkgPath: pkg, Name: "nope"}, false},
		{"wrong package", Identity{ModPath: mod, PkgPath: "example.com/app/other", Name: "Run"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repo.Contains(tt.id); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestFormatFile(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"main.go", "main.go"},
		{"pkg/sub/svc.go", "pkg_sub_svc.go"},
		{"api.pb.go", "api_pb.go"},
		{"a-b/c d.go", "a_b_c_d.go"},
	}
	for _, tt := range tests {
		if got := FormatFile(tt.in); got != tt.want {
			t.Errorf("FormatFile(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToFilesOrdering(t *testing.T) {
	repo := testRepo()
	pkg := repo.Modules["example.com/app"].Packages["example.com/app"]
	files := pkg.ToFiles()

	syms, ok := files["main.go"]
	if !ok {
		t.Fatalf("main.go missing from groups: %v", files)
	}
	if len(syms) != 2 {
		t.Fatalf("main.go symbols = %d, want 2", len(syms))
	}
	if syms[0].Name != "Run" || syms[1].Name != "helper" {
		t.Errorf("symbols out of line order: %s, %s", syms[0].Name, syms[1].Name)
	}
	if _, ok := files["config.go"]; !ok {
		t.Error("config.go missing from groups")
	}
}
