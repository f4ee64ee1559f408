package manifest

import (
	"strings"
	"testing"
)

func TestCargoRender(t *testing.T) {
	c := NewCargo("org/my-app")
	c.Dep("[dependencies]\nserde = \"1.0\"\ntokio = { version = \"1\", features = [\"full\"] }\n")
	c.Bin("cmd_server", "cmd/server")

	out, err := c.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{
		`name = 'my_app'`,
		`edition = '2021'`,
		"[[bin]]",
		`path = 'src/cmd/server/main.rs'`,
		"[dependencies]",
		"serde",
		"tokio",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("manifest missing %q:\n%s", want, out)
		}
	}
}

func TestCargoDepFallbackLineParse(t *testing.T) {
	c := NewCargo("app")
	// trailing comment breaks strict toml, line parsing still extracts it
	c.Dep("serde = \"1.0\" // serialization\n")

	out, err := c.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "serde") {
		t.Errorf("fallback parse dropped serde:\n%s", out)
	}
	if strings.Contains(out, "//") {
		t.Errorf("comment leaked into manifest:\n%s", out)
	}
}

func TestCargoUndepRemovesSelfDependency(t *testing.T) {
	c := NewCargo("org/app")
	c.Dep("[dependencies]\napp = \"0.1\"\nserde = \"1.0\"\n")
	c.Undep("app")

	out, err := c.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "app = ") {
		t.Errorf("self dependency survived:\n%s", out)
	}
	if !strings.Contains(out, "serde") {
		t.Errorf("unrelated dependency dropped:\n%s", out)
	}
}

func TestCargoFiltersCrateKeys(t *testing.T) {
	c := NewCargo("app")
	c.Dep("[dependencies]\nmy_crate = \"0.1\"\nserde = \"1.0\"\n")

	out, err := c.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "my_crate") {
		t.Errorf("crate-named dependency kept:\n%s", out)
	}
}
