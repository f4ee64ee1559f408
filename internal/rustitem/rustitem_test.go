package rustitem

import (
	"context"
	"strings"
	"testing"

	"xlate/internal/uniast"
)

const sample = `use std::collections::HashMap;
use crate::util::log;

pub fn foo() -> i32 { 1 }

pub struct Foo {
    pub size: i32,
}

fn bar() {}

pub type Alias = HashMap<String, i32>;

static LIMIT: i32 = 1024;
`

func TestExtractFunction(t *testing.T) {
	res, err := Extract(context.Background(), sample, Want{Name: "foo", Kind: uniast.KindFunc})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.Found {
		t.Fatal("foo not found")
	}
	if !strings.Contains(res.Code, "pub fn foo()") {
		t.Errorf("code = %q, want the foo function", res.Code)
	}
	if strings.Contains(res.Code, "struct Foo") || strings.Contains(res.Code, "fn bar") {
		t.Errorf("extraction picked up sibling items: %q", res.Code)
	}
	if len(res.Imports) != 2 {
		t.Errorf("imports = %v, want both use declarations", res.Imports)
	}
}

func TestExtractStructNotFunction(t *testing.T) {
	res, err := Extract(context.Background(), sample, Want{Name: "Foo", Kind: uniast.KindType})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.Found {
		t.Fatal("Foo not found")
	}
	if !strings.Contains(res.Code, "struct Foo") {
		t.Errorf("code = %q, want the Foo struct", res.Code)
	}
}

func TestExtractKindMismatch(t *testing.T) {
	// foo exists as a function; asking for a type of the same name must flag
	// the mismatch instead of matching.
	res, err := Extract(context.Background(), sample, Want{Name: "foo", Kind: uniast.KindType})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Found {
		t.Error("function matched as type")
	}
	if !res.KindMismatch {
		t.Error("mismatch not reported")
	}
}

func TestExtractTypeAliasAndStatic(t *testing.T) {
	res, err := Extract(context.Background(), sample, Want{Name: "Alias", Kind: uniast.KindType})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.Found || !strings.Contains(res.Code, "type Alias") {
		t.Errorf("alias extraction = %+v", res)
	}

	res, err = Extract(context.Background(), sample, Want{Name: "LIMIT", Kind: uniast.KindVar})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.Found || !strings.Contains(res.Code, "static LIMIT") {
		t.Errorf("static extraction = %+v", res)
	}
}

func TestExtractMethodFromImpl(t *testing.T) {
	src := `impl Server {
    pub fn run(&self) {}
    pub fn stop(&self) {}
}
`
	res, err := Extract(context.Background(), src, Want{Name: "run", Kind: uniast.KindFunc, ImplType: "Server"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.Found {
		t.Fatal("method not found")
	}
	if !strings.Contains(res.Code, "impl Server") || !strings.Contains(res.Code, "fn run") {
		t.Errorf("code = %q, want impl with run only", res.Code)
	}
	if strings.Contains(res.Code, "fn stop") {
		t.Errorf("unmatched sibling method kept: %q", res.Code)
	}
}

func TestExtractConstructorSpecialCase(t *testing.T) {
	src := `impl Config {
    pub fn new() -> Self { Config {} }
}
`
	res, err := Extract(context.Background(), src, Want{Name: "new_config", Kind: uniast.KindFunc, NewType: "Config"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.Found || !strings.Contains(res.Code, "fn new") {
		t.Errorf("constructor not matched: %+v", res)
	}
}

func TestExtractNotFound(t *testing.T) {
	res, err := Extract(context.Background(), sample, Want{Name: "missing", Kind: uniast.KindFunc})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Found {
		t.Error("matched a nonexistent item")
	}
	if len(res.Imports) == 0 {
		t.Error("imports must be collected even on a miss")
	}
}
