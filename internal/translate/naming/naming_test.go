package naming

import "testing"

func TestCamelToSnake(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"camel", "camel"},
		{"Camel", "camel"},
		{"CAMEL", "camel"},
		{"JSONString", "json_string"},
		{"CamelCase", "camel_case"},
		{"Camel2Case", "camel2_case"},
		{"Camel2Case3A", "camel2_case3_a"},
		{"CamelJSONString", "camel_json_string"},
	}
	for _, tt := range tests {
		if got := CamelToSnake(tt.in); got != tt.want {
			t.Errorf("CamelToSnake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSnakeToCamel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"snake", "Snake"},
		{"snake_case", "SnakeCase"},
		{"already", "Already"},
		{"a_b_c", "ABC"},
	}
	for _, tt := range tests {
		if got := SnakeToCamel(tt.in); got != tt.want {
			t.Errorf("SnakeToCamel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeKeyword(t *testing.T) {
	if got := EscapeKeyword("type"); got != "r#type" {
		t.Errorf("EscapeKeyword(type) = %q", got)
	}
	if got := EscapeKeyword("session"); got != "session" {
		t.Errorf("EscapeKeyword(session) = %q", got)
	}
}

func TestNormalizeImport(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"pkg/sub", "pkg::sub"},
		{"my-pkg/sub.v2", "my_pkg::sub_v2"},
		{"a/type", "a::r#type"},
	}
	for _, tt := range tests {
		if got := NormalizeImport(tt.in); got != tt.want {
			t.Errorf("NormalizeImport(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvertCrate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"github.com/cloudwego/hertz", "cloudwego_hertz"},
		{"single", "single"},
	}
	for _, tt := range tests {
		if got := ConvertCrate(tt.in); got != tt.want {
			t.Errorf("ConvertCrate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewImport(t *testing.T) {
	if got := NewImport("crate", "pkg/sub"); got != "crate::pkg::sub" {
		t.Errorf("NewImport = %q", got)
	}
	if got := NewImport("crate", ""); got != "crate::*" {
		t.Errorf("NewImport empty path = %q", got)
	}
	if got := NewImport("crate/external_mocks", "lib_pq"); got != "crate::external_mocks::lib_pq" {
		t.Errorf("NewImport mock = %q", got)
	}
}

func TestReplaceImportCrate(t *testing.T) {
	tests := []struct {
		name, imp, root, repo, want string
	}{
		{"inside root", "use crate::cmd::server::Config;", "crate::cmd::server", "app", "use crate::Config;"},
		{"outside root", "use crate::util::log;", "crate::cmd::server", "app", "use app::util::log;"},
		{"no root", "use std::fmt;", "", "app", "use std::fmt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplaceImportCrate(tt.imp, tt.root, tt.repo); got != tt.want {
				t.Errorf("ReplaceImportCrate = %q, want %q", got, tt.want)
			}
		})
	}
}
