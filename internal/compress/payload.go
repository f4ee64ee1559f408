package compress

// Request payloads sent to the oracle. Field names match what the prompt
// templates document, so they are part of the wire contract.

// CalledType describes a callee by the name it is invoked with.
type CalledType struct {
	CallName    string `json:"CallName"`
	Description string `json:"Description"`
}

// KeyValue is a named summary (or raw source when no summary exists yet).
type KeyValue struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// FuncPayload is the compress-function request body.
type FuncPayload struct {
	Content     string       `json:"Content"`
	RelatedFunc []CalledType `json:"Related_func,omitempty"`
	RelatedType []KeyValue   `json:"Related_type,omitempty"`
	RelatedVar  []KeyValue   `json:"Related_var,omitempty"`
	Receiver    string       `json:"Receiver,omitempty"`
	Params      []KeyValue   `json:"Params,omitempty"`
	Results     []KeyValue   `json:"Results,omitempty"`
}

// TypePayload is the compress-type request body.
type TypePayload struct {
	Content        string     `json:"Content"`
	RelatedMethods []KeyValue `json:"Related_methods,omitempty"`
	RelatedTypes   []KeyValue `json:"Related_types,omitempty"`
}

// VarPayload is the compress-variable request body.
type VarPayload struct {
	Content    string   `json:"Content"`
	Type       string   `json:"Type,omitempty"`
	References []string `json:"References,omitempty"`
}

// PkgPayload is the compress-package request body.
type PkgPayload struct {
	PkgPath   string     `json:"PkgPath"`
	Functions []KeyValue `json:"Functions,omitempty"`
	Types     []KeyValue `json:"Types,omitempty"`
	Variables []KeyValue `json:"Variables,omitempty"`
}

// ModulePayload is the compress-module request body.
type ModulePayload struct {
	Name     string     `json:"Name"`
	Packages []KeyValue `json:"Packages,omitempty"`
}
