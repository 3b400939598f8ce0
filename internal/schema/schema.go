// Package schema holds the gohcl decoding targets for HCL graph definition
// files.
package schema

import "github.com/hashicorp/hcl/v2"

// Node represents a `node` block. It carries either a `kind` with optional
// `params`, or a `graph` reference.
type Node struct {
	ID     string         `hcl:"id,label"`
	Kind   string         `hcl:"kind,optional"`
	Graph  string         `hcl:"graph,optional"`
	Params hcl.Expression `hcl:"params,optional"`
}

// Edge represents an `edge` block.
type Edge struct {
	From       string `hcl:"from"`
	FromSocket int    `hcl:"from_socket,optional"`
	To         string `hcl:"to"`
	ToSocket   int    `hcl:"to_socket,optional"`
	Feedback   bool   `hcl:"feedback,optional"`
}

// Port represents an `input` or `output` block exposing a node socket.
type Port struct {
	Name   string `hcl:"name,label"`
	Node   string `hcl:"node"`
	Socket int    `hcl:"socket,optional"`
}

// Graph represents a `graph` block.
type Graph struct {
	Name    string  `hcl:"name,label"`
	Nodes   []*Node `hcl:"node,block"`
	Edges   []*Edge `hcl:"edge,block"`
	Inputs  []*Port `hcl:"input,block"`
	Outputs []*Port `hcl:"output,block"`
}

// File is the top-level structure of a definition file.
type File struct {
	Root   string   `hcl:"root,optional"`
	Graphs []*Graph `hcl:"graph,block"`
}
