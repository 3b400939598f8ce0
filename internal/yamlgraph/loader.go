// Package yamlgraph provides the YAML implementation of config.Loader.
//
// A definition file looks like:
//
//	version: 1
//	root: main
//	graphs:
//	  - name: main
//	    nodes:
//	      - {id: a, kind: const, params: 5}
//	      - {id: d, graph: double}
//	    edges:
//	      - {from: a, to: d}
//	    outputs:
//	      - {name: result, node: d}
package yamlgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Version is the only supported file format version.
const Version = 1

// Extensions are the file extensions the loader picks up in directories.
var Extensions = []string{".yaml", ".yml"}

type file struct {
	Version int      `yaml:"version"`
	Root    string   `yaml:"root"`
	Graphs  []*graph `yaml:"graphs"`
}

type graph struct {
	Name    string  `yaml:"name"`
	Nodes   []*node `yaml:"nodes"`
	Edges   []*edge `yaml:"edges"`
	Inputs  []*port `yaml:"inputs"`
	Outputs []*port `yaml:"outputs"`
}

type node struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	Graph  string `yaml:"graph"`
	Params any    `yaml:"params"`
}

type edge struct {
	From       string `yaml:"from"`
	FromSocket int    `yaml:"from_socket"`
	To         string `yaml:"to"`
	ToSocket   int    `yaml:"to_socket"`
	Feedback   bool   `yaml:"feedback"`
}

type port struct {
	Name   string `yaml:"name"`
	Node   string `yaml:"node"`
	Socket int    `yaml:"socket"`
}

// ErrEmptyEntry is returned for a null item in a list of graphs, nodes,
// edges or ports.
var ErrEmptyEntry = errors.New("empty entry")

// Loader reads YAML definition files.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new YAML definition loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every .yaml and .yml file found under paths and merges the
// graphs they define.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.CollectFiles(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	model := &config.Model{}
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		part, err := l.Parse(ctx, path, b)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(part); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	logger.Debug("YAML loading complete.", "files", len(files), "graphs", len(model.Graphs), "root", model.Root)
	return model, nil
}

// Parse decodes a single definition from memory. Unknown keys are errors.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("%s: unsupported definition version: %d", filename, f.Version)
	}

	model := &config.Model{Root: f.Root}
	for i, g := range f.Graphs {
		if g == nil {
			return nil, fmt.Errorf("%s: graph %d: %w", filename, i, ErrEmptyEntry)
		}
		out, err := translateGraph(filename, g)
		if err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Translated YAML graph.", "graph", out.Name, "file", filename, "nodes", len(out.Nodes))
		model.Graphs = append(model.Graphs, out)
	}
	return model, nil
}

func translateGraph(filename string, g *graph) (*config.Graph, error) {
	out := &config.Graph{Name: g.Name, Source: filename}
	for i, n := range g.Nodes {
		if n == nil {
			return nil, fmt.Errorf("%s: graph %q: node %d: %w", filename, g.Name, i, ErrEmptyEntry)
		}
		params, err := toCty(n.Params)
		if err != nil {
			return nil, fmt.Errorf("%s: graph %q, node %q: invalid params: %w", filename, g.Name, n.ID, err)
		}
		out.Nodes = append(out.Nodes, &config.Node{ID: n.ID, Kind: n.Kind, Graph: n.Graph, Params: params})
	}
	for i, e := range g.Edges {
		if e == nil {
			return nil, fmt.Errorf("%s: graph %q: edge %d: %w", filename, g.Name, i, ErrEmptyEntry)
		}
		out.Edges = append(out.Edges, &config.Edge{
			From:       e.From,
			FromSocket: e.FromSocket,
			To:         e.To,
			ToSocket:   e.ToSocket,
			Feedback:   e.Feedback,
		})
	}
	var err error
	if out.Inputs, err = translatePorts(filename, g.Name, "input", g.Inputs); err != nil {
		return nil, err
	}
	if out.Outputs, err = translatePorts(filename, g.Name, "output", g.Outputs); err != nil {
		return nil, err
	}
	return out, nil
}

func translatePorts(filename, graphName, what string, ports []*port) ([]*config.Port, error) {
	var out []*config.Port
	for i, p := range ports {
		if p == nil {
			return nil, fmt.Errorf("%s: graph %q: %s %d: %w", filename, graphName, what, i, ErrEmptyEntry)
		}
		out = append(out, &config.Port{Name: p.Name, Node: p.Node, Socket: p.Socket})
	}
	return out, nil
}

// toCty converts a decoded YAML value to cty through its JSON form, so
// params get the same implied types as in JSON: objects for mappings and
// tuples for sequences.
func toCty(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return cty.NilVal, err
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(raw, ty)
}
