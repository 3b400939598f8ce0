// Package config defines the format-agnostic definition model: named graphs
// made of nodes, edges and exposed ports, as read from definition files.
//
// A Model is what the HCL and YAML loaders produce and what the engine
// materialises into graph.Graph values. Nothing here knows about socket
// types or node kinds; those are resolved when the model is built.
package config
