// Package hcl provides the HCL implementation of config.Loader. It parses
// `.hcl` definition files, decodes them into the schema package structs and
// translates those into the format-agnostic config model.
package hcl
