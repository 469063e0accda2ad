// Package hcl provides the concrete HCL implementation of config.Loader. It
// is responsible for file discovery, parsing, expression evaluation with the
// unit constants, and translation into the format-agnostic config.Model.
package hcl
