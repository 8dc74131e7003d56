// Package directive groups the comment directives goowl understands.
//
//	directive/
//	└── ignore/    # //goowl:ignore directive
//
// Directives are line comments without a space after the slashes, the form
// the Go toolchain reserves for tool directives:
//
//	//goowl:<name> [- reason]
package directive
