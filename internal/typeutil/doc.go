// Package typeutil provides small go/types helpers for goowl.
//
// Type strings emitted in analyzed items are rendered relative to the package
// under analysis, so a local of type *Config in package app reads "*Config"
// rather than "*example.com/app.Config":
//
//	typeutil.TypeString(v.Type(), pass.Pkg) // "*Config"
//
// [IsLocalVar] separates function-scoped variables from fields and package
// variables when walking identifiers of a definition.
package typeutil
