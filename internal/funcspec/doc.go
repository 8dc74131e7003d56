// Package funcspec parses the function specifications accepted by -only.
//
// A specification has the format:
//
//	pkg/path.FuncName           # Package-level function
//	pkg/path.TypeName.Method    # Method on type
//
// Use [ParseList] on the raw flag value and [List.Matches] against the
// *types.Func of a top-level definition:
//
//	only := funcspec.ParseList("example.com/app.Run,example.com/app.Server.Serve")
//	if only.Matches(fn) {
//	    // analyze fn and its closures
//	}
//
// Package paths must match exactly; a method matches whether its receiver is
// a pointer or a value.
package funcspec
