// Package ignore provides //goowl:ignore directive parsing.
//
// # Overview
//
// The ignore directive keeps a definition out of the analysis output. It
// applies to the function, method or closure that starts on the same line or
// on the line after the directive:
//
//	//goowl:ignore
//	func generatedHelper() { ... }  // not analyzed, nor are its closures
//
//	go func() { ... }()  //goowl:ignore - hot loop, too noisy
//
// A reason may follow after " - "; it is kept for logging only.
package ignore
