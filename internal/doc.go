// Package internal holds goowl's implementation.
//
// # Architecture Overview
//
//	                            +------------------+
//	                            |   cmd/goowl      |  Entry point
//	                            +--------+---------+
//	                                     |
//	                            +--------v---------+
//	                            |   cli, frontend  |  Mode decision, host setup
//	                            +--------+---------+
//	                                     |
//	        +----------------------------+----------------------------+
//	        |                            |                            |
//	+-------v--------+          +--------v--------+          +--------v--------+
//	|    session     |          |  goowl.New      |          |     config      |
//	| run-wide state |          |  (analyzer)     |          |  viper loader   |
//	+-------+--------+          +--------+--------+          +-----------------+
//	        |                            |
//	        |                   +--------v--------+
//	        |                   |   intercept     |  per definition
//	        |                   | ssa -> facts    |
//	        |                   +--------+--------+
//	        |                            | Spawn
//	        |                   +--------v--------+
//	        +------------------>|     sched       |  in-flight set, drain owner
//	                            +--------+--------+
//	                                     |
//	                 +-------------------+-------------------+
//	                 |                                       |
//	        +--------v--------+                     +--------v--------+
//	        |     engine      |  on workers         |      emit       |  stdout
//	        +-----------------+                     +-----------------+
//
// # Packages
//
//   - [github.com/mpyw/goowl/internal/frontend]: passthrough or analysis mode
//   - [github.com/mpyw/goowl/internal/intercept]: fact harvesting per definition
//   - [github.com/mpyw/goowl/internal/ssa]: SSA construction and fact extraction
//   - [github.com/mpyw/goowl/internal/facts]: owned fact values
//   - [github.com/mpyw/goowl/internal/engine]: ownership inference
//   - [github.com/mpyw/goowl/internal/sched]: worker runtime and drain protocol
//   - [github.com/mpyw/goowl/internal/emit]: record encoding
//   - [github.com/mpyw/goowl/internal/fatal]: error classes and exit codes
package internal
