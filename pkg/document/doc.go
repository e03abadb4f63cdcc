// Package document loads plain-data state trees from YAML or JSON files and
// runs mutation scripts against them.
//
// Decoded documents use the shapes the reactive package observes: mappings
// become map[string]any, sequences []any, integers int and other numbers
// float64.
//
// A script is a list of steps applied through reactive path helpers, so
// each step notifies subscribers exactly as a direct mutation would:
//
//	steps:
//	  - op: set
//	    path: obj.age
//	    value: 19
//	  - op: push
//	    path: todos
//	    values: [{title: c}]
//	  - op: tick
//	  - op: delete
//	    path: name
//
// A tick step ends the current tick on the root, flushing its scheduler
// when it has one.
package document
