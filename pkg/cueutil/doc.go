// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against embedded schemas.
//
// Library definitions and the depot configuration are both CUE documents.
// Each is compiled, unified with a definition from an embedded schema,
// validated and decoded into a Go struct:
//
//	//go:embed library_schema.cue
//	var librarySchema []byte
//
//	doc, err := cueutil.Decode[libraryDoc](librarySchema, "#Library", data,
//	    cueutil.WithFilename("library.cue"))
//
// Errors carry the file name and a JSON-style path to the offending value
// (for example `library.cue: resources[2].refs[0].category: ...`).
package cueutil
