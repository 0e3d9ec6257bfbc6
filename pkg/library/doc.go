// SPDX-License-Identifier: MPL-2.0

// Package library models the resource graph: resources, the dependency
// edges between them (ResourceRef) and the lifecycle and visibility
// filters (Policy, Mode, Category) used when walking it.
//
// An Index owns every Resource. Resources are created once, when the index
// is built from declarations (usually a library.cue file), and never change
// afterwards, so an Index is safe for concurrent readers.
package library
