// SPDX-License-Identifier: MPL-2.0

// Package artifact defines artifact identity and the artifact URI scheme.
//
// An Info is the immutable (group, name, version, types) tuple that names a
// distributable unit. From it the package derives filenames, classic cache
// paths and canonical URIs of the form:
//
//	artifact:{type}:{group}/{name}[#version]
//
// Parse accepts the artifact, link and local schemes and an optional internal
// reference (`!/entry`) addressing a file inside an archive artifact.
package artifact
