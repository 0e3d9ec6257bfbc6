// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	LibraryNotFoundId
	LibraryParseErrorId
	UnknownResourceId
	DependencyCycleId
	InvalidArtifactURIId
	ArtifactNotFoundId
	MissingCodebaseId
	CacheErrorId
	PartDecodingErrorId
	UnknownPluginId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation about the issue type
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	return renderWith(i, render, stylePath)
}

// renderWith renders the issue markdown, followed by its links, through fn.
func renderWith(i *Issue, fn func(in, stylePath string) (string, error), stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return fn(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The depot configuration could not be read or did not validate.

## Search locations (in order of precedence):
1. The file given with ` + "`--config`" + `
2. config.cue in the platform config directory (~/.config/depot on Linux)
3. config.cue in the current directory

## Things you can try:
- Create a default configuration and edit it:
~~~
$ depot config init
~~~
- Inspect the effective configuration:
~~~
$ depot config show
~~~
- Check that every host has a unique id and an absolute URL
- Check that layouts referenced by hosts are declared under ` + "`layouts`",
	}

	libraryNotFoundIssue = &Issue{
		id: LibraryNotFoundId,
		mdMsg: `
# No library found!

Graph commands need a library.cue describing the resources.

## Things you can try:
- Pass the file explicitly:
~~~
$ depot resolve --library ./library.cue acme/util
~~~
- Or set it once in config.cue:
~~~cue
library: "/path/to/library.cue"
~~~
- Or export DEPOT_LIBRARY`,
	}

	libraryParseErrorIssue = &Issue{
		id: LibraryParseErrorId,
		mdMsg: `
# Failed to parse library!

The library file does not match the expected schema.

## Common issues:
- A resource is missing ` + "`key`" + ` or ` + "`name`" + `
- Two resources share the same key
- A ref uses an unknown category (valid: api, spi, impl, any)
- A policy names an unknown mode (valid: build, test, runtime, any)

## Example resource:
~~~cue
resources: [{
	key:   "acme/util"
	group: "acme"
	name:  "util"
	refs: [{key: "acme/base", category: "api"}]
}]
~~~`,
	}

	unknownResourceIssue = &Issue{
		id: UnknownResourceId,
		mdMsg: `
# Unknown resource!

A resource key, or a key referenced by another resource, is not in the library.

## Things you can try:
- Check the spelling of the key
- Make sure the library declaring it is the one being loaded
- Remove or fix the dangling ref in the referencing resource`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

The resources form a cycle, so no build order exists.

## Things you can try:
- Review the refs of the resources listed in the error
- Move shared code into a separate resource both can depend on
- Use a narrower policy so the back reference only applies at runtime`,
	}

	invalidArtifactURIIssue = &Issue{
		id: InvalidArtifactURIId,
		mdMsg: `
# Invalid artifact URI!

Artifact URIs have the form:
~~~
artifact:{type}:{group}/{name}[#{version}]
link:{type}:{group}/{name}[#{version}]
local:{type}:{path}
~~~

## Things you can try:
- Make sure the type and the group are present
- Quote the URI in your shell when it contains ` + "`#`",
	}

	artifactNotFoundIssue = &Issue{
		id: ArtifactNotFoundId,
		mdMsg: `
# Artifact not found!

The artifact is not in the local repository or the cache, and no enabled host could serve it.

## Things you can try:
- List the hosts in selection order:
~~~
$ depot hosts
~~~
- Check that an enabled host serves the artifact group (untrusted hosts only serve the groups listed in their index)
- Check that the proxy does not exclude the host
- Install the artifact locally into the local repository`,
	}

	missingCodebaseIssue = &Issue{
		id: MissingCodebaseId,
		mdMsg: `
# Missing codebase!

A resource selected for the classpath does not produce an artifact of the requested type.

## Things you can try:
- Add the type to the resource ` + "`types`" + ` list
- Narrow the ref category so the resource is not pulled into the classpath`,
	}

	cacheErrorIssue = &Issue{
		id: CacheErrorId,
		mdMsg: `
# Cache error!

The artifact cache could not be read or written.

## Things you can try:
- Check free disk space and permissions of the cache directory
- Point DEPOT_CACHE at a writable directory
- Delete the offending cache entry and fetch again`,
	}

	partDecodingErrorIssue = &Issue{
		id: PartDecodingErrorId,
		mdMsg: `
# Failed to decode part!

The part descriptor is not a valid part document.

## Things you can try:
- Check the root element is ` + "`<part xmlns=\"urn:depot:part\">`" + `
- Make sure exactly one strategy element follows ` + "`info`" + ` and ` + "`classpath`" + `
- Check that a foreign strategy namespace maps to a published handler part`,
	}

	unknownPluginIssue = &Issue{
		id: UnknownPluginId,
		mdMsg: `
# Unknown plugin class!

The part names a plugin class that is not registered with the loader.

## Things you can try:
- Check the ` + "`class`" + ` attribute of the plugin strategy
- Register the class before loading the part`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

depot does not have permission to read or write a file it needs.

## Things you can try:
- Check the permissions of the cache, local repository and config directories
- Run depot as the user owning those directories`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		libraryNotFoundIssue.Id():    libraryNotFoundIssue,
		libraryParseErrorIssue.Id():  libraryParseErrorIssue,
		unknownResourceIssue.Id():    unknownResourceIssue,
		dependencyCycleIssue.Id():    dependencyCycleIssue,
		invalidArtifactURIIssue.Id(): invalidArtifactURIIssue,
		artifactNotFoundIssue.Id():   artifactNotFoundIssue,
		missingCodebaseIssue.Id():    missingCodebaseIssue,
		cacheErrorIssue.Id():         cacheErrorIssue,
		partDecodingErrorIssue.Id():  partDecodingErrorIssue,
		unknownPluginIssue.Id():      unknownPluginIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
	}
)

// Values returns every catalogued issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
