// SPDX-License-Identifier: MPL-2.0

// Package transit resolves artifact URIs to files in a local cache.
//
// A Cache is configured by a CacheDirective: the cache root, an optional
// local repository consulted first, the default layout, the remote hosts
// and the content handlers. Artifacts missing from the cache are fetched
// from the enabled hosts in priority order (lower number first) and written
// atomically into the cache.
//
// Directives are immutable values. Cache.Update swaps in a whole new
// directive, so concurrent readers always see one consistent snapshot.
package transit
