// SPDX-License-Identifier: MPL-2.0

// Package classpath partitions the runtime closure of a resource into the
// four isolation tiers consumed by the part loader: system, public,
// protected and private.
package classpath
