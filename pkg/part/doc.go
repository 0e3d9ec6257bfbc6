// SPDX-License-Identifier: MPL-2.0

// Package part loads part descriptors: XML documents in the urn:depot:part
// namespace that declare an info block, a four tier classpath and exactly
// one strategy element.
//
// A Loader reads a descriptor through a Repository, creates a loading Unit
// for its classpath anchored under the caller's unit, and hands the strategy
// element to the StrategyHandler selected for its namespace. Loaded parts are
// cached per anchor and canonical URL for the life of the process; at most
// one build runs per key at a time.
package part
