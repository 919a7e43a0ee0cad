// Package normalize runs the DOI normalization pass over a graph store.
//
// A pass opens one transaction, visits every node, rewrites the "doi"
// property of nodes whose value is not already canonical, and commits once.
// Any error rolls the whole transaction back: either every eligible node is
// rewritten or none is.
//
// # States
//
//	NotStarted -> TransactionOpen -> Scanning -> Committed
//	                                          -> RolledBack
//
// Committed and RolledBack are terminal. A Pass runs at most once.
//
// # Array elements
//
// In a string array, an element with no extractable DOI keeps its original
// value; the other elements are still normalized.
package normalize
