// Package index defines the ranking abstraction used to answer top-K
// similarity queries over scanned document records. The brute-force
// implementation scores every record; approximate structures for larger
// corpora would plug in behind the same interface.
package index
