// Package diagram defines persistence diagrams and the partitioning helpers
// used by every vectorizer in topovec.
//
// A persistence diagram is an ordered multiset of (birth, death, dimension)
// triples. Vectorizers never operate on a whole diagram at once: they first
// restrict it to a single homology dimension (a subdiagram) and then drop the
// dimension column, working on plain (birth, death) pairs.
//
// # Usage
//
//	d := diagram.Diagram{{Birth: 0, Death: 1, Dim: 0}, {Birth: 0.5, Death: 2, Dim: 1}}
//	h1 := diagram.Subdiagram(d, 1)   // triples with Dim == 1
//	pairs := diagram.Pairs(d, 1)     // same, as (birth, death) pairs
package diagram
