// Package entitycollection provides immutable entity collections that work the same way
// whether they are backed by a query against a SQL store or by entities already in memory.
//
// A lazy collection holds an unevaluated goqu query. Filters and comparators built from a
// FilterSchema or a property list translate themselves into WHERE and ORDER BY clauses,
// so filtering, sorting, slicing and counting do not load any entity until the collection
// is iterated. A materialized collection holds a slice and evaluates the same filters and
// comparators in memory, with identical results.
//
// Key types:
//   - Kind: Describes the table, columns and hydration of an entity type
//   - FilterSchema, Filter: Named criteria with validation, in-memory check and native predicate
//   - Property, Comparator: Typed, null-safe multi-key ordering (string, date, number)
//   - Collection: The dual-mode collection itself
//   - Operation, Schema: Named operations like "findByStatus" or "sortByAge"
//
// Common usage pattern:
//
//	readers, err := entitycollection.Lazy(session, readerKind)
//	if err != nil {
//		// handle error
//	}
//
//	active, err := readerSchema.Filter(entitycollection.C("status", "active"))
//	oldestFirst, err := readerSchema.Comparator(entitycollection.Desc("age"))
//
//	page, err := readers.Filter(ctx, active)
//	page, err = page.SortBy(ctx, oldestFirst)
//	page = page.Slice(0, 20)
//
//	for reader, err := range page.All(ctx) {
//		// handle reader or error
//	}
//
//	outcome, err := readers.Call(ctx, readerSchema, "findByEmail", "ada@example.com")
package entitycollection
