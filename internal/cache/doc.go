// Package cache defines the disk-backed store responsible for translating
// 3-digit image codes into StoragePath/<code>.jpg files. The store exposes
// whole-blob read/write primitives with safe semantics (temp file + rename)
// so concurrent readers always observe one complete blob version. The HTTP
// layer and the read-through resolver depend on this package instead of
// duplicating filesystem logic.
package cache
