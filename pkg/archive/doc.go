// Package archive streams zip/jar archives entry by entry.
//
// Every operation reads one entry at a time, so memory use is bounded by the
// largest entry rather than the whole archive. Unchanged entries are copied
// raw without recompression. Entries written fresh use Deflate and the
// deterministic timestamp when the source carries none.
package archive
