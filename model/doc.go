// Package model provides the intermediate representation (IR) shared by all
// readers and writers.
//
// Every reader parses its source format into a [Document]: an ordered
// sequence of typed content blocks plus metadata about where the content came
// from. Every writer serializes a Document into its target format. The block
// sequence is the document reading order and is preserved end-to-end; no
// component reorders blocks.
//
// # Blocks
//
// All content implements the [Block] interface. The concrete types are:
//
//   - [Paragraph] - a run of body text
//   - [Heading] - a heading with a level from 1 to 6
//   - [ListItem] - one item of an ordered or unordered list
//   - [Table] - rows of cell text
//   - [PageBreak] - a page boundary recorded by paginated readers
//
// Blocks are value types and are treated as immutable once appended to a
// Document.
//
// # Warnings
//
// Readers favor best-effort extraction: a structural feature they cannot
// represent (an embedded object, an unresolvable style) is skipped and
// recorded as a [Warning] on the Document rather than failing the read.
package model
