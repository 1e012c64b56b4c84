// Package checksum provides stable content digests for embedded code.
//
// Two digests are offered: a raw digest over the exact bytes, and a
// normalized digest that is invariant under line-ending style. The
// normalized digest is what code-unit identity and deduplication are
// built on, so its normalization rules are deliberately minimal and
// fixed: CRLF and bare CR become LF, nothing else changes.
package checksum
