/*
Package dechib implements the storage and schema core of a small relational
database on top of an embedded ordered key-value store (in this case, Bolt).

We implement:

1. Tables, each backed by its own namespace (a Bolt bucket) and described by
a persisted schema of column descriptors.

2. Constraint checking on insert: column existence, mandatory columns, and
runtime type checks of every value against its column's declared datatype.

3. Generated values: literal constant defaults, shared across all rows of an
insert call, and per-row auto-increment ids from process-local counters.

4. Atomic multi-row writes: all the rows of one insert call are committed as
a single batch, so a request is applied entirely or not at all.

# Technical Details

**Namespaces.**
Every table maps to one Bolt bucket. Inside the bucket, a reserved key
("__metadata__") holds the msgpack-serialized schema; the remaining keys hold
msgpack-serialized rows.

**Auto-increment counters.**
Counters are process-local atomics keyed by (table, column), seeded at 1 when
the table is created. They are not persisted and not rebuilt when a store is
reopened; inserting into a reopened table's auto-increment column reports
ErrNoCounter. A failed multi-row insert does not return counter values already
consumed, so retries observe gaps in the sequence.

**Encoding.**
Schemas and rows are encoded with msgpack using sorted map keys, so equal
records always produce equal bytes. The format carries no version tag and
makes no cross-version compatibility promise.
*/
package dechib
