package dechib

import (
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpSchemas = DumpFlags(1 << iota)
	DumpRows

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var dumpSep = strings.Repeat("=", 60)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders every table's schema and stored rows for debugging.
func (e *Engine) Dump(f DumpFlags) (string, error) {
	tables, err := e.Tables()
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	for i, table := range tables {
		if err := e.dumpTable(&buf, f, table, i+1, len(tables)); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (e *Engine) dumpTable(buf *strings.Builder, f DumpFlags, table string, i, n int) error {
	metadata, err := e.TableMetadata(table)
	if err != nil {
		return err
	}
	fmt.Fprintf(buf, "%s\nTABLE %d/%d %s (%d columns)\n", dumpSep, i, n, table, len(metadata))

	if f.Contains(DumpSchemas) {
		buf.WriteString(DescribeColumns(metadata))
	}

	if f.Contains(DumpRows) {
		err := e.store.Scan(table, func(key, value []byte) error {
			if string(key) == tableMetadataKey {
				return nil
			}
			var rec Record
			if err := decodeMsgpack(value, &rec); err != nil {
				return err
			}
			fmt.Fprintf(buf, "  row %q = %s\n", key, rec)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// DescribeColumns renders a schema one column per line, the way the CLI's
// describe command shows it.
func DescribeColumns(cds ColumnDescriptors) string {
	var buf strings.Builder
	for _, name := range cds.Names() {
		fmt.Fprintf(&buf, "  %s %s\n", name, cds[name].describe())
	}
	return buf.String()
}
