package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/devanbenz/dechib"
)

var (
	dbPath  string
	verbose bool
	columns []string
	rowFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dechib",
	Short: "Embedded relational storage engine",
	Long:  `A thin command surface over the dechib storage core: create tables, insert rows, inspect schemas.`,
}

var createTableCmd = &cobra.Command{
	Use:   "create-table <schema.json>",
	Short: "Create a table from a JSON schema file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateTable,
}

var insertCmd = &cobra.Command{
	Use:   "insert <table> [rows-json]",
	Short: "Insert rows into a table",
	Long: `Insert rows into a table. Rows are a JSON array of arrays aligned to
--columns, given inline or via --file:

  dechib insert users --columns name,city '[["Daniel","Oslo"]]'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInsert,
}

var describeCmd = &cobra.Command{
	Use:   "describe <table>",
	Short: "Show a table's schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the existing tables",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump every table's schema and rows",
	Args:  cobra.NoArgs,
	RunE:  runDump,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", dechib.DefaultPath, "Path of the database file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity")

	insertCmd.Flags().StringSliceVar(&columns, "columns", nil, "Comma-separated list of the supplied columns")
	insertCmd.Flags().StringVar(&rowFile, "file", "", "Read the rows JSON from a file instead of the command line")

	rootCmd.AddCommand(createTableCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(dumpCmd)
}

func openEngine() (*dechib.Engine, error) {
	return dechib.Open(dbPath, dechib.Options{
		Logf:    log.Printf,
		Verbose: verbose,
	})
}

// tableSpec is the JSON shape of a schema file. It exists only on this side
// of the command surface; the engine takes CreateTableOptions.
type tableSpec struct {
	Name    string                `json:"name"`
	Columns map[string]columnSpec `json:"columns"`
}

type columnSpec struct {
	Type          string          `json:"type"`
	NotNull       bool            `json:"not_null"`
	Unique        bool            `json:"unique"`
	PrimaryKey    bool            `json:"primary_key"`
	AutoIncrement bool            `json:"auto_increment"`
	Default       json.RawMessage `json:"default"`
	References    *refSpec        `json:"references"`
}

type refSpec struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// rawDefault is the shape of a non-literal default in a schema file:
// {"default": {"expr": "now()"}}. Literal defaults are plain JSON scalars.
type rawDefault struct {
	Expr string `json:"expr"`
}

func (spec *tableSpec) toOptions() (*dechib.CreateTableOptions, error) {
	opt := &dechib.CreateTableOptions{
		Name:    spec.Name,
		Columns: make(dechib.ColumnDescriptors, len(spec.Columns)),
	}
	for name, col := range spec.Columns {
		dt, err := dechib.ParseDataType(col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		desc := &dechib.ColumnDescriptor{
			Datatype:      dt,
			NotNull:       col.NotNull,
			Unique:        col.Unique,
			PrimaryKey:    col.PrimaryKey,
			AutoIncrement: col.AutoIncrement,
		}
		if col.Default != nil {
			def, err := parseDefault(col.Default)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", name, err)
			}
			desc.Default = def
		}
		if col.References != nil {
			desc.ForeignKey = &dechib.ForeignKey{
				Table:  col.References.Table,
				Column: col.References.Column,
			}
		}
		opt.Columns[name] = desc
	}
	return opt, nil
}

func parseDefault(raw json.RawMessage) (*dechib.DefaultExpr, error) {
	if len(raw) > 0 && raw[0] == '{' {
		var expr rawDefault
		if err := json.Unmarshal(raw, &expr); err != nil {
			return nil, fmt.Errorf("bad default: %w", err)
		}
		return &dechib.DefaultExpr{Raw: expr.Expr}, nil
	}
	var v dechib.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("bad default: %w", err)
	}
	return &dechib.DefaultExpr{Literal: &v}, nil
}

func runCreateTable(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var spec tableSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	opt, err := spec.toOptions()
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.CreateTable(opt); err != nil {
		return err
	}
	fmt.Printf("Created table %s (%d columns)\n", opt.Name, len(opt.Columns))
	return nil
}

func runInsert(cmd *cobra.Command, args []string) error {
	var data []byte
	switch {
	case rowFile != "":
		var err error
		data, err = os.ReadFile(rowFile)
		if err != nil {
			return err
		}
	case len(args) == 2:
		data = []byte(args[1])
	default:
		return fmt.Errorf("rows are required, inline or via --file")
	}

	var rows [][]dechib.Value
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("parsing rows: %w", err)
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	err = eng.InsertRows(&dechib.InsertOptions{
		Table:   args[0],
		Columns: columns,
		Values:  rows,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Inserted %d rows into %s\n", len(rows), args[0])
	return nil
}

func runDescribe(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	metadata, err := eng.TableMetadata(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d columns)\n%s", args[0], len(metadata), dechib.DescribeColumns(metadata))
	return nil
}

func runTables(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	tables, err := eng.Tables()
	if err != nil {
		return err
	}
	for _, table := range tables {
		fmt.Println(table)
	}
	return nil
}

func runDump(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	out, err := eng.Dump(dechib.DumpAll)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
