// Package cli implements the interactive shell behind cmd/bptdb.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/alexhholmes/bptdb"
	"github.com/alexhholmes/bptdb/render"
)

type Cli struct {
	scanner *bufio.Scanner
	out     io.Writer
	db      *bptdb.DB
	color   bool
	current string // selected database

	ok   *color.Color
	fail *color.Color
	dim  *color.Color
}

func NewCli(in io.Reader, out io.Writer, db *bptdb.DB, useColor bool) *Cli {
	c := &Cli{
		scanner: bufio.NewScanner(in),
		out:     out,
		db:      db,
		color:   useColor,
		ok:      color.New(color.FgGreen),
		fail:    color.New(color.FgRed, color.Bold),
		dim:     color.New(color.Faint),
	}
	for _, col := range []*color.Color{c.ok, c.fail, c.dim} {
		if useColor {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	if dbs := db.ListDatabases(); len(dbs) > 0 {
		c.current = dbs[0]
	}
	return c
}

// Start reads commands until EXIT or the end of input.
func (c *Cli) Start() {
	c.printHelp()
	c.printPrompt()
	for c.scanner.Scan() {
		if !c.Execute(c.scanner.Text()) {
			return
		}
		c.printPrompt()
	}
}

func (c *Cli) printHelp() {
	fmt.Fprintln(c.out, `
bptdb shell

Databases:
  CREATEDB <db>                         Create a database
  DROPDB <db>                           Drop a database and its tables
  DBS                                   List databases
  USE <db>                              Select the database for table commands

Tables (in the selected database):
  CREATE <table> <key> <col:type,...> [order]
                                        Create a table; types are int, float, string, bool
  DROP <table>                          Drop a table
  TABLES                                List tables
  INFO <table>                          Show schema and index statistics

Records:
  INSERT <table> <col=val> ...          Insert a record
  GET <table> <key>                     Fetch a record
  UPDATE <table> <key> <col=val> ...    Change columns of a record
  DELETE <table> <key>                  Delete a record
  RANGE <table> <start> <end>           Records with start <= key <= end
  ALL <table>                           Every record in key order
  SHOW <table> [text|levels|dot]        Draw the table's B+ tree

Persistence:
  SAVE [path]                           Write the catalog snapshot
  LOAD [path]                           Replace the catalog from a snapshot

  HELP                                  Show this help
  EXIT                                  Terminate this session`)
}

func (c *Cli) printPrompt() {
	if c.current != "" {
		fmt.Fprint(c.out, c.dim.Sprint(c.current), "> ")
		return
	}
	fmt.Fprint(c.out, "> ")
}

// Execute runs one command line and reports whether the session should
// continue.
func (c *Cli) Execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return true
	}

	command, args := strings.ToLower(fields[0]), fields[1:]
	var err error
	switch command {
	default:
		err = errors.Newf("unknown command %q, try HELP", command)
	case "help":
		c.printHelp()
	case "exit", "quit":
		return false
	case "createdb":
		err = c.processCreateDB(args)
	case "dropdb":
		err = c.processDropDB(args)
	case "dbs":
		c.printList(c.db.ListDatabases())
	case "use":
		err = c.processUse(args)
	case "create":
		err = c.processCreate(args)
	case "drop":
		err = c.processDrop(args)
	case "tables":
		err = c.processTables(args)
	case "info":
		err = c.processInfo(args)
	case "insert":
		err = c.processInsert(args)
	case "get":
		err = c.processGet(args)
	case "update":
		err = c.processUpdate(args)
	case "delete":
		err = c.processDelete(args)
	case "range":
		err = c.processRange(args)
	case "all":
		err = c.processAll(args)
	case "show":
		err = c.processShow(args)
	case "save":
		err = c.processSave(args)
	case "load":
		err = c.processLoad(args)
	}
	if err != nil {
		fmt.Fprintf(c.out, "%s%v\n", c.fail.Sprint("error: "), err)
	}
	return true
}

func (c *Cli) done(format string, args ...any) {
	fmt.Fprintln(c.out, c.ok.Sprintf(format, args...))
}

func usage(u string) error {
	return errors.Newf("usage: %s", u)
}

func (c *Cli) processCreateDB(args []string) error {
	if len(args) != 1 {
		return usage("CREATEDB <db>")
	}
	if err := c.db.CreateDatabase(args[0]); err != nil {
		return err
	}
	if c.current == "" {
		c.current = args[0]
	}
	c.done("database %s created", args[0])
	return nil
}

func (c *Cli) processDropDB(args []string) error {
	if len(args) != 1 {
		return usage("DROPDB <db>")
	}
	if err := c.db.DropDatabase(args[0]); err != nil {
		return err
	}
	if c.current == args[0] {
		c.current = ""
	}
	c.done("database %s dropped", args[0])
	return nil
}

func (c *Cli) processUse(args []string) error {
	if len(args) != 1 {
		return usage("USE <db>")
	}
	if _, err := c.db.ListTables(args[0]); err != nil {
		return err
	}
	c.current = args[0]
	return nil
}

func (c *Cli) database() (string, error) {
	if c.current == "" {
		return "", errors.New("no database selected, run USE <db> first")
	}
	return c.current, nil
}

func (c *Cli) table(name string) (*bptdb.Table, error) {
	db, err := c.database()
	if err != nil {
		return nil, err
	}
	return c.db.Table(db, name)
}

func (c *Cli) processCreate(args []string) error {
	if len(args) != 3 && len(args) != 4 {
		return usage("CREATE <table> <key> <col:type,...> [order]")
	}
	db, err := c.database()
	if err != nil {
		return err
	}
	schema, err := bptdb.ParseSchema(args[2], args[1])
	if err != nil {
		return err
	}
	var opts []bptdb.TableOption
	if len(args) == 4 {
		order, err := strconv.Atoi(args[3])
		if err != nil {
			return errors.Wrapf(err, "order %q", args[3])
		}
		opts = append(opts, bptdb.WithTableOrder(order))
	}
	t, err := c.db.CreateTable(db, args[0], schema, opts...)
	if err != nil {
		return err
	}
	c.done("table %s created with order %d", t.Name(), t.Info().Order)
	return nil
}

func (c *Cli) processDrop(args []string) error {
	if len(args) != 1 {
		return usage("DROP <table>")
	}
	db, err := c.database()
	if err != nil {
		return err
	}
	if err := c.db.DropTable(db, args[0]); err != nil {
		return err
	}
	c.done("table %s dropped", args[0])
	return nil
}

func (c *Cli) processTables(args []string) error {
	if len(args) != 0 {
		return usage("TABLES")
	}
	db, err := c.database()
	if err != nil {
		return err
	}
	names, err := c.db.ListTables(db)
	if err != nil {
		return err
	}
	c.printList(names)
	return nil
}

func (c *Cli) processInfo(args []string) error {
	if len(args) != 1 {
		return usage("INFO <table>")
	}
	t, err := c.table(args[0])
	if err != nil {
		return err
	}
	info := t.Info()
	fmt.Fprintf(c.out, "table:  %s (%s)\nschema: %s\norder:  %d\nheight: %d\nnodes:  %d\nrows:   %d\n",
		info.Name, info.ID, info.Schema, info.Order, info.Height, info.Nodes, info.Rows)
	return nil
}

func (c *Cli) processInsert(args []string) error {
	if len(args) < 2 {
		return usage("INSERT <table> <col=val> ...")
	}
	t, err := c.table(args[0])
	if err != nil {
		return err
	}
	rec, err := parseAssignments(t.Schema(), args[1:])
	if err != nil {
		return err
	}
	if err := t.Insert(rec); err != nil {
		return err
	}
	c.done("inserted")
	return nil
}

func (c *Cli) processGet(args []string) error {
	if len(args) != 2 {
		return usage("GET <table> <key>")
	}
	t, err := c.table(args[0])
	if err != nil {
		return err
	}
	key, err := parseKey(t.Schema(), args[1])
	if err != nil {
		return err
	}
	rec, err := t.Get(key)
	if err != nil {
		return err
	}
	c.printRecords(t.Schema(), []bptdb.Record{rec})
	return nil
}

func (c *Cli) processUpdate(args []string) error {
	if len(args) < 3 {
		return usage("UPDATE <table> <key> <col=val> ...")
	}
	t, err := c.table(args[0])
	if err != nil {
		return err
	}
	schema := t.Schema()
	key, err := parseKey(schema, args[1])
	if err != nil {
		return err
	}
	rec, err := t.Get(key)
	if err != nil {
		return err
	}
	changes, err := parseAssignments(schema, args[2:])
	if err != nil {
		return err
	}
	for col, v := range changes {
		rec[col] = v
	}
	if err := t.Update(key, rec); err != nil {
		return err
	}
	c.done("updated")
	return nil
}

func (c *Cli) processDelete(args []string) error {
	if len(args) != 2 {
		return usage("DELETE <table> <key>")
	}
	t, err := c.table(args[0])
	if err != nil {
		return err
	}
	key, err := parseKey(t.Schema(), args[1])
	if err != nil {
		return err
	}
	if err := t.Delete(key); err != nil {
		return err
	}
	c.done("deleted")
	return nil
}

func (c *Cli) processRange(args []string) error {
	if len(args) != 3 {
		return usage("RANGE <table> <start> <end>")
	}
	t, err := c.table(args[0])
	if err != nil {
		return err
	}
	schema := t.Schema()
	start, err := parseKey(schema, args[1])
	if err != nil {
		return err
	}
	end, err := parseKey(schema, args[2])
	if err != nil {
		return err
	}
	recs, err := t.RangeQuery(start, end)
	if err != nil {
		return err
	}
	c.printRecords(schema, recs)
	return nil
}

func (c *Cli) processAll(args []string) error {
	if len(args) != 1 {
		return usage("ALL <table>")
	}
	t, err := c.table(args[0])
	if err != nil {
		return err
	}
	c.printRecords(t.Schema(), t.All())
	return nil
}

func (c *Cli) processShow(args []string) error {
	if len(args) != 1 && len(args) != 2 {
		return usage("SHOW <table> [text|levels|dot]")
	}
	t, err := c.table(args[0])
	if err != nil {
		return err
	}
	format := "text"
	if len(args) == 2 {
		format = strings.ToLower(args[1])
	}
	switch format {
	case "text":
		return render.Text[bptdb.Value](c.out, t, render.TextOptions{Color: c.color})
	case "levels":
		return render.Levels[bptdb.Value](c.out, t)
	case "dot":
		return render.DOT[bptdb.Value](c.out, t)
	default:
		return errors.Newf("unknown format %q", format)
	}
}

func (c *Cli) processSave(args []string) error {
	if len(args) > 1 {
		return usage("SAVE [path]")
	}
	path := c.db.Path()
	if len(args) == 1 {
		path = args[0]
	}
	if err := c.db.Save(path); err != nil {
		return err
	}
	c.done("saved to %s", path)
	return nil
}

func (c *Cli) processLoad(args []string) error {
	if len(args) > 1 {
		return usage("LOAD [path]")
	}
	path := c.db.Path()
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return usage("LOAD <path>")
	}
	if err := c.db.Load(path); err != nil {
		return err
	}
	c.current = ""
	if dbs := c.db.ListDatabases(); len(dbs) > 0 {
		c.current = dbs[0]
	}
	c.done("loaded %s", path)
	return nil
}

func (c *Cli) printList(names []string) {
	if len(names) == 0 {
		fmt.Fprintln(c.out, c.dim.Sprint("(none)"))
		return
	}
	for _, n := range names {
		fmt.Fprintln(c.out, n)
	}
}

func (c *Cli) printRecords(schema bptdb.Schema, recs []bptdb.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(c.out, c.dim.Sprint("(no records)"))
		return
	}
	for _, rec := range recs {
		parts := make([]string, len(schema.Columns))
		for i, col := range schema.Columns {
			parts[i] = col.Name + "=" + rec[col.Name].String()
		}
		fmt.Fprintln(c.out, strings.Join(parts, " "))
	}
	fmt.Fprintln(c.out, c.dim.Sprintf("(%d records)", len(recs)))
}

func parseKey(schema bptdb.Schema, s string) (bptdb.Value, error) {
	return bptdb.ParseValue(schema.KeyType(), s)
}

func parseAssignments(schema bptdb.Schema, args []string) (bptdb.Record, error) {
	rec := make(bptdb.Record, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, errors.Newf("expected col=val, got %q", arg)
		}
		col, ok := schema.Column(name)
		if !ok {
			return nil, errors.Newf("unknown column %q", name)
		}
		v, err := bptdb.ParseValue(col.Type, raw)
		if err != nil {
			return nil, err
		}
		rec[name] = v
	}
	return rec, nil
}
