package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/go-faker/faker/v4"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/alexhholmes/bptdb"
	"github.com/alexhholmes/bptdb/internal/cli"
	"github.com/alexhholmes/bptdb/logger"
)

var (
	file      *string
	order     *int
	seed      *int
	logFormat *string
	noColor   *bool
)

// seedDatabase fills a "demo" database with a people table of fake records.
func seedDatabase(db *bptdb.DB, n int) error {
	if err := db.CreateDatabase("demo"); err != nil {
		return err
	}
	schema, err := bptdb.ParseSchema("id:int,name:string,email:string,age:int,score:float", "id")
	if err != nil {
		return err
	}
	people, err := db.CreateTable("demo", "people", schema)
	if err != nil {
		return err
	}
	for i := 1; i <= n; i++ {
		err := people.Insert(bptdb.Record{
			"id":    bptdb.Int(int64(i)),
			"name":  bptdb.String(faker.FirstName()),
			"email": bptdb.String(faker.Email()),
			"age":   bptdb.Int(int64(18 + rand.IntN(60))),
			"score": bptdb.Float(float64(rand.IntN(1000)) / 10),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func newLogger(format string) (bptdb.Logger, error) {
	switch format {
	case "none":
		return bptdb.DiscardLogger{}, nil
	case "slog":
		return slog.New(slog.NewTextHandler(os.Stderr, nil)), nil
	case "zap":
		z, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		return logger.NewZap(z), nil
	case "logrus":
		l := logrus.New()
		l.SetOutput(os.Stderr)
		return logger.NewLogrus(l), nil
	default:
		return nil, errors.Newf("unknown log format %q", format)
	}
}

func main() {
	setupFlags()

	lg, err := newLogger(*logFormat)
	if err != nil {
		fatal(err)
	}

	opts := []bptdb.DBOption{
		bptdb.WithLogger(lg),
		bptdb.WithDefaultOrder(*order),
	}

	var db *bptdb.DB
	if *file != "" {
		db, err = bptdb.Open(*file, opts...)
		if err != nil {
			fatal(err)
		}
	} else {
		db = bptdb.New(opts...)
	}

	if *seed > 0 {
		if err := seedDatabase(db, *seed); err != nil {
			fatal(err)
		}
	}

	demo := cli.NewCli(os.Stdin, os.Stdout, db, !*noColor && !color.NoColor)
	demo.Start()
}

func fatal(err error) {
	log.New(os.Stderr, "", 0).Fatalf("bptdb: %v", err)
}

func setupFlags() {
	file = flag.String("file", "", "Snapshot file to load at startup and write with SAVE.")
	order = flag.Int("order", bptdb.DefaultOrder, "Default B+ tree order for new tables.")
	seed = flag.Int("seed", 0, "Seed a demo.people table with this many records created with go-faker.")
	logFormat = flag.String("log", "none", "Catalog log output: none, slog, zap or logrus.")
	noColor = flag.Bool("no-color", false, "Disable coloured output.")
	flag.Usage = func() {
		fmt.Println("\nbptdb shell\n\nArguments:")
		flag.PrintDefaults()
	}
	flag.Parse()
}
