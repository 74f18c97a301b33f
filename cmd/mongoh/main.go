package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/strblr/mongoh"
	"github.com/strblr/mongoh/manifest"
	"github.com/strblr/mongoh/registry"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "dump":
		dumpCmd(os.Args[2:])
	case "ensure":
		ensureCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "mongoh CLI\n\nUsage:\n  mongoh dump -f schema.yaml\n  mongoh ensure -f schema.yaml -uri mongodb://... -db name\n\nNotes:\n  - dump prints the derived $jsonSchema validator per collection.\n  - ensure creates/updates collections, validators and indexes on the target database.")
}

func dumpCmd(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	var file string
	fs.StringVar(&file, "f", "", "schema manifest file")
	_ = fs.Parse(args)
	if file == "" {
		fs.Usage()
		os.Exit(2)
	}

	schema := loadSchema(file)
	validators, err := schema.Validators()
	if err != nil {
		fatalf("derive: %v", err)
	}

	out := make(map[string]any, len(validators))
	for _, name := range schema.Names() {
		out[name] = map[string]any{"$jsonSchema": validators[name]}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fatalf("encode: %v", err)
	}
	fmt.Println(string(b))
}

func ensureCmd(args []string) {
	fs := flag.NewFlagSet("ensure", flag.ExitOnError)
	var file, uri, db string
	var timeout time.Duration
	fs.StringVar(&file, "f", "", "schema manifest file")
	fs.StringVar(&uri, "uri", "mongodb://localhost:27017", "mongodb connection string")
	fs.StringVar(&db, "db", "", "database name")
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	_ = fs.Parse(args)
	if file == "" || db == "" {
		fs.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	schema := loadSchema(file)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	reg, err := registry.New(client.Database(db), schema, registry.WithLogger(logger))
	if err != nil {
		fatalf("registry: %v", err)
	}
	if err := reg.EnsureSchemas(ctx); err != nil {
		fatalf("ensure: %v", err)
	}
	logger.Info("schemas ensured",
		zap.String("database", db), zap.Strings("collections", schema.Names()))
}

func loadSchema(file string) *mongoh.Schema {
	schema, err := manifest.Load(file)
	if err != nil {
		fatalf("load: %v", err)
	}
	if err := schema.Finalize(); err != nil {
		fatalf("finalize: %v", err)
	}
	return schema
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "mongoh: "+format+"\n", a...)
	os.Exit(1)
}
