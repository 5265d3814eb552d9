// Command strictjson validates and decodes JSON documents against a
// schema document.
//
//	strictjson -schema schema.json [-query EXPR] [-workers N] [file...]
//
// With no files (or "-") the payload is read from stdin. Each decoded
// document is printed as compact JSON on stdout, optionally filtered
// through a jq expression first. The exit status is non-zero if any
// document fails.
//
// Limits, the unknown-field policy, and logging are configured via
// environment variables; see internal/config for the full list.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/itchyny/gojq"

	"github.com/usestring/strictjson/internal/batch"
	"github.com/usestring/strictjson/internal/cache"
	"github.com/usestring/strictjson/internal/config"
	"github.com/usestring/strictjson/internal/logging"
	"github.com/usestring/strictjson/pkg/bind"
)

func main() {
	os.Exit(run())
}

func run() int {
	schemaPath := flag.String("schema", "", "path to the schema document (required)")
	queryExpr := flag.String("query", "", "optional jq expression applied to each decoded document")
	workers := flag.Int("workers", 0, "worker count for multi-file decoding (default from env)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	cleanup, err := logging.Setup(logging.Config{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging setup:", err)
		return 1
	}
	defer cleanup()

	if *schemaPath == "" {
		fmt.Fprintln(os.Stderr, "usage: strictjson -schema schema.json [-query EXPR] [file...]")
		return 2
	}

	var query *gojq.Query
	if *queryExpr != "" {
		q, err := gojq.Parse(*queryExpr)
		if err != nil {
			slog.Error("invalid query expression", "query", *queryExpr, "error", err)
			return 2
		}
		query = q
	}

	schemaDoc, err := os.ReadFile(*schemaPath)
	if err != nil {
		slog.Error("reading schema document", "path", *schemaPath, "error", err)
		return 1
	}
	loader, err := cache.NewLoader(cfg.SchemaCache)
	if err != nil {
		slog.Error("creating schema cache", "error", err)
		return 1
	}
	reg, lerr := loader.Load(schemaDoc)
	if lerr != nil {
		slog.Error("schema rejected", "path", *schemaPath, "error", lerr)
		return 1
	}

	names, payloads, err := readPayloads(flag.Args())
	if err != nil {
		slog.Error("reading input", "error", err)
		return 1
	}

	binder := bind.New(reg, bind.Options{Limits: cfg.Limits, UnknownFields: cfg.UnknownFields})
	n := *workers
	if n <= 0 {
		n = cfg.BatchWorkers
	}
	results, err := batch.Run(ctx, binder, payloads, n)
	if err != nil {
		slog.Error("batch decode", "error", err)
		return 1
	}

	exit := 0
	out := json.NewEncoder(os.Stdout)
	for i, res := range results {
		if res.Err != nil {
			slog.Error("document rejected", "input", names[i], "error", res.Err)
			exit = 1
			continue
		}
		if err := emit(ctx, out, query, res.Node.Interface()); err != nil {
			slog.Error("writing output", "input", names[i], "error", err)
			exit = 1
		}
	}
	return exit
}

func readPayloads(args []string) ([]string, [][]byte, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	names := make([]string, 0, len(args))
	payloads := make([][]byte, 0, len(args))
	for _, arg := range args {
		var data []byte
		var err error
		if arg == "-" {
			data, err = io.ReadAll(os.Stdin)
			arg = "stdin"
		} else {
			data, err = os.ReadFile(arg)
		}
		if err != nil {
			return nil, nil, err
		}
		names = append(names, arg)
		payloads = append(payloads, data)
	}
	return names, payloads, nil
}

func emit(ctx context.Context, out *json.Encoder, query *gojq.Query, v any) error {
	if query == nil {
		return out.Encode(v)
	}
	iter := query.RunWithContext(ctx, v)
	for {
		item, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := item.(error); isErr {
			return err
		}
		if err := out.Encode(item); err != nil {
			return err
		}
	}
}
