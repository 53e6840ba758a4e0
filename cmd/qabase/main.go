// Copyright 2026 Qabase Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/qabase/qabase"
	"github.com/qabase/qabase/ai"
	"github.com/qabase/qabase/ai/openai"
	"github.com/qabase/qabase/reembed"
	"github.com/qabase/qabase/retrieval"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "qabase",
		Usage: "Semantic knowledge base for security Q&A documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				EnvVars:  []string{"QABASE_DB"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "collection",
				Usage:   "Collection name",
				EnvVars: []string{"QABASE_COLLECTION"},
				Value:   qabase.DefaultCollection,
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				EnvVars: []string{"QABASE_EMBEDDING_HOST"},
				Value:   "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"QABASE_EMBEDDING_MODEL"},
				Value:   "embeddinggemma",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Extract Q&A pairs from documents and store them",
				ArgsUsage: "<path>... (files or directories)",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Clear the collection before ingesting",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to embed in each batch",
						Value: retrieval.DefaultBatchSize,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the knowledge base",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Aliases: []string{"k"},
						Usage: "Maximum number of results",
						Value: retrieval.DefaultTopK,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score, 0 to 1",
						Value: retrieval.DefaultScoreThreshold,
					},
				},
			},
			{
				Name:      "batch",
				Usage:     "Answer a list of questions and export results as CSV",
				ArgsUsage: "[questions file, one per line; stdin if omitted]",
				Action:    batchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Aliases: []string{"k"},
						Usage: "Candidates considered per question",
						Value: retrieval.DefaultTopK,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score, 0 to 1",
						Value: 0.5,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "CSV output path, stdout if omitted",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for every stored record",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "clear",
				Usage:  "Remove every record in the collection",
				Action: clearCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show collection statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*qabase.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := qabase.Open(c.String("db"),
		qabase.WithCollection(c.String("collection")),
		qabase.WithAIConfig(aiConfig),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected at least one file or directory argument")
	}
	paths := c.Args().Slice()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := qabase.BuildFromPaths(context.Background(), db, paths,
		c.Bool("clear"), c.Int("batch-size"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	for _, file := range result.Files {
		if file.Err != nil {
			fmt.Fprintf(os.Stderr, "SKIP %s: %v\n", file.Path, file.Err)
			continue
		}
		fmt.Fprintf(os.Stderr, "OK   %s: %d records\n", file.Path, len(file.Records))
	}
	fmt.Fprintf(os.Stderr, "\nStored %d records from %d files (%d skipped)\n",
		result.Stored, len(result.Files)-result.Skipped, result.Skipped)

	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one query argument")
	}
	query := c.Args().First()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	retriever, err := db.NewRetriever()
	if err != nil {
		return err
	}

	results, err := retriever.Search(context.Background(), query,
		c.Int("top-k"), float32(c.Float64("threshold")))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%d. [%.1f%%] %s\n", i+1, result.Score*100, result.Question)
		fmt.Printf("   %s\n", result.Answer)
		fmt.Printf("   source: %s\n\n", result.Source)
	}
	return nil
}

func batchCommand(c *cli.Context) error {
	questions, err := readQuestions(c)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("no questions to process")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	retriever, err := db.NewRetriever()
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"query", "matched_question", "answer", "score", "source"}); err != nil {
		return err
	}

	topK := c.Int("top-k")
	threshold := float32(c.Float64("threshold"))

	for i, question := range questions {
		fmt.Fprintf(os.Stderr, "processing %d/%d\n", i+1, len(questions))

		results, err := retriever.Search(context.Background(), question, topK, threshold)
		if err != nil {
			return fmt.Errorf("search failed for %q: %w", question, err)
		}

		row := []string{question, "-", "no matching answer found", "0", "-"}
		if len(results) > 0 {
			best := results[0]
			row = []string{
				question,
				best.Question,
				best.Answer,
				strconv.FormatFloat(float64(best.Score), 'f', 4, 32),
				best.Source,
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func readQuestions(c *cli.Context) ([]string, error) {
	in := io.Reader(os.Stdin)
	if c.NArg() > 0 {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return nil, fmt.Errorf("failed to open questions file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var questions []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			questions = append(questions, line)
		}
	}
	return questions, scanner.Err()
}

func reembedCommand(c *cli.Context) error {
	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Collection: %s\n", c.String("collection"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n\n", c.String("embedding-model"))

	reembedder := reembed.NewReembedder(db.Entries(), embedder, config, os.Stderr)
	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func clearCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	retriever, err := db.NewRetriever()
	if err != nil {
		return err
	}

	if err := retriever.Clear(context.Background()); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Cleared collection %q\n", c.String("collection"))
	return nil
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	retriever, err := db.NewRetriever()
	if err != nil {
		return err
	}

	stats, err := retriever.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Collection: %s\n", stats.CollectionName)
	fmt.Printf("Directory:  %s\n", stats.Directory)
	fmt.Printf("Records:    %d\n", stats.Count)

	counts, err := retriever.SourceCounts(context.Background())
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}

	sources := make([]string, 0, len(counts))
	for source := range counts {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	fmt.Println("\nRecords per source:")
	for _, source := range sources {
		fmt.Printf("  %6d  %s\n", counts[source], source)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
