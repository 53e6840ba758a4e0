package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		testCases := []string{
			"DEBUG",
			"Info",
			"WaRn",
			"ERROR",
		}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "invalid")
	})
}

func TestIngestCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "qabase",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "collection",
				Value: "security_qa",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Value: "embeddinggemma",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
			},
		},
	}

	t.Run("missing db flag fails", func(t *testing.T) {
		err := app.Run([]string{"qabase", "ingest", "/tmp/data"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("missing path argument fails", func(t *testing.T) {
		err := app.Run([]string{"qabase", "--db", t.TempDir(), "ingest"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file or directory")
	})
}

func TestReadQuestions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.txt")
	content := "How is data encrypted at rest?\n\n  \nWho can access audit logs?\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	app := &cli.App{
		Name: "test",
		Action: func(c *cli.Context) error {
			questions, err := readQuestions(c)
			require.NoError(t, err)
			require.Len(t, questions, 2)
			assert.Equal(t, "How is data encrypted at rest?", questions[0])
			assert.Equal(t, "Who can access audit logs?", questions[1])
			return nil
		},
	}

	require.NoError(t, app.Run([]string{"test", path}))
}

func TestGlobalFlagEnvVars(t *testing.T) {
	flags := map[string]string{
		"db":              "QABASE_DB",
		"collection":      "QABASE_COLLECTION",
		"embedding-host":  "QABASE_EMBEDDING_HOST",
		"embedding-model": "QABASE_EMBEDDING_MODEL",
	}

	app := &cli.App{
		Name: "qabase",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", EnvVars: []string{"QABASE_DB"}},
			&cli.StringFlag{Name: "collection", EnvVars: []string{"QABASE_COLLECTION"}},
			&cli.StringFlag{Name: "embedding-host", EnvVars: []string{"QABASE_EMBEDDING_HOST"}},
			&cli.StringFlag{Name: "embedding-model", EnvVars: []string{"QABASE_EMBEDDING_MODEL"}},
		},
	}

	for _, flag := range app.Flags {
		f, ok := flag.(*cli.StringFlag)
		require.True(t, ok)
		want, covered := flags[f.Name]
		if !covered {
			continue
		}
		assert.Contains(t, strings.Join(f.EnvVars, ","), want)
	}
}
