package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/0xwonj/dungeon-sub001/internal/journal"
	"github.com/0xwonj/dungeon-sub001/logging"
)

func newSchemaCommand() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export JSON schemas for the journal entry and event formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportSchemas(outDir)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "schemas", "output directory")
	return cmd
}

func exportSchemas(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}
	reflector := &jsonschema.Reflector{ExpandedStruct: true}

	targets := []struct {
		name  string
		value any
	}{
		{"journal_entry", &journal.Entry{}},
		{"event", &logging.Event{}},
	}
	for _, target := range targets {
		schema := reflector.Reflect(target.value)
		payload, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s schema: %w", target.name, err)
		}
		path := filepath.Join(outDir, target.name+".schema.json")
		if err := writeAtomic(path, payload); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}
	return nil
}

// writeAtomic writes via a temp file and rename so a crash never leaves a
// half-written schema behind.
func writeAtomic(path string, payload []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".schema-*")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(payload, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
