package main

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-oq/internal/catalog"
)

// printIndex writes the category index as YAML, categories in first-seen order.
func printIndex(w io.Writer, idx *catalog.Index) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(idx.Snapshot()); err != nil {
		return err
	}
	return enc.Close()
}
