// Copyright 2015 Google Inc.
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

// Command blueprintc parses and elaborates a blueprint document, printing
// the resulting plan as indented text or JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blueprintlang/blueprint/pkg/blueprint"
	"github.com/blueprintlang/blueprint/pkg/resolve"
	"github.com/blueprintlang/blueprint/pkg/treeprint"
)

func main() {
	var output string

	rootCmd := &cobra.Command{
		Use:           "blueprintc [flags] <file.yaml>",
		Short:         "Parse and elaborate a blueprint document",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args[0], output)
		},
	}
	rootCmd.Flags().StringVarP(&output, "output", "o", "tree", "output format: tree or json")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(path, output string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("blueprintc: %w", err)
	}

	resolver := &relativeFileResolver{baseDir: filepath.Dir(path), inner: resolve.NewDefault(nil)}

	p, err := blueprint.Parse(context.Background(), resolver, filepath.Base(path), string(data))
	if err != nil {
		return err
	}

	switch output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "tree", "":
		treeprint.Write(os.Stdout, p)
		return nil
	default:
		return fmt.Errorf("blueprintc: unknown output format %q", output)
	}
}

// relativeFileResolver resolves bare import references relative to the
// directory of the root document (baseDir), falling back to
// resolve.Default's file/http(s) handling for absolute references. A
// reference made from a nested import is also joined against baseDir,
// not against the directory of the document that imported it.
type relativeFileResolver struct {
	baseDir string
	inner   *resolve.Default
}

func (r *relativeFileResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if filepath.IsAbs(ref) || hasURLScheme(ref) {
		return r.inner.Resolve(ctx, ref)
	}
	return r.inner.Resolve(ctx, filepath.Join(r.baseDir, ref))
}

func hasURLScheme(ref string) bool {
	for i, c := range ref {
		switch {
		case c == ':':
			return i > 0
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '+', c == '-', c == '.':
			continue
		default:
			return false
		}
	}
	return false
}
