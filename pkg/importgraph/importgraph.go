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

// Package importgraph resolves a blueprint's imports into a single,
// logically merged document. It runs entirely as a pre-processing pass
// over raw value.Value trees, before the element tree described by
// pkg/element/pkg/schema is ever built, matching spec §4.6's pipeline:
// "raw text -> location-aware tree -> import-merged tree -> element
// tree...".
package importgraph

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/blueprintlang/blueprint/internal/bperrors"
	"github.com/blueprintlang/blueprint/pkg/holder"
	"github.com/blueprintlang/blueprint/pkg/resolve"
	"github.com/blueprintlang/blueprint/pkg/value"
)

// Merge resolves and merges every import reachable from root (whose
// source is filename), returning a single logically merged document
// tree. Conflicting top-level keys across merged documents are a logic
// error unless the redefinition is byte-identical (Open Question 2),
// and the declared tosca_definitions_version must match across every
// merged document.
func Merge(ctx context.Context, resolver resolve.Resolver, filename string, root *value.Value, log *zap.Logger) (*value.Value, error) {
	if log == nil {
		log = zap.NewNop()
	}
	merged := root.DeepCopy()

	version, _ := root.Get("tosca_definitions_version")
	var versionScalar interface{}
	if version != nil {
		versionScalar, _ = version.Scalar()
	}

	inChain := map[string]bool{filename: true}
	alreadyMerged := map[string]bool{}
	if err := mergeImports(ctx, resolver, filename, root, merged, versionScalar, inChain, alreadyMerged, []string{filename}, log); err != nil {
		return nil, err
	}
	merged.Set("imports", nil)
	return merged, nil
}

// mergeImports walks doc's imports depth-first. inChain holds the
// refs on the path from the root to doc (ancestors still being
// merged) and is what makes a cycle a cycle: revisiting one of them
// means an import reaches back into its own ancestry. alreadyMerged
// holds every ref that has finished merging anywhere in the graph, so
// a diamond -- the same file imported from two unrelated branches --
// is merged once and then silently skipped rather than rejected.
func mergeImports(ctx context.Context, resolver resolve.Resolver, filename string, doc *value.Value, merged *value.Value, rootVersion interface{}, inChain, alreadyMerged map[string]bool, chain []string, log *zap.Logger) error {
	importsVal, ok := doc.Get("imports")
	if !ok {
		return nil
	}

	for _, item := range importsVal.Items() {
		ref, _ := item.Scalar()
		refStr, _ := ref.(string)

		if inChain[refStr] {
			return bperrors.Logicf(bperrors.CodeImportCycle, item.Location, []string{"imports"},
				"import cycle detected: %v -> %s", chain, refStr)
		}
		if alreadyMerged[refStr] {
			continue
		}

		log.Debug("resolving import", zap.String("ref", refStr))
		text, err := resolver.Resolve(ctx, refStr)
		if err != nil {
			return bperrors.Resolutionf(0, item.Location, []string{"imports"}, "failed to resolve import %q: %v", refStr, err)
		}

		imported, err := holder.Load(refStr, text)
		if err != nil {
			return bperrors.Formatf(bperrors.CodeUnknownTopLevelKey, item.Location, []string{"imports"}, "failed to parse import %q: %v", refStr, err)
		}

		if v, ok := imported.Get("tosca_definitions_version"); ok {
			scalar, _ := v.Scalar()
			if rootVersion != nil && scalar != rootVersion {
				return bperrors.Logicf(bperrors.CodeImportVersionMismatch, v.Location, []string{"imports"},
					"imported document %q declares version %v, root declares %v", refStr, scalar, rootVersion)
			}
		}

		if err := mergeDocument(merged, imported, refStr); err != nil {
			return err
		}

		inChain[refStr] = true
		err = mergeImports(ctx, resolver, refStr, imported, merged, rootVersion, inChain, alreadyMerged, append(chain, refStr), log)
		delete(inChain, refStr)
		if err != nil {
			return err
		}
		alreadyMerged[refStr] = true
	}
	return nil
}

var mergeableKeys = []string{
	"inputs", "outputs", "node_types", "relationships", "plugins",
	"workflows", "groups", "data_types", "policy_types", "policy_triggers",
	"policies", "dsl_definitions",
}

// mergeDocument unions imported's top-level mapping keys into merged.
// A disjoint key from imported is copied wholesale; a colliding key is
// merged entry-by-entry under the same byte-identical-redefinition rule.
func mergeDocument(merged, imported *value.Value, sourceName string) error {
	for _, key := range mergeableKeys {
		importedSection, ok := imported.Get(key)
		if !ok {
			continue
		}
		existing, ok := merged.Get(key)
		if !ok {
			merged.Set(key, importedSection.DeepCopy())
			continue
		}
		if err := mergeSection(existing, importedSection, key, sourceName); err != nil {
			return err
		}
	}
	return nil
}

func mergeSection(existing, imported *value.Value, key, sourceName string) error {
	for _, name := range imported.Keys() {
		importedEntry, _ := imported.Get(name)
		if existingEntry, ok := existing.Get(name); ok {
			if !reflect.DeepEqual(existingEntry.Restore(), importedEntry.Restore()) {
				return bperrors.Logicf(bperrors.CodeImportVersionMismatch, importedEntry.Location, []string{key, name},
					"incompatible redefinition of %q.%q from import %q", key, name, sourceName)
			}
			continue
		}
		existing.Set(name, importedEntry.DeepCopy())
	}
	return nil
}
