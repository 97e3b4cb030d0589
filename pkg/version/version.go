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

// Package version parses blueprint version identifiers into comparable
// ordinals. It accepts both bare "1.0"-style strings and
// tosca_simple_yaml_1_3-style identifiers, since the engine's
// supported_version gate never pins down a single document dialect.
package version

import (
	"strconv"
	"strings"
)

// Ordinal is a parsed, comparable version identifier.
type Ordinal struct {
	raw        string
	components []component
}

type component struct {
	n       int64
	isNum   bool
	lexical string
}

var knownPrefixes = []string{
	"tosca_simple_yaml_",
	"tosca_definitions_",
	"tosca_",
}

// Parse converts a version identifier such as "1.0", "2.3.1" or
// "tosca_simple_yaml_1_3" into an Ordinal. A recognized tosca_* prefix
// is stripped before splitting the remainder on '.' and '_'.
func Parse(s string) Ordinal {
	trimmed := s
	for _, p := range knownPrefixes {
		if strings.HasPrefix(trimmed, p) {
			trimmed = strings.TrimPrefix(trimmed, p)
			break
		}
	}
	trimmed = strings.NewReplacer("_", ".").Replace(trimmed)
	parts := strings.Split(trimmed, ".")

	components := make([]component, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if n, err := strconv.ParseInt(p, 10, 64); err == nil {
			components = append(components, component{n: n, isNum: true})
		} else {
			components = append(components, component{lexical: p})
		}
	}
	return Ordinal{raw: s, components: components}
}

// String returns the original, unmodified identifier Parse was called
// with.
func (o Ordinal) String() string {
	return o.raw
}

// Compare returns -1, 0 or 1 as o is less than, equal to, or greater
// than other, comparing components pairwise: two numeric components
// compare numerically, anything else compares lexically. A missing
// trailing component compares as lower than any present component.
func (o Ordinal) Compare(other Ordinal) int {
	n := len(o.components)
	if len(other.components) > n {
		n = len(other.components)
	}
	for i := 0; i < n; i++ {
		var a, b component
		haveA := i < len(o.components)
		haveB := i < len(other.components)
		if haveA {
			a = o.components[i]
		}
		if haveB {
			b = other.components[i]
		}
		switch {
		case !haveA && !haveB:
			continue
		case !haveA:
			return -1
		case !haveB:
			return 1
		}
		if c := compareComponent(a, b); c != 0 {
			return c
		}
	}
	return 0
}

func compareComponent(a, b component) int {
	if a.isNum && b.isNum {
		switch {
		case a.n < b.n:
			return -1
		case a.n > b.n:
			return 1
		default:
			return 0
		}
	}
	al, bl := a.lexical, b.lexical
	if a.isNum {
		al = strconv.FormatInt(a.n, 10)
	}
	if b.isNum {
		bl = strconv.FormatInt(b.n, 10)
	}
	return strings.Compare(al, bl)
}

// LessThan reports whether o is strictly older than other.
func (o Ordinal) LessThan(other Ordinal) bool {
	return o.Compare(other) < 0
}
