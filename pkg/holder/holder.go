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

// Package holder loads YAML document text into the location-aware
// value.Value tree the element framework consumes. It is the only
// package in this module that touches YAML syntax; everything above
// it deals exclusively in value.Value.
package holder

import (
	"fmt"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/blueprintlang/blueprint/pkg/value"
)

// Load parses text (the content of one blueprint document) and returns
// its root as a value.Value tree, tagging every node with filename and
// its source position.
func Load(filename, text string) (*value.Value, error) {
	file, err := parser.ParseBytes([]byte(text), parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("holder: %s: %w", filename, err)
	}
	if len(file.Docs) == 0 {
		return value.NewMapping(value.Location{File: filename, StartLine: -1, StartCol: -1}), nil
	}
	doc := file.Docs[0]
	if doc.Body == nil {
		return value.NewMapping(value.Location{File: filename, StartLine: -1, StartCol: -1}), nil
	}
	return convert(filename, doc.Body), nil
}

func locationOf(filename string, n ast.Node) value.Location {
	tok := n.GetToken()
	if tok == nil || tok.Position == nil {
		return value.Location{File: filename, StartLine: -1, StartCol: -1}
	}
	return value.Location{
		File:      filename,
		StartLine: tok.Position.Line,
		StartCol:  tok.Position.Column,
		EndLine:   tok.Position.Line,
		EndCol:    tok.Position.Column + len(tok.Value),
	}
}

func unwrap(n ast.Node) ast.Node {
	for {
		switch t := n.(type) {
		case *ast.TagNode:
			n = t.Value
		case *ast.AnchorNode:
			n = t.Value
		default:
			return n
		}
	}
}

func convert(filename string, n ast.Node) *value.Value {
	n = unwrap(n)
	loc := locationOf(filename, n)

	switch t := n.(type) {
	case *ast.MappingNode:
		m := value.NewMapping(loc)
		for _, mv := range t.Values {
			m.Set(mappingKey(mv.Key), convert(filename, mv.Value))
		}
		return m
	case *ast.MappingValueNode:
		m := value.NewMapping(loc)
		m.Set(mappingKey(t.Key), convert(filename, t.Value))
		return m
	case *ast.SequenceNode:
		s := value.NewSequence(loc)
		for _, item := range t.Values {
			s.Append(convert(filename, item))
		}
		return s
	case *ast.NullNode:
		return value.NewScalar(nil, loc)
	case *ast.BoolNode:
		return value.NewScalar(t.Value, loc)
	case *ast.IntegerNode:
		return value.NewScalar(t.Value, loc)
	case *ast.FloatNode:
		return value.NewScalar(t.Value, loc)
	case *ast.StringNode:
		return value.NewScalar(t.Value, loc)
	case *ast.LiteralNode:
		return value.NewScalar(t.Value.Value, loc)
	default:
		return value.NewScalar(n.String(), loc)
	}
}

// mappingKey extracts the plain string form of a mapping key node,
// unwrapping tags/anchors and falling back to its literal text.
func mappingKey(n ast.Node) string {
	n = unwrap(n)
	if s, ok := n.(*ast.StringNode); ok {
		return s.Value
	}
	return n.String()
}
