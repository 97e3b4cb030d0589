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

// Package bperrors implements the engine's error taxonomy: Format,
// Logic, SchemaAPI and Resolution errors, each carrying a stable
// numeric code, a message, a source location and the dot-joined
// element path that produced it.
package bperrors

import (
	"fmt"

	"github.com/blueprintlang/blueprint/pkg/value"
)

// Kind classifies an Error per the engine's propagation policy.
type Kind int

const (
	// Format errors are raised while the document shape is checked
	// against a schema: wrong type, unknown key, missing required key.
	Format Kind = iota
	// Logic errors mean the document is shaped correctly but is
	// semantically inconsistent.
	Logic
	// SchemaAPI errors are programming errors in the engine or an
	// extension: reading a value before parse, a cyclic requires graph,
	// an ill-formed schema descriptor.
	SchemaAPI
	// Resolution errors mean the injected Resolver failed to produce
	// document text for an import reference.
	Resolution
)

func (k Kind) String() string {
	switch k {
	case Format:
		return "format"
	case Logic:
		return "logic"
	case SchemaAPI:
		return "schema-api"
	case Resolution:
		return "resolution"
	default:
		return "unknown"
	}
}

// Public error codes. These are part of the engine's stable contract
// (tooling is permitted to match on them) and must never be renumbered
// once published.
const (
	CodeNegativeInstancesDeploy   = 1
	CodeUnknownNodeType           = 7
	CodeMissingRequiredField      = 10
	CodeVersionTooOld             = 19
	CodeRelationshipTargetEqSelf  = 23
	CodeOrphanHostAgentPlugin     = 24
	CodeUnknownRelationshipTarget = 25
	CodeUnknownRelationshipType   = 26
	CodeCyclicRequires            = 50
	CodeImportVersionMismatch     = 80
	CodeMissingMandatoryInput     = 107
	CodeDuplicateHostedOn         = 112

	// Additional codes not named explicitly in the public list but
	// covered by its "and others": stable once published, same as the
	// rest.
	CodeUndefinedProperty      = 30
	CodeTypeMismatch           = 31
	CodeCyclicDerivedFrom      = 32
	CodeUnknownOperationPlugin = 34
	CodeDeprecatedMix          = 35
	CodeImportCycle            = 37
	CodeUnknownTopLevelKey     = 38
)

// Error is the single error type returned across the engine's public
// surface.
type Error struct {
	Kind     Kind
	Code     int
	Message  string
	Location value.Location
	Path     []string
}

// Error implements the error interface, rendering the location and
// element path the way every engine failure must: the caller should
// never need more than the string to find the offending line.
func (e *Error) Error() string {
	path := ""
	if len(e.Path) > 0 {
		path = " at " + joinPath(e.Path)
	}
	loc := ""
	if !e.Location.Synthetic() {
		loc = " (" + e.Location.String() + ")"
	}
	return fmt.Sprintf("%s error %d: %s%s%s", e.Kind, e.Code, e.Message, path, loc)
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}
	return out
}

// New builds a kinded, coded, located Error.
func New(kind Kind, code int, loc value.Location, path []string, format string, args ...interface{}) *Error {
	return &Error{
		Kind:     kind,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
		Path:     append([]string(nil), path...),
	}
}

// Formatf builds a Format error.
func Formatf(code int, loc value.Location, path []string, format string, args ...interface{}) *Error {
	return New(Format, code, loc, path, format, args...)
}

// Logicf builds a Logic error.
func Logicf(code int, loc value.Location, path []string, format string, args ...interface{}) *Error {
	return New(Logic, code, loc, path, format, args...)
}

// SchemaAPIf builds a SchemaAPI error.
func SchemaAPIf(code int, loc value.Location, path []string, format string, args ...interface{}) *Error {
	return New(SchemaAPI, code, loc, path, format, args...)
}

// Resolutionf builds a Resolution error.
func Resolutionf(code int, loc value.Location, path []string, format string, args ...interface{}) *Error {
	return New(Resolution, code, loc, path, format, args...)
}

// As reports whether err is an *Error and, if so, returns it. It mirrors
// the stdlib errors.As shape for the one error type this package emits.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
