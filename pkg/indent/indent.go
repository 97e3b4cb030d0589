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

// Package indent prefixes every line written to it, used by the plan
// tree printer (see pkg/treeprint) to nest node, relationship and
// operation output the way a human would indent a blueprint by hand.
package indent

import (
	"bytes"
	"io"
)

// String returns s with prefix prepended to every line. A trailing
// newline in s is preserved without manufacturing an extra empty line;
// a final line with no trailing newline is still prefixed.
func String(prefix, s string) string {
	return string(Bytes([]byte(prefix), []byte(s)))
}

// Bytes is the []byte equivalent of String.
func Bytes(prefix, b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	endsNL := b[len(b)-1] == '\n'
	lines := bytes.Split(b, []byte("\n"))
	if endsNL {
		lines = lines[:len(lines)-1]
	}
	var out bytes.Buffer
	for i, line := range lines {
		out.Write(prefix)
		out.Write(line)
		if i < len(lines)-1 || endsNL {
			out.WriteByte('\n')
		}
	}
	return out.Bytes()
}

// A Writer prefixes every line written through it with prefix before
// passing it on to the wrapped io.Writer. Unlike String, a Writer must
// decide whether to emit the prefix before it has seen the rest of the
// line, so the prefix for a partial trailing line is flushed immediately
// rather than held back.
//
// Each call to Write is flushed to the underlying writer in a single
// underlying Write, so a short write there can be attributed back to an
// exact count of input bytes consumed.
type Writer struct {
	w           io.Writer
	prefix      []byte
	atLineStart bool
}

// NewWriter returns a Writer that indents everything written to it with
// prefix before forwarding it to w.
func NewWriter(w io.Writer, prefix string) *Writer {
	return &Writer{w: w, prefix: []byte(prefix), atLineStart: true}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var out bytes.Buffer
	consumed := make([]int, 0, len(p)+len(w.prefix))
	atLineStart := w.atLineStart
	n := 0

	for len(p) > 0 {
		if atLineStart {
			out.Write(w.prefix)
			for range w.prefix {
				consumed = append(consumed, n)
			}
			atLineStart = false
		}
		nl := bytes.IndexByte(p, '\n')
		var chunk []byte
		if nl < 0 {
			chunk = p
		} else {
			chunk = p[:nl+1]
			atLineStart = true
		}
		out.Write(chunk)
		for range chunk {
			n++
			consumed = append(consumed, n)
		}
		p = p[len(chunk):]
	}

	written, err := w.w.Write(out.Bytes())
	if written > out.Len() {
		written = out.Len()
	}
	if written < 0 {
		written = 0
	}

	mapped := 0
	if written > 0 {
		mapped = consumed[written-1]
	}
	if err == nil {
		w.atLineStart = atLineStart
	}
	return mapped, err
}
