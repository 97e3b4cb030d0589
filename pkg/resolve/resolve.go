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

// Package resolve defines the Resolver contract the import graph uses
// to turn an import reference into raw document text, and a default
// implementation covering file:// and http(s):// references.
package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// A Resolver maps an import reference to raw document text. It is the
// engine's only I/O boundary; the engine itself never touches the
// filesystem or the network.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// NotResolvable is returned by a Resolver when ref could not be turned
// into document text.
type NotResolvable struct {
	URL    string
	Reason string
}

func (e *NotResolvable) Error() string {
	return fmt.Sprintf("resolve: %s: %s", e.URL, e.Reason)
}

// Default is the Resolver returned by NewDefault: it serves file://,
// bare filesystem paths, and http(s):// references, logging each
// fetch at debug level.
type Default struct {
	client *http.Client
	log    *zap.Logger
}

// NewDefault returns a Default resolver. A nil logger falls back to
// zap.NewNop, matching the engine's policy that logging is diagnostic
// only and never required for correct operation.
func NewDefault(log *zap.Logger) *Default {
	if log == nil {
		log = zap.NewNop()
	}
	return &Default{client: &http.Client{Timeout: 30 * time.Second}, log: log}
}

// Resolve implements Resolver.
func (d *Default) Resolve(ctx context.Context, ref string) (string, error) {
	d.log.Debug("resolving import", zap.String("ref", ref))

	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return d.resolveHTTP(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		return d.resolveFile(strings.TrimPrefix(ref, "file://"))
	default:
		return d.resolveFile(ref)
	}
}

func (d *Default) resolveFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", &NotResolvable{URL: path, Reason: err.Error()}
	}
	return string(b), nil
}

func (d *Default) resolveHTTP(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &NotResolvable{URL: url, Reason: err.Error()}
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", &NotResolvable{URL: url, Reason: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &NotResolvable{URL: url, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NotResolvable{URL: url, Reason: err.Error()}
	}
	return string(b), nil
}

// Static is a Resolver backed by an in-memory map, used by tests and by
// embedders that already hold every document the blueprint imports.
type Static map[string]string

// Resolve implements Resolver.
func (s Static) Resolve(_ context.Context, ref string) (string, error) {
	text, ok := s[ref]
	if !ok {
		return "", &NotResolvable{URL: ref, Reason: "not found"}
	}
	return text, nil
}
