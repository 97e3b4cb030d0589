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

package schema

import (
	"github.com/blueprintlang/blueprint/internal/bperrors"
	"github.com/blueprintlang/blueprint/pkg/functions"
	"github.com/blueprintlang/blueprint/pkg/value"
)

// MergeProperties implements the property merge contract of spec §4.3:
// every schema-declared property is present in the result, taking the
// instance value when given, the schema default otherwise; an instance
// key absent from schema, or a schema key with neither default nor
// instance value, is a logic error. No value is checked against its
// declared type, and undeclared type names are not rejected: instance
// values, intrinsic-function calls included, are restored as given.
func MergeProperties(schemaProps map[string]PropertySchema, instance *value.Value, funcs *functions.Registry, path []string) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(schemaProps))

	if instance != nil {
		for _, key := range instance.Keys() {
			if _, ok := schemaProps[key]; !ok {
				return nil, bperrors.Logicf(bperrors.CodeUndefinedProperty, instance.Location, append(path, key),
					"undefined property %q", key)
			}
		}
	}

	for name, ps := range schemaProps {
		var iv *value.Value
		if instance != nil {
			iv, _ = instance.Get(name)
		}
		if iv == nil {
			if ps.HasDefault {
				result[name] = ps.Default.Restore()
				continue
			}
			return nil, bperrors.Logicf(bperrors.CodeMissingMandatoryInput, locOrZero(instance), append(path, name),
				"missing mandatory property %q", name)
		}

		if funcs != nil {
			if _, ok := funcs.Parse(iv); ok {
				result[name] = iv.Restore()
				continue
			}
		}
		result[name] = iv.Restore()
	}
	return result, nil
}

func locOrZero(v *value.Value) value.Location {
	if v == nil {
		return value.Location{StartLine: -1, StartCol: -1}
	}
	return v.Location
}

// MergedOperation is the normalized {implementation-bearing} form of an
// interface operation before plugin/operation-name splitting (§4.5).
type MergedOperation struct {
	Implementation string
	Inputs         map[string]interface{}
	Executor       string
	MaxRetries     *int
	RetryInterval  *float64
}

// MergeInterfaces implements the interface merge contract of spec
// §4.3: for each operation key in the union of typeIfaces and
// instanceIfaces, a bare string normalizes to {implementation, inputs:
// {}}; inputs merge with the instance taking precedence; executor and
// retry fields come from the most specific override; a missing
// executor defaults to "local".
func MergeInterfaces(typeIfaces map[string]map[string]*value.Value, instanceIfaces *value.Value) map[string]map[string]MergedOperation {
	result := map[string]map[string]MergedOperation{}

	for ifaceName, ops := range typeIfaces {
		merged := map[string]MergedOperation{}
		for opName, opVal := range ops {
			merged[opName] = normalizeOperation(opVal, MergedOperation{Executor: "local"})
		}
		result[ifaceName] = merged
	}

	if instanceIfaces != nil {
		for _, ifaceName := range instanceIfaces.Keys() {
			ifaceVal, _ := instanceIfaces.Get(ifaceName)
			merged, ok := result[ifaceName]
			if !ok {
				merged = map[string]MergedOperation{}
				result[ifaceName] = merged
			}
			for _, opName := range ifaceVal.Keys() {
				opVal, _ := ifaceVal.Get(opName)
				base := merged[opName]
				if base.Executor == "" {
					base.Executor = "local"
				}
				merged[opName] = normalizeOperation(opVal, base)
			}
		}
	}
	return result
}

func normalizeOperation(v *value.Value, base MergedOperation) MergedOperation {
	out := base
	if v == nil {
		return out
	}
	if v.Kind == value.Scalar {
		if s, ok := v.Scalar(); ok {
			if str, ok := s.(string); ok {
				out.Implementation = str
			}
		}
		return out
	}
	if impl, ok := v.Get("implementation"); ok {
		if s, ok := impl.Scalar(); ok {
			if str, ok := s.(string); ok {
				out.Implementation = str
			}
		}
	}
	if inputs, ok := v.Get("inputs"); ok {
		merged := map[string]interface{}{}
		for k, val := range out.Inputs {
			merged[k] = val
		}
		for _, k := range inputs.Keys() {
			iv, _ := inputs.Get(k)
			merged[k] = iv.Restore()
		}
		out.Inputs = merged
	}
	if executor, ok := v.Get("executor"); ok {
		if s, ok := executor.Scalar(); ok {
			if str, ok := s.(string); ok {
				out.Executor = str
			}
		}
	}
	if mr, ok := v.Get("max_retries"); ok {
		if s, ok := mr.Scalar(); ok {
			if n, ok := toInt(s); ok {
				out.MaxRetries = &n
			}
		}
	}
	if ri, ok := v.Get("retry_interval"); ok {
		if s, ok := ri.Scalar(); ok {
			if f, ok := toFloat(s); ok {
				out.RetryInterval = &f
			}
		}
	}
	return out
}

func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	default:
		return 0, false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
