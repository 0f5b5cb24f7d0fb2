/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package params evaluates deferred parameter expressions stored in
// autochecks files.
package params

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/carverauto/autochecks/pkg/models"
)

// Vars are the values an expression can reference as vars.<name>.
type Vars map[string]interface{}

// Evaluator turns parameters into concrete values.
type Evaluator interface {
	Evaluate(p models.Parameters, vars Vars) (interface{}, error)
}

// CUEEvaluator evaluates deferred expressions as CUE with a "vars" struct in scope.
type CUEEvaluator struct {
	mu  sync.Mutex
	ctx *cue.Context
}

func NewCUEEvaluator() *CUEEvaluator {
	return &CUEEvaluator{ctx: cuecontext.New()}
}

// Evaluate returns literal values unchanged and evaluates deferred ones.
func (e *CUEEvaluator) Evaluate(p models.Parameters, vars Vars) (interface{}, error) {
	if !p.IsDeferred() {
		return p.Value(), nil
	}

	if vars == nil {
		vars = Vars{}
	}

	// cue.Context is not safe for concurrent use
	e.mu.Lock()
	defer e.mu.Unlock()

	scope := e.ctx.Encode(map[string]interface{}{"vars": map[string]interface{}(vars)})
	if err := scope.Err(); err != nil {
		return nil, fmt.Errorf("encoding vars: %w", err)
	}

	v := e.ctx.CompileString(p.Source(), cue.Scope(scope), cue.Filename("parameters"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrCompile, p.Source(), err)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrNotConcrete, p.Source(), err)
	}

	var out interface{}
	if err := v.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", p.Source(), err)
	}

	return out, nil
}
