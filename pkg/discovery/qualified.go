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

package discovery

import "github.com/carverauto/autochecks/pkg/models"

// QualifiedDiscovery classifies entities relative to a previously known set.
// Old entries carry the freshly discovered value.
type QualifiedDiscovery[T any] struct {
	Preexisting []T
	Current     []T
	New         []T
	Old         []T
	Vanished    []T
	Present     []T // Old followed by New
}

// Qualify computes the classification of current against preexisting, using
// key as identity. Duplicate keys within one input collapse to the last value,
// kept at the position of their first occurrence.
func Qualify[T any, K comparable](preexisting, current []T, key func(T) K) *QualifiedDiscovery[T] {
	pre := collapse(preexisting, key)
	cur := collapse(current, key)

	preKeys := make(map[K]struct{}, len(pre))
	for _, item := range pre {
		preKeys[key(item)] = struct{}{}
	}

	curKeys := make(map[K]struct{}, len(cur))
	for _, item := range cur {
		curKeys[key(item)] = struct{}{}
	}

	q := &QualifiedDiscovery[T]{
		Preexisting: pre,
		Current:     cur,
		New:         []T{},
		Old:         []T{},
		Vanished:    []T{},
	}

	for _, item := range cur {
		if _, known := preKeys[key(item)]; known {
			q.Old = append(q.Old, item)
		} else {
			q.New = append(q.New, item)
		}
	}

	for _, item := range pre {
		if _, still := curKeys[key(item)]; !still {
			q.Vanished = append(q.Vanished, item)
		}
	}

	q.Present = make([]T, 0, len(q.Old)+len(q.New))
	q.Present = append(q.Present, q.Old...)
	q.Present = append(q.Present, q.New...)

	return q
}

// Qualified pairs an entity with its transition.
type Qualified[T any] struct {
	Transition models.Transition
	Value      T
}

// Chain yields vanished, then old, then new entries with their transition.
func (q *QualifiedDiscovery[T]) Chain() []Qualified[T] {
	out := make([]Qualified[T], 0, len(q.Vanished)+len(q.Old)+len(q.New))

	for _, v := range q.Vanished {
		out = append(out, Qualified[T]{Transition: models.TransitionVanished, Value: v})
	}

	for _, v := range q.Old {
		out = append(out, Qualified[T]{Transition: models.TransitionOld, Value: v})
	}

	for _, v := range q.New {
		out = append(out, Qualified[T]{Transition: models.TransitionNew, Value: v})
	}

	return out
}

func collapse[T any, K comparable](items []T, key func(T) K) []T {
	index := make(map[K]int, len(items))
	out := make([]T, 0, len(items))

	for _, item := range items {
		k := key(item)
		if i, seen := index[k]; seen {
			out[i] = item
			continue
		}

		index[k] = len(out)
		out = append(out, item)
	}

	return out
}
