/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package database

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

var errQueueFull = errors.New("too many queries waiting for a connection")

// gate admits at most size concurrent users of the pool. When limit is positive, callers
// beyond limit that would have to wait are turned away instead of queued.
type gate struct {
	sem     *semaphore.Weighted
	limit   int64
	waiting atomic.Int64
}

func newGate(size, limit int) *gate {
	if size < 1 {
		size = 1
	}
	if limit < 0 {
		limit = 0
	}
	return &gate{sem: semaphore.NewWeighted(int64(size)), limit: int64(limit)}
}

func (g *gate) acquire(ctx context.Context) error {
	if g.sem.TryAcquire(1) {
		return nil
	}
	if g.limit > 0 {
		if g.waiting.Add(1) > g.limit {
			g.waiting.Add(-1)
			return errQueueFull
		}
		defer g.waiting.Add(-1)
	}
	return g.sem.Acquire(ctx, 1)
}

func (g *gate) release() {
	g.sem.Release(1)
}
