// Copyright 2025 Poiesic Systems
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


// Package search provides hybrid semantic and keyword search over context
// items.
//
// The Searcher type implements a single-pass search algorithm that combines:
//   - Semantic scoring using cosine similarity over vector embeddings
//   - Keyword scoring using term matches in title and content
//   - Structured filtering by project, content type, tags and activity
//
// The two signals are blended by a configurable semantic weight, results are
// ordered deterministically (score, then recency, then id), and pagination
// is applied after the full ranking so pages are stable for a fixed store.
// If the embedder is unreachable the searcher degrades to keyword-only
// scoring instead of failing the query.
package search
