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


// Package ingestion provides the mutation pipeline for context items and
// projects.
//
// Single-item writes (Create, Update, SoftDelete) embed synchronously under
// a bounded timeout so a stored item's vector is current on return. Batch
// ingestion stores items vector-less first and refreshes embeddings on a
// worker pool, so a slow embedder never blocks bulk writes.
//
// Embedding failure is never fatal to a mutation: items are stored without
// a vector and remain searchable by keywords until re-embedded.
package ingestion
