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


// Package ai defines the embedding boundary of cortex.
//
// The search engine and the mutation pipeline depend only on the Embedder
// interface, so the concrete model is pluggable:
//
//   - ai/openai: OpenAI-compatible endpoints via langchaingo
//   - ai/mock: deterministic vectors for tests
//
// Embedding failure is modeled as a non-fatal condition
// (ErrEmbeddingUnavailable): items are stored vector-less and queries
// degrade to keyword scoring rather than failing or hanging.
package ai
