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


// Package reembed back-fills and repairs item embeddings.
//
// Items end up without a current vector when the embedder was unavailable
// during ingestion, or when content changed and re-embedding failed. The
// Reembedder scans the store for such items, embeds them in batches with
// exponential-backoff retry, and writes the vectors back together with
// their content fingerprints. Progress is reported to an io.Writer.
package reembed
