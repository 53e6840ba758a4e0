// Copyright 2026 Qabase Authors
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


// Package ai provides abstractions for the embedding service used by qabase.
//
// It defines the Embedder and EmbeddingProvider interfaces so the
// retrieval engine depends on abstractions rather than a concrete API
// client. Two implementation sub-packages exist:
//
//   - ai/openai: production implementation against OpenAI-compatible APIs
//     (Ollama, LocalAI, vLLM, OpenAI)
//   - ai/mock: deterministic test doubles with injectable behavior
//
// Public constructors in ai/openai return interface types to enforce
// abstraction; the mock constructors return concrete types so tests can
// inject behavior and make assertions.
package ai
