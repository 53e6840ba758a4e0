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


// Package storage provides the storage abstraction layer for qabase.
//
// It defines the EntryRepository contract that decouples the retrieval
// engine from the concrete vector store, plus the binary serialization
// used to persist entries. The storage/badger subpackage provides the
// directory-backed implementation; tests use its in-memory constructor.
//
// Public constructors in implementation packages return the
// storage.EntryRepository interface so consumers never couple to a
// specific backend. All implementations must be safe for concurrent
// reads; concurrent mutating operations against the same collection are
// serialized by callers (see retrieval.Retriever).
package storage
