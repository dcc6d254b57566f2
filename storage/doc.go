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


// Package storage provides the artifact-store abstraction for topical.
//
// Every pipeline stage persists exactly one artifact (a matrix, a label
// array, or a JSON document) together with a metadata document describing
// the inputs that produced it. The store is the single durable hand-off
// point between runs: a stage never mutates an artifact in place, it only
// replaces it wholesale after the stage fully succeeds.
//
// The ArtifactStore interface decouples the pipeline from the backing
// database. The production implementation lives in storage/badger; tests
// use its in-memory mode.
//
// Public constructors return interface types to enforce abstraction:
//
//	store, err := badger.NewArtifactStore(path)  // returns storage.ArtifactStore
//
// Matrices and label arrays are encoded with compact MUS binary codecs
// (see serialization.go); metadata and summary documents are JSON.
package storage
