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


package core

import "errors"

// Domain validation errors
var (
	// ErrNoRecords indicates a year resolved to zero usable records.
	ErrNoRecords = errors.New("no records found")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrInvalidDupCount indicates DupCount is below 1.
	ErrInvalidDupCount = errors.New("dup count must be at least 1")

	// ErrRowMismatch indicates a parallel array diverged from the record count.
	ErrRowMismatch = errors.New("row count does not match record count")
)
