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

package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a nil vector store is provided.
	ErrStoreRequired = errors.New("vector store is required")

	// ErrProviderRequired is returned when a nil AI provider is provided.
	ErrProviderRequired = errors.New("AI provider is required")

	// ErrMaterializerRequired is returned when a nil materializer is provided.
	ErrMaterializerRequired = errors.New("materializer is required")

	// ErrCanceled marks assets that were never dispatched because the
	// batch was canceled before they were submitted.
	ErrCanceled = errors.New("ingestion canceled before dispatch")
)
