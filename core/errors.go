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
	// ErrInvalidInput indicates an empty or malformed key or parameter.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidAsset indicates an Asset failed validation.
	ErrInvalidAsset = errors.New("invalid asset")

	// ErrEmptyURI indicates the URI field is empty.
	ErrEmptyURI = errors.New("asset uri cannot be empty")

	// ErrInvalidAssetKind indicates an invalid AssetKind value.
	ErrInvalidAssetKind = errors.New("invalid asset kind")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrNegativeByteSize indicates a negative ByteSize value.
	ErrNegativeByteSize = errors.New("byte size cannot be negative")
)
