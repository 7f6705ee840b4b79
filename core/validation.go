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

import (
	"fmt"
	"strings"
	"time"
)

// ValidateAsset validates an Asset according to domain rules.
//
// Validation rules:
//   - URI must not be empty after trimming
//   - Kind must be a known AssetKind
//   - ByteSize must not be negative
//   - CreatedAt must not be in the future
//
// NOT validated:
//   - Filename (defaults to the URI basename downstream when empty)
func ValidateAsset(asset *Asset) error {
	if asset == nil {
		return fmt.Errorf("%w: asset is nil", ErrInvalidAsset)
	}

	if strings.TrimSpace(asset.URI) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, ErrEmptyURI)
	}

	if err := ValidateAssetKind(asset.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, err)
	}

	if asset.ByteSize < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, ErrNegativeByteSize)
	}

	if !IsValidTimestamp(asset.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateAssetKind validates that an AssetKind has a known value.
func ValidateAssetKind(kind AssetKind) error {
	switch kind {
	case AssetKindSource, AssetKindGenerated, AssetKindReference:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidAssetKind, kind)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
