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


package vectorstore

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/assetmatch/core"
)

// MUS serializers for the embedding record fields. Field order is part of
// the on-disk format: content id, vector, metadata.
var (
	vectorSer   = ord.NewSliceSer[float32](varint.Float32)
	metadataSer = ord.NewMapSer[string, string](ord.String, ord.String)
)

// MarshalRecord serializes an EmbeddingRecord to bytes.
func MarshalRecord(record *core.EmbeddingRecord) []byte {
	id := string(record.ContentID)
	size := ord.String.Size(id) +
		vectorSer.Size(record.Vector) +
		metadataSer.Size(record.Metadata)

	buf := make([]byte, size)
	n := ord.String.Marshal(id, buf)
	n += vectorSer.Marshal(record.Vector, buf[n:])
	metadataSer.Marshal(record.Metadata, buf[n:])
	return buf
}

// UnmarshalRecord deserializes an EmbeddingRecord from bytes.
func UnmarshalRecord(data []byte) (*core.EmbeddingRecord, error) {
	id, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: content id: %w", ErrSerializationFailed, err)
	}

	vector, m, err := vectorSer.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %w", ErrSerializationFailed, err)
	}
	n += m

	metadata, _, err := metadataSer.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", ErrSerializationFailed, err)
	}

	return &core.EmbeddingRecord{
		ContentID: core.ContentID(id),
		Vector:    vector,
		Metadata:  metadata,
	}, nil
}
