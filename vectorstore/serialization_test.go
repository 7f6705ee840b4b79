package vectorstore

import (
	"testing"

	"github.com/poiesic/assetmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSerialization_RoundTrip(t *testing.T) {
	record := &core.EmbeddingRecord{
		ContentID: "7f9c2ba4-e88f-11d1-8f4e-3a1b2c4d5e6f",
		Vector:    []float32{0.25, -0.5, 0.75, 1.0},
		Metadata: map[string]string{
			core.MetaFilename: "input_001.png",
			core.MetaKind:     string(core.AssetKindSource),
		},
	}

	data := MarshalRecord(record)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalRecord(data)
	require.NoError(t, err)

	assert.Equal(t, record.ContentID, decoded.ContentID)
	assert.Equal(t, record.Vector, decoded.Vector)
	assert.Equal(t, record.Metadata, decoded.Metadata)
}

func TestRecordSerialization_EmptyMetadata(t *testing.T) {
	record := &core.EmbeddingRecord{
		ContentID: "7f9c2ba4-e88f-11d1-8f4e-3a1b2c4d5e6f",
		Vector:    []float32{1, 2, 3},
	}

	decoded, err := UnmarshalRecord(MarshalRecord(record))
	require.NoError(t, err)

	assert.Equal(t, record.ContentID, decoded.ContentID)
	assert.Equal(t, record.Vector, decoded.Vector)
	assert.Empty(t, decoded.Metadata)
}

func TestRecordSerialization_TruncatedData(t *testing.T) {
	record := &core.EmbeddingRecord{
		ContentID: "7f9c2ba4-e88f-11d1-8f4e-3a1b2c4d5e6f",
		Vector:    []float32{0.1, 0.2, 0.3},
		Metadata:  map[string]string{"kind": "source"},
	}

	data := MarshalRecord(record)

	_, err := UnmarshalRecord(data[:len(data)/2])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
