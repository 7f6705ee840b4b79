package ingestion

import (
	"sync"

	"github.com/poiesic/assetmatch/core"
)

// Stage identifies a step of the per-asset ingestion state machine.
type Stage string

const (
	StagePending       Stage = "pending"
	StageMaterializing Stage = "materializing"
	StageDescribing    Stage = "describing"
	StageEmbedding     Stage = "embedding"
	StageStoring       Stage = "storing"
)

// Failure records one asset that did not reach the store, the stage it
// failed at, and the cause.
type Failure struct {
	Asset  *core.Asset
	Stage  Stage
	Reason error
}

// Manifest aggregates the terminal outcome of every asset submitted to
// Ingest. Entries are appended in completion order, not submission order.
type Manifest struct {
	mu        sync.Mutex
	succeeded []core.ContentID
	failed    []Failure
}

func (m *Manifest) addSucceeded(id core.ContentID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.succeeded = append(m.succeeded, id)
}

func (m *Manifest) addFailed(asset *core.Asset, stage Stage, reason error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, Failure{Asset: asset, Stage: stage, Reason: reason})
}

// Succeeded returns the content ids of the assets stored by the batch.
func (m *Manifest) Succeeded() []core.ContentID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.ContentID, len(m.succeeded))
	copy(out, m.succeeded)
	return out
}

// Failed returns the per-asset failures recorded by the batch.
func (m *Manifest) Failed() []Failure {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Failure, len(m.failed))
	copy(out, m.failed)
	return out
}
