package pairing

import (
	"github.com/poiesic/assetmatch/core"
	"github.com/poiesic/assetmatch/vectorstore"
)

// PairMonitor provides hooks to observe the pairing process.
// Implement this interface to track intermediate steps and scores during pairing.
type PairMonitor interface {
	Start(sourceID core.ContentID)
	AfterCandidateSearch(hits []vectorstore.ScoredRecord)
	CandidateScored(id core.ContentID, embedding, filename, metadata, final float64)
	CandidateDiscarded(id core.ContentID, finalScore float64)
	Finish(pair *core.Pair)
}

// noopMonitor is a no-op implementation of PairMonitor
type noopMonitor struct{}

var _ PairMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.ContentID)                              {}
func (n *noopMonitor) AfterCandidateSearch(_ []vectorstore.ScoredRecord)   {}
func (n *noopMonitor) CandidateScored(_ core.ContentID, _, _, _, _ float64) {}
func (n *noopMonitor) CandidateDiscarded(_ core.ContentID, _ float64)      {}
func (n *noopMonitor) Finish(_ *core.Pair)                                 {}
