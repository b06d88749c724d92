package search

import "github.com/poiesic/cortex/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(req *Request)
	AfterCandidateScan(candidates []*core.ContextItem)
	Degraded(err error)
	AfterScoring(scored []*core.ScoredItem)
	Finish(resp *Response)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *Request)                         {}
func (n *noopMonitor) AfterCandidateScan(_ []*core.ContextItem) {}
func (n *noopMonitor) Degraded(_ error)                         {}
func (n *noopMonitor) AfterScoring(_ []*core.ScoredItem)        {}
func (n *noopMonitor) Finish(_ *Response)                       {}
