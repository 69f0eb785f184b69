// Package service holds the parts tracker's business operations. Every
// component receives its storage through its constructor.
package service

import (
	"fabtrack/internal/cache"
	"fabtrack/internal/filestore"
	"fabtrack/internal/store"
)

type Services struct {
	Sequence   *SequenceAllocator
	Workspaces *WorkspaceService
	Projects   *ProjectService
	Parts      *PartService
	Revisions  *RevisionService
	History    *HistoryService
	Ingest     *IngestService
}

func NewServices(st *store.Store, files filestore.FileStore, trees cache.TreeCache, ingestConcurrency int) *Services {
	if trees == nil {
		trees = cache.Noop{}
	}
	seq := NewSequenceAllocator(st)
	history := NewHistoryService(st)
	ws := NewWorkspaceService(st, trees)
	pr := NewProjectService(st, trees)
	ps := NewPartService(st, seq, history, files, trees)
	rs := NewRevisionService(st, files)

	return &Services{
		Sequence:   seq,
		Workspaces: ws,
		Projects:   pr,
		Parts:      ps,
		Revisions:  rs,
		History:    history,
		Ingest:     NewIngestService(ws, ps, rs, ingestConcurrency),
	}
}
