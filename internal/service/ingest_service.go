package service

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"fabtrack/internal/domain/parts"
	"fabtrack/internal/domain/workspaces"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const DefaultIngestConcurrency = 4

type IngestStatus string

const (
	IngestCreated   IngestStatus = "created"
	IngestSkipped   IngestStatus = "skipped"
	IngestFailed    IngestStatus = "failed"
	IngestAbandoned IngestStatus = "abandoned"
)

// IngestFile is one input of a batch. Open is called at most once.
type IngestFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// IngestPath describes a file on local disk.
func IngestPath(path string) (IngestFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return IngestFile{}, err
	}
	return IngestFile{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

type IngestRequest struct {
	// WorkspaceID may be empty; the default workspace is used then.
	WorkspaceID string
	UploadedBy  string
	Files       []IngestFile
	// StopOnError abandons files not yet started after the first failure.
	StopOnError bool
}

type IngestResult struct {
	FileName string            `json:"file_name"`
	Status   IngestStatus      `json:"status"`
	Stage    parts.UploadStage `json:"stage,omitempty"`
	Part     *parts.Part       `json:"part,omitempty"`
	Revision *parts.Revision   `json:"revision,omitempty"`
	Error    string            `json:"error,omitempty"`
	err      error
}

// Err is the failure behind a failed result.
func (r IngestResult) Err() error { return r.err }

type IngestService struct {
	workspaces  *WorkspaceService
	parts       *PartService
	revisions   *RevisionService
	concurrency int
}

func NewIngestService(ws *WorkspaceService, ps *PartService, rs *RevisionService, concurrency int) *IngestService {
	if concurrency <= 0 {
		concurrency = DefaultIngestConcurrency
	}
	return &IngestService{workspaces: ws, parts: ps, revisions: rs, concurrency: concurrency}
}

func (s *IngestService) resolveWorkspace(ctx context.Context, id string) (*workspaces.Workspace, error) {
	if id != "" {
		return s.workspaces.Get(ctx, id)
	}
	return s.workspaces.Default(ctx)
}

// Ingest turns every file into a new part with the file as revision 1. Results
// follow input order. The returned error is only set when the batch could not
// start or ctx was cancelled; per-file failures are reported in the results.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) ([]IngestResult, error) {
	ws, err := s.resolveWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	results := make([]IngestResult, len(req.Files))
	for i, f := range req.Files {
		results[i] = IngestResult{FileName: f.Name, Status: IngestAbandoned}
	}

	// runCtx only gates starting new files; a file that has started finishes
	// on ctx.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, f := range req.Files {
		if runCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if runCtx.Err() != nil {
				return nil
			}
			res := s.ingestOne(ctx, ws.ID, req.UploadedBy, f)
			results[i] = res
			if res.Status == IngestFailed && req.StopOnError {
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait()

	counts := map[IngestStatus]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	log.Ctx(ctx).Info().
		Str("workspace_id", ws.ID).
		Int("files", len(results)).
		Int("created", counts[IngestCreated]).
		Int("skipped", counts[IngestSkipped]).
		Int("failed", counts[IngestFailed]).
		Int("abandoned", counts[IngestAbandoned]).
		Msg("ingest finished")

	return results, ctx.Err()
}

func (s *IngestService) ingestOne(ctx context.Context, workspaceID, uploadedBy string, f IngestFile) IngestResult {
	res := IngestResult{FileName: f.Name, Stage: ClassifyStage(f.Name)}
	fail := func(err error) IngestResult {
		res.Status = IngestFailed
		res.Error = err.Error()
		res.err = err
		res.Part = nil
		res.Revision = nil
		log.Ctx(ctx).Warn().Err(err).Str("file", f.Name).Msg("ingest failed")
		return res
	}

	if f.Size == 0 || f.Open == nil {
		res.Status = IngestSkipped
		return res
	}

	rc, err := f.Open()
	if err != nil {
		return fail(err)
	}
	defer rc.Close()

	part, err := s.parts.Create(ctx, CreatePartInput{
		PartName:    PartNameFromFile(f.Name),
		WorkspaceID: workspaceID,
	})
	if err != nil {
		return fail(err)
	}
	res.Part = part

	rev, err := s.revisions.UploadRevision(ctx, part.ID, FileUpload{
		FileName:   f.Name,
		Size:       f.Size,
		Body:       rc,
		UploadedBy: uploadedBy,
	})
	if err != nil {
		if delErr := s.parts.Delete(context.WithoutCancel(ctx), part.ID); delErr != nil {
			log.Ctx(ctx).Error().Err(delErr).Str("part_id", part.ID).Msg("failed to remove part after ingest failure")
		}
		return fail(err)
	}

	res.Status = IngestCreated
	res.Revision = rev
	return res
}
