package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/xbrlgest/internal/store"
)

// Worker processes a single filing job: one synchronous ingest, then one
// store write. There are no retries within a job; the caller re-uploads.
type Worker struct {
	ingestor *Ingestor
	store    store.Store
	log      *slog.Logger
}

func NewWorker(ingestor *Ingestor, st store.Store, log *slog.Logger) *Worker {
	return &Worker{ingestor: ingestor, store: st, log: log}
}

// Process runs the full pipeline for a job. The job's upload bytes are
// released on every exit path.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	defer job.ReleaseFileData()

	job.SetStatus(StatusParsing)
	res, err := w.ingestor.Ingest(job.FileData(), job.Filename)
	if err != nil {
		var parseErr *ParseError
		switch {
		case errors.Is(err, ErrNoFacts):
			log.Warn("filing has no facts")
			job.Fail(StatusNoFacts, err.Error())
		case errors.As(err, &parseErr):
			log.Error("parse failed", "error", err)
			job.Fail(StatusFailed, err.Error())
		default:
			log.Error("ingest failed", "error", err)
			job.Fail(StatusFailed, err.Error())
		}
		return
	}

	job.SetStatus(StatusStoring)
	filingID, err := w.store.SaveFiling(ctx, job.Filename, res)
	if err != nil {
		log.Error("store failed", "error", err)
		job.Fail(StatusFailed, "store: "+err.Error())
		return
	}

	job.Complete(filingID, res.Taxonomy, res.Version, len(res.Facts))
	log.Info("filing ingested",
		"filing_id", filingID,
		"taxonomy", res.Taxonomy,
		"version", res.Version,
		"facts", len(res.Facts),
	)
}
