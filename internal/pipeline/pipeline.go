// Package pipeline runs the document ingestion state machine: metadata
// extraction, type routing, content staging, processing, and write-out,
// with guaranteed release of the staging resource on every exit path.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/processor"
	"github.com/dgallion1/docchunk/internal/staging"
	"github.com/dgallion1/docchunk/internal/writer"
)

// State identifies a stage of the pipeline.
type State string

const (
	StateStart           State = "START"
	StateExtractMetadata State = "EXTRACT_METADATA"
	StateRoute           State = "ROUTE"
	StateStageContent    State = "STAGE_CONTENT"
	StateProcess         State = "PROCESS"
	StateWriteOutput     State = "WRITE_OUTPUT"
	StateDone            State = "DONE"
	StateFailed          State = "FAILED"
)

// nextState is the pure transition function: the linear stage order on
// success, FAILED from any state on failure. DONE and FAILED are terminal.
func nextState(s State, failed bool) State {
	if failed {
		return StateFailed
	}
	switch s {
	case StateStart:
		return StateExtractMetadata
	case StateExtractMetadata:
		return StateRoute
	case StateRoute:
		return StateStageContent
	case StateStageContent:
		return StateProcess
	case StateProcess:
		return StateWriteOutput
	case StateWriteOutput:
		return StateDone
	}
	return s
}

// Input is the pipeline entry contract: raw bytes, a name, and optional
// caller context.
type Input struct {
	DocumentName string
	Content      []byte
	Context      document.Context
}

// Pipeline processes one document per Run invocation. Independent
// invocations share no mutable state and may run concurrently.
type Pipeline struct {
	registry *processor.Registry
	writer   *writer.Writer
	log      *slog.Logger
	newID    func() string
}

func New(registry *processor.Registry, w *writer.Writer, log *slog.Logger) *Pipeline {
	return &Pipeline{
		registry: registry,
		writer:   w,
		log:      log,
		newID:    uuid.NewString,
	}
}

// Run executes the state machine synchronously. The document id is
// generated once per run and never changes. Cancellation is honored up to
// the moment WRITE_OUTPUT begins; after that the run completes or fails
// on its own terms and any partial writes are the caller's to reconcile.
func (p *Pipeline) Run(ctx context.Context, in Input) (document.Summary, error) {
	docID := p.newID()
	log := p.log.With("document_name", in.DocumentName, "document_id", docID)

	var (
		meta      document.Metadata
		proc      processor.Processor
		staged    *staging.Staged
		processed *document.Processed
		runErr    *Error
	)
	defer func() {
		if staged != nil {
			staged.Release()
		}
	}()

	state := StateStart
	for state != StateDone && state != StateFailed {
		state = nextState(state, runErr != nil)

		switch state {
		case StateExtractMetadata:
			m, err := p.registry.ExtractMetadata(in.DocumentName, int64(len(in.Content)), in.Context)
			if err != nil {
				runErr = &Error{Kind: ErrUnsupportedDocumentKind, State: state, Err: err}
				continue
			}
			meta = m

		case StateRoute:
			pr, err := p.registry.ForKind(meta.Kind)
			if err != nil {
				// Unreachable for metadata produced by this registry;
				// terminal if it ever fires, never a silent default.
				runErr = &Error{Kind: ErrUnsupportedDocumentKind, State: state, Err: err}
				continue
			}
			proc = pr

		case StateStageContent:
			if err := ctx.Err(); err != nil {
				runErr = &Error{Kind: ErrCanceled, State: state, Err: err}
				continue
			}
			s, err := staging.Stage(in.Content, processor.Suffix(in.DocumentName))
			if err != nil {
				runErr = &Error{Kind: ErrResourceAcquisition, State: state, Err: err}
				continue
			}
			staged = s

		case StateProcess:
			doc, err := processor.Process(proc, staged, meta, docID)
			if err != nil {
				runErr = &Error{Kind: ErrContentParse, State: state, Err: err}
				continue
			}
			processed = doc

		case StateWriteOutput:
			if err := ctx.Err(); err != nil {
				runErr = &Error{Kind: ErrCanceled, State: state, Err: err}
				continue
			}
			result, err := p.writer.Write(ctx, processed)
			if err != nil {
				runErr = &Error{Kind: ErrPersistence, State: state, Err: err, Partial: result}
				continue
			}
		}
	}

	if runErr != nil {
		log.Error("pipeline failed",
			"state", string(runErr.State),
			"kind", string(runErr.Kind),
			"error", runErr.Err,
		)
		return document.Summary{}, runErr
	}

	summary := document.Summary{
		DocumentID:  docID,
		TotalPages:  processed.TotalPages,
		TotalChunks: processed.TotalChunks,
	}
	log.Info("pipeline complete",
		"total_pages", summary.TotalPages,
		"total_chunks", summary.TotalChunks,
	)
	return summary, nil
}
