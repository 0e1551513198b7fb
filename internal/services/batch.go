package services

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"genstudio/config"
	"genstudio/internal/generator"
	"genstudio/internal/request"
	"genstudio/types"
)

// BatchJob is one queued prompt of a batch. Exactly one of Image and Video is set.
type BatchJob struct {
	BatchID  string
	ClientID string
	Image    *generator.ImageJob
	Video    *generator.VideoJob
}

func (j BatchJob) mode() request.Mode {
	if j.Video != nil {
		return request.ModeVideo
	}
	return request.ModeImage
}

func (j BatchJob) recordID() int64 {
	if j.Video != nil {
		return j.Video.RecordID
	}
	return j.Image.RecordID
}

var (
	ErrBatchShuttingDown = errors.New("service shutting down")
	ErrBatchQueueFull    = errors.New("queue full")
)

// BatchService generates queued batch items on a bounded pool and pushes
// one completion or failure event per item to the submitting client.
type BatchService struct {
	hub   *Hub
	media *Media

	queue chan BatchJob
	group errgroup.Group
	done  chan struct{}

	mu      sync.RWMutex
	closing bool
	running bool
	ctx     context.Context
	logger  *log.Logger
}

func NewBatchService(ctx context.Context, hub *Hub, media *Media, config config.BatchConfig) *BatchService {
	s := &BatchService{
		hub:    hub,
		media:  media,
		queue:  make(chan BatchJob, config.QueueSize),
		done:   make(chan struct{}),
		ctx:    ctx,
		logger: log.With("component", "batch"),
	}
	s.group.SetLimit(config.MaxConcurrent)
	return s
}

// Run dispatches queued jobs until the queue is closed by Shutdown. Jobs
// still queued once ctx is done are failed instead of generated.
func (b *BatchService) Run() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	go func() {
		defer close(b.done)
		for job := range b.queue {
			b.group.Go(func() error {
				b.runJob(job)
				return nil
			})
		}
	}()
}

func (b *BatchService) Enqueue(job BatchJob) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closing || b.ctx.Err() != nil {
		return ErrBatchShuttingDown
	}
	select {
	case b.queue <- job:
		return nil
	default:
		return ErrBatchQueueFull
	}
}

// Shutdown stops accepting jobs and waits until every queued job has been
// generated or failed.
func (b *BatchService) Shutdown() {
	b.mu.Lock()
	if !b.closing {
		b.closing = true
		close(b.queue)
	}
	running := b.running
	b.mu.Unlock()

	if running {
		<-b.done
	} else {
		for job := range b.queue {
			b.discard(job, ErrBatchShuttingDown)
		}
	}
	_ = b.group.Wait()
}

// discard fails the record of a job that will never be generated.
func (b *BatchService) discard(job BatchJob, cause error) {
	ctx := context.WithoutCancel(b.ctx)
	msg := "Error: " + cause.Error()

	var err error
	if job.Video != nil {
		err = b.media.store.FailVideo(ctx, job.Video.RecordID, msg)
	} else {
		err = b.media.store.FailImage(ctx, job.Image.RecordID, msg)
	}
	if err != nil {
		b.logger.Error("error failing batch item", "batchId", job.BatchID, "itemId", job.recordID(), "err", err)
	}
}

func (b *BatchService) runJob(job BatchJob) {
	ev := types.JobEvent{
		BatchID: job.BatchID,
		ItemID:  job.recordID(),
		Mode:    string(job.mode()),
	}

	if b.ctx.Err() != nil {
		b.discard(job, ErrBatchShuttingDown)
		ev.Type = types.EventGenerationFailed
		ev.Message = msgShuttingDown
		b.hub.SendTo(job.ClientID, ev)
		return
	}

	var (
		url string
		err error
	)
	if job.Video != nil {
		var v generator.Video
		v, err = b.media.Video(b.ctx, *job.Video)
		url = v.URL
	} else {
		var img generator.Image
		img, err = b.media.Image(b.ctx, *job.Image)
		url = img.URL
	}

	if err != nil {
		ev.Type = types.EventGenerationFailed
		ev.Message = publicMessage(err)
	} else {
		ev.Type = types.EventGenerationCompleted
		ev.URL = url
	}

	b.logger.Debug("batch item settled", "batchId", job.BatchID, "itemId", ev.ItemID, "type", ev.Type)
	b.hub.SendTo(job.ClientID, ev)
}

func publicMessage(err error) string {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Public
	}
	return msgUnexpected
}
