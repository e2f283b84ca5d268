package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/scrypster/lifegraph/internal/llm"
	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
)

// TaggingJob is one unit of async AI work for a memory: suggest tags and,
// when an embedding generator is configured, store an embedding.
type TaggingJob struct {
	MemoryID string
	Content  string
	Attempt  int
}

// TaggingWorkerConfig tunes the background worker pool.
type TaggingWorkerConfig struct {
	NumWorkers      int           // default: 2
	QueueSize       int           // default: 100
	MaxRetries      int           // default: 3
	ShutdownTimeout time.Duration // default: 10s
}

// TaggingWorker runs tag suggestion and embedding generation off the request
// path. Memory writes return immediately with tagging_status=pending; workers
// pick up the job and record the outcome on the memory row.
type TaggingWorker struct {
	memories   storage.MemoryStore
	embeddings storage.EmbeddingProvider

	generator llm.TextGenerator
	embedder  llm.EmbeddingGenerator

	config TaggingWorkerConfig
	queue  chan *TaggingJob
	wg     sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	// OnComplete is invoked after a job finishes (success or failure), for
	// pushing live updates to connected clients.
	OnComplete func(memoryID string, status types.TaggingStatus)
}

// NewTaggingWorker creates a worker pool. generator may be nil, in which case
// jobs are marked skipped; embedder may be nil to disable embeddings.
func NewTaggingWorker(memories storage.MemoryStore, embeddings storage.EmbeddingProvider,
	generator llm.TextGenerator, embedder llm.EmbeddingGenerator, config TaggingWorkerConfig) *TaggingWorker {

	if config.NumWorkers < 1 {
		config.NumWorkers = 2
	}
	if config.QueueSize < 1 {
		config.QueueSize = 100
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 3
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	return &TaggingWorker{
		memories:   memories,
		embeddings: embeddings,
		generator:  generator,
		embedder:   embedder,
		config:     config,
		queue:      make(chan *TaggingJob, config.QueueSize),
	}
}

// Start launches the worker goroutines.
func (w *TaggingWorker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	for i := 0; i < w.config.NumWorkers; i++ {
		w.wg.Add(1)
		go w.run(i)
	}
	log.Printf("started %d tagging workers (queue=%d)", w.config.NumWorkers, w.config.QueueSize)
}

// Stop drains the queue and waits for workers, up to ShutdownTimeout.
func (w *TaggingWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	close(w.queue)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("tagging workers stopped")
	case <-time.After(w.config.ShutdownTimeout):
		log.Printf("WARNING: shutdown timeout, %d tagging jobs dropped", len(w.queue))
	}
}

// Enqueue queues a memory for tagging. Non-blocking: when the queue is full
// the job is dropped and the memory stays pending, to be retried on the next
// edit rather than stalling the request.
func (w *TaggingWorker) Enqueue(memoryID, content string) bool {
	if w.ctx != nil && w.ctx.Err() != nil {
		return false
	}
	select {
	case w.queue <- &TaggingJob{MemoryID: memoryID, Content: content}:
		return true
	default:
		log.Printf("WARNING: tagging queue full, dropping job for memory %s", memoryID)
		return false
	}
}

// QueueLength reports the number of waiting jobs, for the stats endpoint.
func (w *TaggingWorker) QueueLength() int {
	return len(w.queue)
}

func (w *TaggingWorker) run(workerID int) {
	defer w.wg.Done()
	for job := range w.queue {
		w.process(workerID, job)
	}
}

func (w *TaggingWorker) process(workerID int, job *TaggingJob) {
	// Database writes use a background context so in-flight jobs finish their
	// bookkeeping during shutdown.
	dbCtx := context.Background()

	if job.Attempt > 0 {
		// 100ms, 400ms, 900ms...
		time.Sleep(time.Duration(job.Attempt*job.Attempt) * 100 * time.Millisecond)
	}

	if w.generator == nil {
		w.finish(dbCtx, job.MemoryID, types.TaggingSkipped, nil, "")
		return
	}

	if err := w.memories.UpdateTagging(dbCtx, job.MemoryID, types.TaggingProcessing, nil, ""); err != nil {
		// Memory may have been deleted while queued.
		log.Printf("worker %d: mark processing %s: %v", workerID, job.MemoryID, err)
		return
	}

	tags, err := w.suggestTags(job.Content)
	if err != nil {
		log.Printf("worker %d: tag suggestion failed for %s: %v", workerID, job.MemoryID, err)
		if w.requeue(job) {
			return
		}
		w.finish(dbCtx, job.MemoryID, types.TaggingFailed, nil, err.Error())
		return
	}

	if w.embedder != nil && w.embeddings != nil {
		if err := w.generateEmbedding(job.MemoryID, job.Content); err != nil {
			// Embeddings are best-effort; tags still land.
			log.Printf("worker %d: embedding failed for %s: %v", workerID, job.MemoryID, err)
		}
	}

	w.finish(dbCtx, job.MemoryID, types.TaggingCompleted, tags, "")
}

func (w *TaggingWorker) suggestTags(content string) ([]string, error) {
	ctx, cancel := context.WithTimeout(w.workerContext(), 60*time.Second)
	defer cancel()

	raw, err := w.generator.Complete(ctx, llm.TagSuggestionPrompt(content, nil))
	if err != nil {
		return nil, err
	}
	return llm.ParseTagsResponse(raw)
}

func (w *TaggingWorker) generateEmbedding(memoryID, content string) error {
	ctx, cancel := context.WithTimeout(w.workerContext(), 60*time.Second)
	defer cancel()

	vec, err := w.embedder.Embed(ctx, content)
	if err != nil {
		return err
	}
	return w.embeddings.StoreEmbedding(context.Background(), memoryID, vec, w.embedder.GetModel())
}

func (w *TaggingWorker) finish(ctx context.Context, memoryID string, status types.TaggingStatus, tags []string, errMsg string) {
	if err := w.memories.UpdateTagging(ctx, memoryID, status, tags, errMsg); err != nil {
		log.Printf("WARNING: record tagging outcome for %s: %v", memoryID, err)
	}
	if w.OnComplete != nil {
		w.OnComplete(memoryID, status)
	}
}

// requeue puts a failed job back on the queue with an incremented attempt
// counter. Returns false when retries are exhausted or the pool is stopping.
func (w *TaggingWorker) requeue(job *TaggingJob) bool {
	if w.ctx != nil && w.ctx.Err() != nil {
		return false
	}
	if job.Attempt >= w.config.MaxRetries-1 {
		return false
	}
	job.Attempt++
	select {
	case w.queue <- job:
		return true
	case <-time.After(10 * time.Millisecond):
		return false
	}
}

func (w *TaggingWorker) workerContext() context.Context {
	if w.ctx != nil {
		return w.ctx
	}
	return context.Background()
}
