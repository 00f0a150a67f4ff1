package remote

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/insightdelivered/txn-ingest/internal/models"
)

// Classifier is the work a Queue schedules. *Client implements it.
type Classifier interface {
	Classify(ctx context.Context, text, currency string) ([]models.Entry, error)
}

// QueueConfig sizes a Queue.
type QueueConfig struct {
	Workers int
	Size    int
	RPS     float64 // requests per second across all workers; <= 0 means unlimited
}

// Ticket is a handle to one submitted classification.
type Ticket struct {
	ID string

	ctx      context.Context
	text     string
	currency string

	done    chan struct{}
	entries []models.Entry
	err     error
}

// Wait blocks until the job finished or ctx is done.
func (t *Ticket) Wait(ctx context.Context) ([]models.Entry, error) {
	select {
	case <-t.done:
		return t.entries, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Ticket) finish(entries []models.Entry, err error) {
	t.entries, t.err = entries, err
	close(t.done)
}

// Queue runs classifications on a fixed pool of workers. A shared rate
// limiter paces calls to the model so bursts wait instead of failing.
// It is safe for concurrent use.
type Queue struct {
	jobChan   chan *Ticket
	closeChan chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool

	classifier Classifier
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewQueue creates a queue and starts its workers.
func NewQueue(c Classifier, cfg QueueConfig, log zerolog.Logger) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Size < 0 {
		cfg.Size = 0
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}

	q := &Queue{
		jobChan:    make(chan *Ticket, cfg.Size),
		closeChan:  make(chan struct{}),
		classifier: c,
		limiter:    rate.NewLimiter(limit, 1),
		log:        log,
	}
	for i := 0; i < cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// Submit enqueues text for classification. It blocks while the queue is
// full, until ctx is done or the queue closes. The job runs under ctx.
func (q *Queue) Submit(ctx context.Context, text, currency string) (*Ticket, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, &Error{Code: ErrQueueClosed, Message: "queue is closed"}
	}

	t := &Ticket{
		ID:       uuid.New().String(),
		ctx:      ctx,
		text:     text,
		currency: currency,
		done:     make(chan struct{}),
	}

	select {
	case q.jobChan <- t:
		return t, nil
	case <-ctx.Done():
		return nil, &Error{Code: ErrQueueCancelled, Message: "submit cancelled", Cause: ctx.Err()}
	case <-q.closeChan:
		return nil, &Error{Code: ErrQueueClosed, Message: "queue is closed"}
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for t := range q.jobChan {
		if err := q.limiter.Wait(t.ctx); err != nil {
			t.finish(nil, &Error{Code: ErrQueueCancelled, Message: "job cancelled while waiting", Cause: err})
			continue
		}
		entries, err := q.classifier.Classify(t.ctx, t.text, t.currency)
		if err != nil {
			q.log.Warn().Err(err).Str("ticket", t.ID).Int("worker", id).Msg("remote classify failed")
		} else {
			q.log.Debug().Str("ticket", t.ID).Int("entries", len(entries)).Msg("remote classify done")
		}
		t.finish(entries, err)
	}
}

// Close stops accepting work, lets the workers drain queued jobs and waits
// for them to exit. It is safe to call more than once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.closeChan)

		q.mu.Lock()
		q.closed = true
		close(q.jobChan)
		q.mu.Unlock()
	})
	q.wg.Wait()
}
