package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stratushr/stratus-backend/internal/config"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker consumes graded submissions from the persist queue and
// finalizes the matching exam_attempts rows in bulk.
type ResultWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "result_worker").Logger(),
	}
}

type resultPayload struct {
	EmployeeID int     `json:"employee_id"`
	ExamID     string  `json:"exam_id"`
	Score      float64 `json:"score"`
	Passed     bool    `json:"passed"`
	Reason     string  `json:"reason"`
}

// Start begins the batching worker loop. Call in a goroutine.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	batch := make([]*resultPayload, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p resultPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*resultPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkCompleteAttempts(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("Bulk result update failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("Single result update failed, requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
		return
	}

	// Finalized attempts no longer need their autosave hashes.
	w.bulkClearAutosavedAnswers(ctx, batch)
}

// bulkCompleteAttempts finalizes a whole batch with one UNNEST update. Only
// IN_PROGRESS rows transition, so a stale duplicate in the queue cannot
// overwrite a recorded result.
func (w *ResultWorker) bulkCompleteAttempts(ctx context.Context, batch []*resultPayload) error {
	n := len(batch)

	examIDs := make([]uuid.UUID, 0, n)
	employees := make([]int, 0, n)
	scores := make([]float64, 0, n)
	passes := make([]bool, 0, n)
	reasons := make([]string, 0, n)
	finishedAts := make([]time.Time, n)

	now := time.Now()
	for i, p := range batch {
		eID, err := uuid.Parse(p.ExamID)
		if err != nil {
			return err
		}
		examIDs = append(examIDs, eID)
		employees = append(employees, p.EmployeeID)
		scores = append(scores, p.Score)
		passes = append(passes, p.Passed)
		reasons = append(reasons, p.Reason)
		finishedAts[i] = now
	}

	query := `
		UPDATE exam_attempts AS a
		SET status = 'COMPLETED',
		    final_score = t.score,
		    passed = t.passed,
		    submit_reason = t.reason,
		    finished_at = t.finished_at
		FROM (
			SELECT
				u.exam_id,
				u.employee_id,
				u.score,
				u.passed,
				u.reason,
				u.finished_at
			FROM UNNEST(
				$1::uuid[],
				$2::int[],
				$3::float8[],
				$4::bool[],
				$5::varchar[],
				$6::timestamptz[]
			) AS u (exam_id, employee_id, score, passed, reason, finished_at)
		) AS t
		WHERE a.exam_id = t.exam_id
		  AND a.employee_id = t.employee_id
		  AND a.status = 'IN_PROGRESS'
	`

	_, err := w.pool.Exec(ctx, query, examIDs, employees, scores, passes, reasons, finishedAts)
	return err
}

func (w *ResultWorker) bulkClearAutosavedAnswers(ctx context.Context, batch []*resultPayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range batch {
		pipe.Del(ctx, config.CacheKey.EmployeeAnswersKey(p.ExamID, p.EmployeeID))
	}
	_, _ = pipe.Exec(ctx)
}

func (w *ResultWorker) persistSingle(ctx context.Context, p *resultPayload) error {
	eID, err := uuid.Parse(p.ExamID)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`UPDATE exam_attempts
		 SET status = 'COMPLETED',
		     final_score = $1,
		     passed = $2,
		     submit_reason = $3,
		     finished_at = NOW()
		 WHERE exam_id = $4 AND employee_id = $5 AND status = 'IN_PROGRESS'`,
		p.Score, p.Passed, p.Reason, eID, p.EmployeeID,
	)
	return err
}
