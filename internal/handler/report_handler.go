package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stratushr/stratus-backend/internal/response"
	"github.com/stratushr/stratus-backend/internal/service"
)

const (
	refreshInterval   = 5 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// ReportHandler streams live exam progress to the HR back office.
type ReportHandler struct {
	examService    *service.ExamService
	attemptService *service.AttemptService
	reportService  *service.ReportService
	log            zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	examService *service.ExamService,
	attemptService *service.AttemptService,
	reportService *service.ReportService,
	log zerolog.Logger,
) *ReportHandler {
	return &ReportHandler{
		examService:    examService,
		attemptService: attemptService,
		reportService:  reportService,
		log:            log.With().Str("component", "report_handler").Logger(),
	}
}

// MonitorExamSSE godoc
// GET /api/v1/admin/exams/:id/monitor
// Streams a snapshot of every attempt followed by periodic progress
// refreshes over SSE.
func (h *ReportHandler) MonitorExamSSE(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.sendInitialSnapshot(c, reqCtx, exam.ID, exam.Title, exam.DurationMinutes)

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Str("exam_id", examID.String()).Msg("Admin attached to live monitor SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("exam_id", examID.String()).Msg("Admin disconnected from live monitor SSE")
			return

		case <-refreshTicker.C:
			h.sendRefresh(c, reqCtx, examID)

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendInitialSnapshot gathers attempt rows plus live counters and writes the
// first SSE event.
func (h *ReportHandler) sendInitialSnapshot(c *gin.Context, ctx context.Context, examID uuid.UUID, title string, durationMinutes int) {
	results, total, err := h.attemptService.GetExamResults(ctx, examID, 1, 1000, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to build initial monitor snapshot")
		results = nil
	}

	totalInProgress := 0
	totalCompleted := 0

	attempts := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		switch res.Status {
		case "IN_PROGRESS":
			totalInProgress++
		case "COMPLETED":
			totalCompleted++
		}

		var score float64
		if res.FinalScore != nil {
			score = *res.FinalScore
		}

		attempts = append(attempts, map[string]interface{}{
			"employee_id":     res.EmployeeID,
			"name":            res.Name,
			"employee_no":     res.EmployeeNo,
			"department_name": res.DepartmentName,
			"status":          res.Status,
			"score":           score,
			"started_at":      res.StartedAt,
			"answered_count":  int64(0),
			"violation_count": int64(0),
		})
	}

	var totalViolations int64
	fetchCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	if progress, err := h.reportService.GetExamProgress(fetchCtx, examID); err == nil {
		totalViolations = progress.TotalViolations
		for i, a := range attempts {
			eid, ok := a["employee_id"].(int)
			if !ok {
				continue
			}
			if count, found := progress.AnsweredCounts[eid]; found {
				attempts[i]["answered_count"] = count
			}
			if count, found := progress.ViolationCounts[eid]; found {
				attempts[i]["violation_count"] = count
			}
		}
	}

	c.SSEvent("message", map[string]interface{}{
		"type": "snapshot",
		"data": map[string]interface{}{
			"exam": map[string]interface{}{
				"id":       examID.String(),
				"title":    title,
				"duration": durationMinutes,
			},
			"stats": map[string]interface{}{
				"total_attempts":    total,
				"total_in_progress": totalInProgress,
				"total_completed":   totalCompleted,
				"total_violations":  totalViolations,
			},
			"attempts": attempts,
		},
	})
	c.Writer.Flush()
}

// sendRefresh polls DB+Redis for current progress and sends a compact
// refresh event.
func (h *ReportHandler) sendRefresh(c *gin.Context, parentCtx context.Context, examID uuid.UUID) {
	ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
	defer cancel()

	progress, err := h.reportService.GetExamProgress(ctx, examID)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to fetch exam progress for refresh")
		return
	}

	progressData := make([]map[string]interface{}, 0, len(progress.AnsweredCounts)+len(progress.ViolationCounts))

	for eid, answered := range progress.AnsweredCounts {
		progressData = append(progressData, map[string]interface{}{
			"employee_id":     eid,
			"answered_count":  answered,
			"violation_count": progress.ViolationCounts[eid], // 0 if missing
		})
		delete(progress.ViolationCounts, eid) // mark as handled
	}

	// Remaining violation-only rows (already submitted, not in-progress).
	for eid, violations := range progress.ViolationCounts {
		progressData = append(progressData, map[string]interface{}{
			"employee_id":     eid,
			"answered_count":  int64(0),
			"violation_count": violations,
		})
	}

	c.SSEvent("message", map[string]interface{}{
		"type":             "refresh",
		"in_progress":      progress.InProgress,
		"total_violations": progress.TotalViolations,
		"attempts":         progressData,
	})
	c.Writer.Flush()
}
