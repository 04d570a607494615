package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stratushr/stratus-backend/internal/repository"
)

// ReportService orchestrates live exam monitoring business logic.
type ReportService struct {
	reportRepo *repository.ReportRepository
}

// NewReportService creates a new ReportService.
func NewReportService(reportRepo *repository.ReportRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

// ExamProgressSnapshot holds per-employee answered and violation counts for
// one exam at one instant.
type ExamProgressSnapshot struct {
	InProgress      []int         `json:"in_progress"`
	AnsweredCounts  map[int]int64 `json:"answered_counts"`
	ViolationCounts map[int]int64 `json:"violation_counts"`
	TotalViolations int64         `json:"total_violations"`
}

// GetExamProgress fetches the three independent progress signals in
// parallel. Answered counts are critical; violation counts are best-effort.
func (s *ReportService) GetExamProgress(ctx context.Context, examID uuid.UUID) (*ExamProgressSnapshot, error) {
	snapshot := &ExamProgressSnapshot{
		AnsweredCounts:  make(map[int]int64),
		ViolationCounts: make(map[int]int64),
	}

	var (
		inProgress      []int
		answeredCounts  map[int]int64
		violationCounts map[int]int64
		inProgressErr   error
		answeredErr     error
		violationErr    error
		wg              sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		inProgress, inProgressErr = s.reportRepo.GetInProgressEmployeeIDs(ctx, examID)
	}()
	go func() {
		defer wg.Done()
		answeredCounts, answeredErr = s.reportRepo.GetAnsweredCounts(ctx, examID)
	}()
	go func() {
		defer wg.Done()
		violationCounts, violationErr = s.reportRepo.GetViolationCounts(ctx, examID)
	}()
	wg.Wait()

	if inProgressErr != nil {
		return nil, inProgressErr
	}
	if answeredErr != nil {
		return nil, answeredErr
	}

	snapshot.InProgress = inProgress
	if answeredCounts != nil {
		snapshot.AnsweredCounts = answeredCounts
	}

	if violationErr == nil && violationCounts != nil {
		snapshot.ViolationCounts = violationCounts
		for _, count := range violationCounts {
			snapshot.TotalViolations += count
		}
	}

	return snapshot, nil
}
