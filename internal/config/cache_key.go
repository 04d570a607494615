package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// EmployeeSessionKey returns the cache key for an employee's login session.
func (r *CacheKeyStruct) EmployeeSessionKey(employeeID int) string {
	return fmt.Sprintf("login:%d", employeeID)
}

// AttemptSnapshotKey returns the cache key for an attempt's progress snapshot.
// This is the only externally visible artifact the session controller writes
// outside of collaborator calls.
func (r *CacheKeyStruct) AttemptSnapshotKey(employeeID int, examID string) string {
	return fmt.Sprintf("exam-progress-%d-%s", employeeID, examID)
}

// AttemptStartKey returns the cache key for an attempt's wall-clock start time.
func (r *CacheKeyStruct) AttemptStartKey(examID string, employeeID int) string {
	return fmt.Sprintf("employee:%d:exam:%s:attempt_start", employeeID, examID)
}

// EmployeeAnswersKey returns the cache key for an employee's autosaved answers.
func (r *CacheKeyStruct) EmployeeAnswersKey(examID string, employeeID int) string {
	return fmt.Sprintf("employee:%d:exam:%s:answers", employeeID, examID)
}

// ExamPaperKey returns the cache key for an exam's candidate-facing paper.
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// ExamAnswerKey returns the cache key for an exam's answer key hash.
func (r *CacheKeyStruct) ExamAnswerKey(examID string) string {
	return fmt.Sprintf("exam:%s:key", examID)
}

// ExamDurationKey returns the cache key for an exam's duration in minutes.
func (r *CacheKeyStruct) ExamDurationKey(examID string) string {
	return fmt.Sprintf("exam:%s:duration", examID)
}

// ExamMonitorChannel returns the Redis PubSub channel name for an exam monitor.
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

var CacheKey = NewCacheKeyStruct()
