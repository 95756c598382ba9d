/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package jobs

// ExecutionStats represents job execution statistics
type ExecutionStats struct {
	// RecordsProcessed is the number of records examined
	RecordsProcessed int64 `json:"records_processed,omitempty"`

	// ItemsDeleted is the number of items deleted
	ItemsDeleted int64 `json:"items_deleted,omitempty"`

	// ItemsSkipped is the number of items examined but left alone
	ItemsSkipped int64 `json:"items_skipped,omitempty"`

	// ErrorCount is the error count
	ErrorCount int64 `json:"error_count,omitempty"`

	// ProcessDuration is the processing duration in seconds
	ProcessDuration float64 `json:"process_duration,omitempty"`

	// Messages is the list of messages during execution
	Messages []string `json:"messages,omitempty"`
}

// NewExecutionStats creates a new execution statistics instance
func NewExecutionStats() *ExecutionStats {
	return &ExecutionStats{
		Messages: make([]string, 0),
	}
}

// AddMessage adds a message to the statistics
func (s *ExecutionStats) AddMessage(message string) {
	if s.Messages == nil {
		s.Messages = make([]string, 0)
	}
	s.Messages = append(s.Messages, message)
}

// Merge merges data from another ExecutionStats
func (s *ExecutionStats) Merge(other *ExecutionStats) {
	if other == nil {
		return
	}
	s.RecordsProcessed += other.RecordsProcessed
	s.ItemsDeleted += other.ItemsDeleted
	s.ItemsSkipped += other.ItemsSkipped
	s.ErrorCount += other.ErrorCount
	s.ProcessDuration += other.ProcessDuration
	if other.Messages != nil {
		if s.Messages == nil {
			s.Messages = make([]string, 0)
		}
		s.Messages = append(s.Messages, other.Messages...)
	}
}
