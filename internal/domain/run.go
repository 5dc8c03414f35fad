package domain

import "time"

// SchedulingRun 一次批量排程的审计记录
type SchedulingRun struct {
	ID           int64     `json:"id"`
	TriggeredBy  string    `json:"triggeredBy"` // threshold / timer / manual
	SurgeryCount int       `json:"surgeryCount"`
	SuccessCount int       `json:"successCount"`
	FailedCount  int       `json:"failedCount"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
