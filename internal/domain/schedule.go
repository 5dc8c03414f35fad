package domain

import "time"

// ScheduleResult 单台手术的最终排程结果，由第二阶段产生后不再修改。
// 时间字段使用 "HH:MM" 格式，PrimaryShift 完全由 StartTime 的小时数推导
type ScheduleResult struct {
	SurgeryID       string    `json:"surgeryID"`
	RoomID          string    `json:"roomID"`
	ScheduledDate   time.Time `json:"scheduledDate"`
	StartTime       string    `json:"startTime"`
	EndTime         string    `json:"endTime"`
	CleanupEndTime  string    `json:"cleanupEndTime"` // 手术结束 + 清洁时间
	PrimaryShift    Shift     `json:"primaryShift"`
	IsCrossShift    bool      `json:"isCrossShift"`
	PriorityScore   float64   `json:"priorityScore"`
	AllocationScore float64   `json:"allocationScore"`
	DiagnosticNote  string    `json:"diagnosticNote,omitempty"` // 例如延迟原因、换房说明
}

// DateKey 返回排程日期的标准化键（按天）
func (r *ScheduleResult) DateKey() string {
	return r.ScheduledDate.Format("2006-01-02")
}
