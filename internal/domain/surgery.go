package domain

import "time"

type SurgeryStatus string

const (
	SurgeryStatusPending   SurgeryStatus = "pending"
	SurgeryStatusScheduled SurgeryStatus = "scheduled"
	SurgeryStatusFailed    SurgeryStatus = "failed"
)

// Surgery 是排程器的不可变输入，排程过程中不会修改手术本身，
// 只会在排程失败时往 DiagnosticNote 中写入失败原因
type Surgery struct {
	SurgeryID         string        `json:"surgeryID"`
	DoctorID          string        `json:"doctorID"`
	AssistantDoctorID string        `json:"assistantDoctorID,omitempty"` // 为空表示没有助理医师
	RoomType          string        `json:"roomType"`
	SurgeryDate       time.Time     `json:"surgeryDate"`
	Duration          float64       `json:"duration"` // 小时，允许小数
	NurseCount        int           `json:"nurseCount"`
	CreatedAt         *time.Time    `json:"createdAt,omitempty"` // 用于计算等待天数
	Status            SurgeryStatus `json:"status"`
	DiagnosticNote    string        `json:"diagnosticNote,omitempty"`
}

// DateKey 返回手术日期的标准化键（按天）
func (s *Surgery) DateKey() string {
	return s.SurgeryDate.Format("2006-01-02")
}
