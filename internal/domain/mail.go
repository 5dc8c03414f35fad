package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

// RunReportMailData 排程完成后发送给排程员的报告
type RunReportMailData struct {
	FullName     string   `json:"fullName"`
	RunID        int64    `json:"runID"`
	SurgeryCount int      `json:"surgeryCount"`
	SuccessCount int      `json:"successCount"`
	FailedCount  int      `json:"failedCount"`
	FailedIDs    []string `json:"failedIDs"`
}
