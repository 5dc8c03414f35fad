package domain

// Shift 表示一天中的三个固定班次
type Shift string

const (
	ShiftMorning   Shift = "morning"   // 08:00 - 16:00
	ShiftNight     Shift = "night"     // 16:00 - 24:00
	ShiftGraveyard Shift = "graveyard" // 00:00 - 08:00
)

// HoursPerShift 每个班次的时长（小时）
const HoursPerShift = 8.0
