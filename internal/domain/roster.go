package domain

import "time"

// ScheduleType 医师每周的门诊/手术安排类型，决定医师当天可执刀的班次
type ScheduleType string

const (
	ScheduleTypeA ScheduleType = "A" // 全天手术日，可用班次 {morning, night}
	ScheduleTypeB ScheduleType = "B" // 上午门诊，可用班次 {night}
	ScheduleTypeC ScheduleType = "C" // 下午门诊，可用班次 {morning}
	ScheduleTypeD ScheduleType = "D" // 不可用
	ScheduleTypeE ScheduleType = "E" // 不可用
)

// AvailableShifts 返回该类型允许执刀的班次集合
func (t ScheduleType) AvailableShifts() []Shift {
	switch t {
	case ScheduleTypeA:
		return []Shift{ShiftMorning, ShiftNight}
	case ScheduleTypeB:
		return []Shift{ShiftNight}
	case ScheduleTypeC:
		return []Shift{ShiftMorning}
	}
	return nil
}

// Allows 判断该类型是否允许在指定班次执刀
func (t ScheduleType) Allows(shift Shift) bool {
	for _, s := range t.AvailableShifts() {
		if s == shift {
			return true
		}
	}
	return false
}

// DoctorRoster 按医师 ID 和星期索引的每周排班表
type DoctorRoster map[string]map[time.Weekday]ScheduleType

// TypeFor 查询医师在指定日期的排班类型，没有记录时返回 (“”, false)
func (r DoctorRoster) TypeFor(doctorID string, date time.Time) (ScheduleType, bool) {
	if r == nil {
		return "", false
	}
	week, ok := r[doctorID]
	if !ok {
		return "", false
	}
	t, ok := week[date.Weekday()]
	return t, ok
}

// Doctor 外科医师档案
type Doctor struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
