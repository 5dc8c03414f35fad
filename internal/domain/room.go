package domain

// Room 手术室静态信息
type Room struct {
	ID             string `json:"id"`
	RoomType       string `json:"roomType"`
	NurseCount     int    `json:"nurseCount"` // 护士容量
	MorningShift   bool   `json:"morningShift"`
	NightShift     bool   `json:"nightShift"`
	GraveyardShift bool   `json:"graveyardShift"`
}

// ShiftOpen 判断手术室在指定班次是否开放
func (r *Room) ShiftOpen(shift Shift) bool {
	switch shift {
	case ShiftMorning:
		return r.MorningShift
	case ShiftNight:
		return r.NightShift
	case ShiftGraveyard:
		return r.GraveyardShift
	}
	return false
}

// OpenShiftCount 返回开放的班次数量
func (r *Room) OpenShiftCount() int {
	count := 0
	for _, open := range []bool{r.MorningShift, r.NightShift, r.GraveyardShift} {
		if open {
			count++
		}
	}
	return count
}

// DailyCapacityHours 每日服务时数上限 = 8 小时 × 开放班次数
func (r *Room) DailyCapacityHours() float64 {
	return HoursPerShift * float64(r.OpenShiftCount())
}
