package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

// 本包内部的时间一律用"从午夜开始的分钟数"表示，
// 便于做区间运算；只有在生成结果时才格式化为 HH:MM
const minutesPerDay = 24 * 60

// Overlaps 判断两个半开区间 [s1, e1) 和 [s2, e2) 是否重叠，端点相接不算重叠
func Overlaps(s1, e1, s2, e2 int) bool {
	return !(e1 <= s2 || e2 <= s1)
}

// AddMinutes 分钟数相加，跨午夜时回绕
func AddMinutes(t, minutes int) int {
	return ((t+minutes)%minutesPerDay + minutesPerDay) % minutesPerDay
}

// SubtractMinutes 分钟数相减，跨午夜时回绕
func SubtractMinutes(t, minutes int) int {
	return AddMinutes(t, -minutes)
}

// ShiftOf 根据开始时间的小时数划分班次
func ShiftOf(minute int) domain.Shift {
	hour := (((minute % minutesPerDay) + minutesPerDay) % minutesPerDay) / 60
	switch {
	case hour >= 8 && hour < 16:
		return domain.ShiftMorning
	case hour >= 16:
		return domain.ShiftNight
	default:
		return domain.ShiftGraveyard
	}
}

// IsCrossShift 判断手术是否跨班次（只看开始和结束时间所在的班次）
func IsCrossShift(start, end int) bool {
	return ShiftOf(start) != ShiftOf(end)
}

// DurationToMinutes 将小时数（允许小数）转换为分钟数，四舍五入到整分钟
func DurationToMinutes(hours float64) int {
	return int(hours*60 + 0.5)
}

// FormatClock 将分钟数格式化为 HH:MM，超过 24:00 的部分回绕到次日
func FormatClock(minute int) string {
	m := ((minute % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseClock 解析 HH:MM 或 HH:MM:SS 格式的时间字符串
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("无效的时间格式: %s", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("无效的时间格式: %s", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("无效的时间格式: %s", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("时间超出范围: %s", s)
	}

	return hour*60 + minute, nil
}
