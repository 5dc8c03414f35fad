package utils

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func parseClockMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("时间格式错误: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("时间格式错误: %s", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("时间格式错误: %s", s)
	}
	return hour*60 + minute, nil
}

// resultWindow 把单条排程结果解析为分钟区间，结束或清洁时间回绕到次日时还原为延长分钟数
func resultWindow(r *domain.ScheduleResult) (start, end, cleanupEnd int, err error) {
	if start, err = parseClockMinutes(r.StartTime); err != nil {
		return
	}
	if end, err = parseClockMinutes(r.EndTime); err != nil {
		return
	}
	if cleanupEnd, err = parseClockMinutes(r.CleanupEndTime); err != nil {
		return
	}
	if end < start {
		end += 24 * 60
	}
	if cleanupEnd < start {
		cleanupEnd += 24 * 60
	}
	return
}

// ValidateScheduleResults 校验一批排程结果的核心不变量：
//  1. 清洁结束时间等于结束时间加 cleanupMinutes
//  2. 同一手术室同一天的 [开始, 清洁结束) 区间两两不相交
//  3. 同一医师（主刀或助理）同一天的相邻手术之间至少间隔休息缓冲
//
// 排程器在返回结果前调用一次，校验失败说明排程器自身存在缺陷
func ValidateScheduleResults(results []*domain.ScheduleResult, surgeries []*domain.Surgery, cleanupMinutes, bufferMinutes int) error {
	surgeryByID := make(map[string]*domain.Surgery, len(surgeries))
	for _, s := range surgeries {
		surgeryByID[s.SurgeryID] = s
	}

	type window struct {
		surgeryID  string
		start      int
		end        int
		cleanupEnd int
	}

	roomWindows := make(map[string][]window)   // roomID|date
	doctorWindows := make(map[string][]window) // doctorID|date，主刀和助理合并跟踪

	for _, r := range results {
		start, end, cleanupEnd, err := resultWindow(r)
		if err != nil {
			return fmt.Errorf("手术 %s 的排程结果无法解析: %w", r.SurgeryID, err)
		}

		if cleanupEnd != end+cleanupMinutes {
			return fmt.Errorf("手术 %s 的清洁结束时间不等于结束时间加 %d 分钟", r.SurgeryID, cleanupMinutes)
		}

		w := window{surgeryID: r.SurgeryID, start: start, end: end, cleanupEnd: cleanupEnd}

		roomKey := r.RoomID + "|" + r.DateKey()
		roomWindows[roomKey] = append(roomWindows[roomKey], w)

		if surgery, ok := surgeryByID[r.SurgeryID]; ok {
			doctorKey := surgery.DoctorID + "|" + r.DateKey()
			doctorWindows[doctorKey] = append(doctorWindows[doctorKey], w)
			if surgery.AssistantDoctorID != "" {
				assistantKey := surgery.AssistantDoctorID + "|" + r.DateKey()
				doctorWindows[assistantKey] = append(doctorWindows[assistantKey], w)
			}
		}
	}

	for key, windows := range roomWindows {
		sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
		for i := 1; i < len(windows); i++ {
			if windows[i].start < windows[i-1].cleanupEnd {
				return fmt.Errorf("手术室 %s 中手术 %s 和 %s 的占用时间重叠",
					strings.SplitN(key, "|", 2)[0], windows[i-1].surgeryID, windows[i].surgeryID)
			}
		}
	}

	for key, windows := range doctorWindows {
		sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
		for i := 1; i < len(windows); i++ {
			if windows[i].start < windows[i-1].end+bufferMinutes {
				return fmt.Errorf("医师 %s 的手术 %s 和 %s 之间不足 %d 分钟休息",
					strings.SplitN(key, "|", 2)[0], windows[i-1].surgeryID, windows[i].surgeryID, bufferMinutes)
			}
		}
	}

	return nil
}
