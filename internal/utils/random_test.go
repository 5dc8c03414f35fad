package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("张伟")

	// 姓名拼音的随机前缀加 1~3 位数字
	require.NotEmpty(t, username)
	assert.Equal(t, byte('z'), username[0])
	last := username[len(username)-1]
	assert.True(t, last >= '0' && last <= '9')
}

func TestGenerateRandomDoctor(t *testing.T) {
	doctor := GenerateRandomDoctor(7)
	assert.Equal(t, "D007", doctor.ID)
	assert.NotEmpty(t, doctor.FullName)
	assert.NotEmpty(t, doctor.Username)
}

func TestGenerateRandomWeeklyRoster(t *testing.T) {
	roster := GenerateRandomWeeklyRoster()

	// 工作日必须有排班记录
	for weekday := time.Monday; weekday <= time.Friday; weekday++ {
		_, ok := roster[weekday]
		assert.True(t, ok, weekday.String())
	}
}

func TestGenerateRandomRoom(t *testing.T) {
	room := GenerateRandomRoom(3)
	assert.Equal(t, "R03", room.ID)
	assert.True(t, room.MorningShift)
	assert.Greater(t, room.NurseCount, 0)
}

func TestGenerateRandomSurgery(t *testing.T) {
	doctors := []*domain.Doctor{GenerateRandomDoctor(1), GenerateRandomDoctor(2)}
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	surgery := GenerateRandomSurgery(12, doctors, date)
	require.NotNil(t, surgery)
	assert.Equal(t, "S0012", surgery.SurgeryID)
	assert.Equal(t, date, surgery.SurgeryDate)
	assert.Equal(t, domain.SurgeryStatusPending, surgery.Status)
	assert.GreaterOrEqual(t, surgery.Duration, 0.5)
	assert.LessOrEqual(t, surgery.Duration, 6.0)
	assert.NotNil(t, surgery.CreatedAt)

	found := false
	for _, doctor := range doctors {
		if doctor.ID == surgery.DoctorID {
			found = true
		}
	}
	assert.True(t, found)
}
