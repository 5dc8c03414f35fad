package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleNurse,
	domain.RoleScheduler,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

// 随机生成一位外科医师，用户名由姓名的拼音生成
func GenerateRandomDoctor(seq int) *domain.Doctor {
	fullName := GenerateRandomChineseName()
	return &domain.Doctor{
		ID:       fmt.Sprintf("D%03d", seq),
		FullName: fullName,
		Username: GenerateUsernameFromChineseName(fullName),
	}
}

var scheduleTypes = []domain.ScheduleType{
	domain.ScheduleTypeA,
	domain.ScheduleTypeB,
	domain.ScheduleTypeC,
	domain.ScheduleTypeD,
	domain.ScheduleTypeE,
}

// 随机生成医师一周的排班类型，周一到周五必有排班，周末随机缺席
func GenerateRandomWeeklyRoster() map[time.Weekday]domain.ScheduleType {
	week := make(map[time.Weekday]domain.ScheduleType)
	for day := time.Monday; day <= time.Friday; day++ {
		week[day] = scheduleTypes[rand.Intn(len(scheduleTypes))]
	}
	for _, day := range []time.Weekday{time.Saturday, time.Sunday} {
		if rand.Intn(2) == 0 {
			week[day] = scheduleTypes[rand.Intn(len(scheduleTypes))]
		}
	}
	return week
}

var roomTypes = []string{"普外", "骨科", "心外", "神外", "眼科"}

func GenerateRandomRoomType() string {
	return roomTypes[rand.Intn(len(roomTypes))]
}

// 随机生成一间手术室，早班必开，晚班和凌晨班随机
func GenerateRandomRoom(seq int) *domain.Room {
	return &domain.Room{
		ID:             fmt.Sprintf("R%02d", seq),
		RoomType:       GenerateRandomRoomType(),
		NurseCount:     rand.Intn(4) + 2,
		MorningShift:   true,
		NightShift:     rand.Intn(2) == 0,
		GraveyardShift: rand.Intn(4) == 0,
	}
}

// 随机生成一台待排手术，时长 0.5~6 小时（半小时粒度），创建时间在过去 60 天内
func GenerateRandomSurgery(seq int, doctors []*domain.Doctor, date time.Time) *domain.Surgery {
	doctor := doctors[rand.Intn(len(doctors))]

	assistantID := ""
	if len(doctors) > 1 && rand.Intn(2) == 0 {
		assistant := doctors[rand.Intn(len(doctors))]
		if assistant.ID != doctor.ID {
			assistantID = assistant.ID
		}
	}

	createdAt := time.Now().Add(-time.Duration(rand.Intn(60*24)) * time.Hour)

	return &domain.Surgery{
		SurgeryID:         fmt.Sprintf("S%04d", seq),
		DoctorID:          doctor.ID,
		AssistantDoctorID: assistantID,
		RoomType:          GenerateRandomRoomType(),
		SurgeryDate:       date,
		Duration:          float64(rand.Intn(12)+1) * 0.5,
		NurseCount:        rand.Intn(3) + 1,
		CreatedAt:         &createdAt,
		Status:            domain.SurgeryStatusPending,
	}
}
