package handler

type ContextKey string

var (
	RoleCtxKey     ContextKey = "role"
	SubCtxKey      ContextKey = "sub"
	MyInfoCtx      ContextKey = "myInfo"
	RoomInfoCtx    ContextKey = "roomInfo"
	DoctorInfoCtx  ContextKey = "doctorInfo"
	SurgeryInfoCtx ContextKey = "surgeryInfo"
)
