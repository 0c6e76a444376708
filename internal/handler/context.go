package handler

type ContextKey string

var (
	RoleCtxKey     ContextKey = "role"
	SubCtxKey      ContextKey = "sub"
	MyInfoCtx      ContextKey = "myInfo"
	TeacherInfoCtx ContextKey = "teacherInfo"
	AbsenceCtx     ContextKey = "absence"
	AssignmentCtx  ContextKey = "assignment"
)
