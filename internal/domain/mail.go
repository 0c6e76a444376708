package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateTeacherMailData struct {
	FullName string `json:"fullName"`
	TaxCode  string `json:"taxCode"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type SubstitutionNoticeMailData struct {
	FullName      string `json:"fullName"`
	AbsentTeacher string `json:"absentTeacher"`
	Date          string `json:"date"`
	Period        int32  `json:"period"`
	ClassLabel    string `json:"classLabel"`
	Subject       string `json:"subject"`
}
