package notification

// NoticeType identifies a notice the system can send
type NoticeType string

const (
	PasswordResetInit NoticeType = "password_reset_init"
	TwofaCodeEmail    NoticeType = "twofa_code_email"
	TwofaCodeSms      NoticeType = "twofa_code_sms"
	EmailVerification NoticeType = "email_verification"
)

// NoticeTemplate holds the renderable parts of a notice
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}
