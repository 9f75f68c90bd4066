package notification

// SentNotice records one delivery attempt made through a MockNotifier
type SentNotice struct {
	NoticeType NoticeType
	To         string
	Data       map[string]string
}

// MockNotifier records notices instead of delivering them. Used in tests.
type MockNotifier struct {
	Sent []SentNotice
	Err  error
}

func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentNotice{
		NoticeType: noticeType,
		To:         notification.To,
		Data:       notification.Data,
	})
	return nil
}
