package notification

// NotificationData carries the recipient and template data for one notice
type NotificationData struct {
	To   string            // Recipient identifier (email address or phone number)
	Data map[string]string // Template data
}

// Notifier delivers a rendered notice over one delivery system
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
