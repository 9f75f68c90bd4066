package notification

import (
	"fmt"
)

// NotificationSystem represents a delivery system (email, sms).
type NotificationSystem string

const (
	EmailSystem NotificationSystem = "email"
	SMSSystem   NotificationSystem = "sms"
)

// Manager manages notifiers and notice templates.
type Manager struct {
	// BaseUrl is prepended to links embedded in notices (reset links,
	// verification links).
	BaseUrl string

	notifiers map[NotificationSystem]Notifier
	registry  map[NoticeType]map[NotificationSystem]NoticeTemplate
}

// NewManager creates and returns a new Manager.
func NewManager(baseUrl string) *Manager {
	return &Manager{
		BaseUrl:   baseUrl,
		notifiers: make(map[NotificationSystem]Notifier),
		registry:  make(map[NoticeType]map[NotificationSystem]NoticeTemplate),
	}
}

// RegisterNotifier registers a notifier for a specific system.
func (m *Manager) RegisterNotifier(system NotificationSystem, notifier Notifier) {
	m.notifiers[system] = notifier
}

// RegisterNotification adds a notice template to the registry.
func (m *Manager) RegisterNotification(noticeType NoticeType, system NotificationSystem, template NoticeTemplate) error {
	if noticeType == "" || system == "" {
		return fmt.Errorf("invalid input: notice type and system cannot be empty")
	}

	if _, exists := m.registry[noticeType]; !exists {
		m.registry[noticeType] = make(map[NotificationSystem]NoticeTemplate)
	}
	m.registry[noticeType][system] = template
	return nil
}

// Send renders and delivers a notice over the given system.
func (m *Manager) Send(noticeType NoticeType, system NotificationSystem, notification NotificationData) error {
	systemTemplates, exists := m.registry[noticeType]
	if !exists {
		return fmt.Errorf("no templates registered for notice type: %s", noticeType)
	}

	template, exists := systemTemplates[system]
	if !exists {
		return fmt.Errorf("no template registered for system %s under notice type %s", system, noticeType)
	}

	notifier, exists := m.notifiers[system]
	if !exists {
		return fmt.Errorf("no notifier registered for system: %s", system)
	}

	return notifier.Send(noticeType, notification, template)
}
