package infrastructure

import (
	"fmt"

	"tapown/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return "accounts.balance_changed"
	case events.EventTypeAccountCreated:
		return "accounts.created"
	case events.EventTypeBoostPlayed:
		return "rewards.boost.played"
	case events.EventTypeMissionResolved:
		return "rewards.mission.resolved"
	case events.EventTypeReferralAttributed:
		return "rewards.referral.attributed"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"accounts.balance_changed",
		"accounts.created",
		"rewards.boost.played",
		"rewards.mission.resolved",
		"rewards.referral.attributed",
	}
}
