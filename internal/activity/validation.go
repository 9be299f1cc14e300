package activity

import "fmt"

// Validate checks that a message is complete for its kind.
func Validate(msg Message) error {
	if msg.ID == "" {
		return fmt.Errorf("id is required")
	}
	if msg.OccurredAt <= 0 {
		return fmt.Errorf("occurred_at must be set")
	}

	switch msg.Kind {
	case KindUserRegistered:
		if msg.UserID <= 0 {
			return fmt.Errorf("%s requires user_id", msg.Kind)
		}
	case KindEventCreated, KindEventUpdated, KindEventDeleted:
		if msg.EventID <= 0 {
			return fmt.Errorf("%s requires event_id", msg.Kind)
		}
	case KindRegistrationCreated:
		if msg.EventID <= 0 || msg.UserID <= 0 {
			return fmt.Errorf("%s requires event_id and user_id", msg.Kind)
		}
	default:
		return fmt.Errorf("unknown kind %q", msg.Kind)
	}
	return nil
}
