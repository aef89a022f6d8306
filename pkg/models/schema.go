package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateChatEvent(event *ChatEvent) error {
	if event == nil {
		return &ValidationError{
			Field:   "event",
			Message: "chat event cannot be nil",
		}
	}

	if event.ID == "" {
		return &ValidationError{
			Field:   "id",
			Message: "event ID is required",
		}
	}

	if event.Timestamp.IsZero() {
		return &ValidationError{
			Field:   "timestamp",
			Message: "event timestamp is required",
		}
	}

	switch event.Kind {
	case EventKindChat:
		if event.Content == nil {
			return &ValidationError{
				Field:   "content",
				Message: "chat event content cannot be nil",
			}
		}
	case EventKindSound:
		if event.Sound == nil || event.Sound.Name == "" {
			return &ValidationError{
				Field:   "sound",
				Message: "sound event requires a sound name",
			}
		}
	case EventKindScoreboard:
		// An empty sidebar is valid and clears the previous lines.
	default:
		return &ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown event kind %q", event.Kind),
		}
	}

	return nil
}
