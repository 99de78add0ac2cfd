package enums

import "fmt"

// NotificationType labels the social events surfaced to users.
type NotificationType string

const (
	NotificationTypeFollow               NotificationType = "follow"
	NotificationTypePostLiked            NotificationType = "post_liked"
	NotificationTypePostCommented        NotificationType = "post_commented"
	NotificationTypeAffiliationRequested NotificationType = "affiliation_requested"
	NotificationTypeAffiliationAccepted  NotificationType = "affiliation_accepted"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeFollow,
	NotificationTypePostLiked,
	NotificationTypePostCommented,
	NotificationTypeAffiliationRequested,
	NotificationTypeAffiliationAccepted,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
