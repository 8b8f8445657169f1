package handler

const (
	errInternalServer  = "Internal server error"
	errMissingUserID   = "User ID is required"
	errDeliveryFailed  = "Notification could not be delivered"
	errReminderMissing = "Reminder not found"
)
