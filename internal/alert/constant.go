package alert

// Upstream hub method names.
const (
	MethodNewStreamAlert      = "newStreamAlert"
	MethodUpdateGoalOverlay   = "updateGoalOverlay"
	MethodUpdateAlertActivity = "updateAlertActivity"
)

const (
	// DefaultUsername is used when a legacy alert label carries no donor name.
	DefaultUsername = "Someone"

	configResetPrefix = "configreset_"
)
