package workflow

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows short lived notifications (toasts) to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc is a function Notifier.
type NotifierFunc func(level Level, message string)

// Notify satisfies Notifier.
func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

type noopNotifier struct{}

func (noopNotifier) Notify(Level, string) {}

// Notification messages.
const (
	MsgQueryTooShort     = "Please describe the maintenance work in at least 50 characters"
	MsgMissingEquipment  = "Please provide the equipment type and location"
	MsgGenerationStarted = "Maintenance method generation started"
	MsgGenerationReady   = "Maintenance method ready"
	MsgGenerationCancel  = "Generation cancelled"
	MsgPDFReady          = "PDF generated"
)
