package models

// Key names a persisted collection in the shared store.
type Key string

// Canonical store keys. Writers and subscribers both go through this table.
const (
	KeyTasks         Key = "homework_planner_tasks"
	KeyExams         Key = "homework_planner_exams"
	KeyUsers         Key = "users"
	KeyCurrentUser   Key = "currentUser"
	KeySettings      Key = "settings"
	KeyImportantDays Key = "importantDays"
	KeyNotifications Key = "notifications"
)

// Signal names the same-tab event emitted after a key is written.
type Signal string

const (
	SignalTasks         Signal = "tasksUpdated"
	SignalExams         Signal = "examsUpdated"
	SignalUsers         Signal = "usersUpdated"
	SignalSession       Signal = "sessionUpdated"
	SignalSettings      Signal = "settingsUpdated"
	SignalImportantDays Signal = "importantDaysUpdated"
	SignalNotifications Signal = "notificationsUpdated"
)

var keySignals = map[Key]Signal{
	KeyTasks:         SignalTasks,
	KeyExams:         SignalExams,
	KeyUsers:         SignalUsers,
	KeyCurrentUser:   SignalSession,
	KeySettings:      SignalSettings,
	KeyImportantDays: SignalImportantDays,
	KeyNotifications: SignalNotifications,
}

// AllKeys lists every canonical key in a stable order.
func AllKeys() []Key {
	return []Key{KeyTasks, KeyExams, KeyUsers, KeyCurrentUser, KeySettings, KeyImportantDays, KeyNotifications}
}

// SignalFor returns the signal announced when k changes.
func (k Key) SignalFor() (Signal, bool) {
	s, ok := keySignals[k]
	return s, ok
}

// KeyFor maps a raw store key back to its canonical Key.
func KeyFor(raw string) (Key, bool) {
	k := Key(raw)
	_, ok := keySignals[k]
	return k, ok
}

func (k Key) String() string { return string(k) }

func (s Signal) String() string { return string(s) }
