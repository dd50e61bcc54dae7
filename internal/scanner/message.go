package scanner

// MessageKind tags what a worker Message carries.
type MessageKind int

const (
	// MessageData carries one Outcome.
	MessageData MessageKind = iota
	// MessageTaskDone marks the end of a task, whether or not it completed.
	MessageTaskDone
	// MessageAbandoned reports paths dropped after the host exhausted its
	// error budget. A MessageTaskDone for the same task follows.
	MessageAbandoned
)

// Message is what workers send to the orchestrator.
type Message struct {
	Kind    MessageKind
	Worker  int
	TaskID  int
	Dir     string
	Outcome Outcome // MessageData only
	Skipped int     // MessageAbandoned only
}
