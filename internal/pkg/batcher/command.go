package batcher

// Kind labels the statement type of a queued command.
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
)

// Command is one SQL mutation awaiting a physical commit.
type Command struct {
	SQL  string
	Args []any
	Kind Kind
}
