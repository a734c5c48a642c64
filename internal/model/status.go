package model

// Status tracks where a node (or a whole network) is in its container
// lifecycle. Transitions are driven by the docker controller:
// start operations move Stopped -> Starting -> Started or Error,
// stop operations move Started/Error -> Stopping -> Stopped.
// A failed start or stop lands in Error, which means "needs restart".
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusStarted  Status = "started"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// Running reports whether the status counts as live for refresh purposes.
func (s Status) Running() bool {
	return s == StatusStarted
}
