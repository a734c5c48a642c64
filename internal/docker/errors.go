package docker

// CommandError is a failed container-runtime invocation. Message holds
// the stripped stderr text of the underlying command, so the error a
// caller sees is exactly what the tool printed, minus color codes.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}
