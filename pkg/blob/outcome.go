package blob

// Outcome is the result of Retrieve. It is one of Redirect, Stream, NotFound
// or ReadFailure.
type Outcome interface {
	outcome()
}

// Redirect tells the caller to send the client to URL instead of proxying bytes.
type Redirect struct {
	URL string
}

// Stream carries the file content and the download name.
type Stream struct {
	Data     []byte
	Filename string
}

// NotFound means the object or file does not exist.
type NotFound struct{}

// ReadFailure wraps any other read error. It is an internal error, not a
// client error.
type ReadFailure struct {
	Err error
}

func (Redirect) outcome()    {}
func (Stream) outcome()      {}
func (NotFound) outcome()    {}
func (ReadFailure) outcome() {}
