package cli

import "fmt"

type notFoundError struct {
        kind string
        id   string
}

func (e notFoundError) Error() string {
        return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
        return notFoundError{kind: kind, id: id}
}

// reportedError has already been written to stderr.
type reportedError struct {
        err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }
