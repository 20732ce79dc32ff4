package journal

import "fmt"

// CorruptionError reports a structurally invalid journal: bad version, bad
// header, a footer checksum mismatch, a non-contiguous file sequence, an
// unterminated DbContext name, or an unknown opcode.
type CorruptionError struct {
	Msg  string
	File string
}

func (e *CorruptionError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("journal corruption in %s: %s", e.File, e.Msg)
	}
	return fmt.Sprintf("journal corruption: %s", e.Msg)
}

func newCorruptionError(msg, file string) *CorruptionError {
	return &CorruptionError{Msg: msg, File: file}
}

// IOError wraps a failure to open a data file or a journal file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func newIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}

// AbruptEndError means a journal file's bytes stopped mid-section — expected
// only on the last file in a sequence (a torn write from a crash), fatal on
// any earlier one.
type AbruptEndError struct {
	File string
}

func (e *AbruptEndError) Error() string {
	return fmt.Sprintf("journal file %s ends abruptly mid-section", e.File)
}

func newAbruptEndError(file string) *AbruptEndError {
	return &AbruptEndError{File: file}
}
