package tuitest

import (
	"bytes"
	"io"
)

// terminalQuery pairs a control sequence a program may emit with the reply a
// real terminal would send back. bubbletea probes the cursor position and the
// terminal colors at startup and waits for the answers.
type terminalQuery struct {
	probe []byte
	reply []byte
}

var terminalQueries = []terminalQuery{
	{probe: []byte("\x1b[6n"), reply: []byte("\x1b[1;1R")},
	{probe: []byte("\x1b]10;?\x07"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{probe: []byte("\x1b]10;?\x1b\\"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{probe: []byte("\x1b]11;?\x07"), reply: []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{probe: []byte("\x1b]11;?\x1b\\"), reply: []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

// autoResponder watches program output for terminal queries and answers them,
// so a UI under test does not stall waiting for a human terminal.
type autoResponder struct {
	pty io.Writer
	buf []byte
}

func newAutoResponder(pty io.Writer) *autoResponder {
	return &autoResponder{pty: pty, buf: make([]byte, 0, 128)}
}

func (ar *autoResponder) Observe(chunk []byte) {
	ar.buf = append(ar.buf, chunk...)
	for ar.answerOne() {
	}
	// A short tail still catches probes split across reads.
	if len(ar.buf) > 256 {
		ar.buf = ar.buf[len(ar.buf)-64:]
	}
}

func (ar *autoResponder) answerOne() bool {
	for _, q := range terminalQueries {
		idx := bytes.Index(ar.buf, q.probe)
		if idx < 0 {
			continue
		}
		ar.buf = ar.buf[idx+len(q.probe):]
		_, _ = ar.pty.Write(q.reply)
		return true
	}
	return false
}
