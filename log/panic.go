package log

import (
	"bytes"
	"runtime/debug"

	"github.com/rs/zerolog"
)

const skippedStackLines = 9

func Panic(thing any) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		dict := zerolog.Dict().Any("content", thing)
		stack := debug.Stack()
		lines := bytes.Split(stack, []byte("\n"))
		// drop runtime/debug and deferred recover frames
		if len(lines) > skippedStackLines {
			lines = lines[skippedStackLines:]
		}
		dict.Bytes("stack_traces", bytes.Join(lines, []byte("\n")))
		e.Dict("panic", dict)
	}
}
