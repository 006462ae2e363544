package sse

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

var fieldLine = regexp.MustCompile(`^(\w+):(.+)$`)

// Parser is the line level state machine behind [Parse]. It is idle
// between records and accumulating once a recognised field was seen.
// The zero value is ready to use.
type Parser struct {
	id   *string
	name *string
	data *string
	seen bool
}

// Line feeds one line, without its terminator, to the parser. It returns
// the completed event when line ends a record that carried data.
func (p *Parser) Line(line string) (Event, bool) {
	line = strings.TrimSpace(line)

	if line == "" {
		return p.dispatch()
	}

	if strings.HasPrefix(line, ":") {
		return Event{}, false
	}

	m := fieldLine.FindStringSubmatch(line)
	if m == nil {
		return Event{}, false
	}

	value := strings.TrimPrefix(m[2], " ")
	switch m[1] {
	case "id":
		p.id = &value
	case "event":
		p.name = &value
	case "data":
		p.data = &value
	default:
		return Event{}, false
	}
	p.seen = true

	return Event{}, false
}

// Accumulating reports whether a record is in progress.
func (p *Parser) Accumulating() bool {
	return p.seen
}

// Reset drops the record in progress.
func (p *Parser) Reset() {
	*p = Parser{}
}

func (p *Parser) dispatch() (Event, bool) {
	defer p.Reset()

	if p.data == nil {
		return Event{}, false
	}

	return Event{ID: p.id, Name: p.name, Data: p.data}, true
}

// Parse reads r line by line and hands every completed event to handler.
// It returns nil when the stream ends or the interrupt flag is raised, the
// context error when ctx is done, and any other read error as is. A record
// left incomplete at the end of the stream is discarded.
func Parse(ctx context.Context, r io.Reader, handler Handler, optFns ...Option) error {
	if handler == nil {
		return ErrNilHandler
	}

	var opts options
	for _, opt := range optFns {
		opt(&opts)
	}

	var (
		p      Parser
		reader = bufio.NewReader(r)
		lineNo int
	)

	for {
		if opts.interrupt != nil && opts.interrupt.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			return fmt.Errorf("reading event stream: %w", err)
		}
		lineNo++

		if !utf8.ValidString(line) {
			if opts.onLineErr != nil {
				opts.onLineErr(&LineError{Line: lineNo, Err: ErrInvalidUTF8})
			}
			continue
		}

		if ev, ok := p.Line(line); ok {
			handler(ev)
		}
	}
}
