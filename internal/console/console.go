// Package console runs the interactive terminal conversation: print the
// transcript, read the next input, show the reply.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/zhouzirui/proposal-agent/backend/internal/model/chat"
	"github.com/zhouzirui/proposal-agent/backend/internal/service/ai"
)

const (
	cmdQuit    = "/quit"
	cmdHistory = "/history"
	cmdPaste   = "/paste"
	cmdHelp    = "/help"

	maxLineBytes = 1 << 20
)

// Responder answers one user message within a session.
type Responder interface {
	Respond(ctx context.Context, sessionID, input string) ai.Reply
}

// History reads a session transcript.
type History interface {
	Get(ctx context.Context, sessionID string) []chat.Turn
}

// Console is a turn-based chat loop bound to one session.
type Console struct {
	responder Responder
	history   History
	sessionID string
	in        *bufio.Scanner
	out       io.Writer
}

// New creates a console reading from in and writing to out.
func New(responder Responder, history History, sessionID string, in io.Reader, out io.Writer) *Console {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Console{
		responder: responder,
		history:   history,
		sessionID: sessionID,
		in:        scanner,
		out:       out,
	}
}

// Run blocks on each exchange until input is exhausted, /quit is entered or
// ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "AI Proposal Automation")
	fmt.Fprintln(c.out, "Paste your meeting notes or type a message. /paste for multi-line input, /history to review, /quit to exit.")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(c.out, "\nyou> ")
		line, ok := c.readLine()
		if !ok {
			return c.in.Err()
		}

		input := line
		switch strings.TrimSpace(line) {
		case cmdQuit:
			return nil
		case cmdHelp:
			c.printHelp()
			continue
		case cmdHistory:
			c.printHistory(ctx)
			continue
		case cmdPaste:
			fmt.Fprintln(c.out, "Enter text; finish with a line containing only \".\"")
			block, ok := c.readBlock()
			if !ok {
				return c.in.Err()
			}
			input = block
		}

		fmt.Fprintln(c.out, "assistant> thinking...")
		reply := c.responder.Respond(ctx, c.sessionID, input)
		fmt.Fprintf(c.out, "assistant> %s\n", reply.Text)
	}
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

func (c *Console) readBlock() (string, bool) {
	var lines []string
	for {
		line, ok := c.readLine()
		if !ok {
			return "", false
		}
		if strings.TrimSpace(line) == "." {
			return strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)
	}
}

func (c *Console) printHistory(ctx context.Context) {
	turns := c.history.Get(ctx, c.sessionID)
	if len(turns) == 0 {
		fmt.Fprintln(c.out, "(no history yet)")
		return
	}
	for _, turn := range turns {
		label := "you"
		if turn.Role == chat.RoleAssistant {
			label = "assistant"
		}
		fmt.Fprintf(c.out, "%s> %s\n", label, turn.Text)
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, "Commands:")
	fmt.Fprintln(c.out, "  /paste    enter multi-line text, end with a single \".\" line")
	fmt.Fprintln(c.out, "  /history  show the recorded conversation")
	fmt.Fprintln(c.out, "  /quit     exit")
}
