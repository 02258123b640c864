// Package agent implements the AI assistant of dvt: a facilitator model that
// answers the user by asking questions to expert models, one of them reading
// the project store through function calls.
package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
	// Print displays the facilitator's answers, as plain text by default.
	Print func(answer string)
}

// New creates an Agent reading the user from r and writing to w.
func New(w io.Writer, r io.Reader, model string, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newFacilitator(model, experts...),
		Print:       func(answer string) { fmt.Fprintln(w, answer) },
	}
}

// Start creates the chats of the facilitator and of every expert.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.Facilitator.Start(ctx, client)
}

const prompt = "assist> "

// farewells end the session.
var farewells = []string{"bye", "exit", "quit"}

// Run starts the interactive session. The prompts are asked first, as if
// typed by the user.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.w, "Welcome to the dvt project assistant. Type '%s' to exit.\n", farewells[0])

	for {
		q, err := a.question(&prompts)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: q})
		if err != nil {
			return err
		}
		a.Print(text(content))
	}
}

// question returns the next non blank question: the queued prompts first,
// echoed after the prompt, then the lines typed by the user. It returns io.EOF
// once the input is exhausted or a farewell is typed.
func (a *Agent) question(queued *[]string) (string, error) {
	for {
		fmt.Fprint(a.w, prompt)
		var line string
		if len(*queued) > 0 {
			line = strings.TrimSpace((*queued)[0])
			*queued = (*queued)[1:]
			fmt.Fprintln(a.w, line)
		} else {
			read, err := a.r.ReadString('\n')
			line = strings.TrimSpace(read)
			if err != nil && (err != io.EOF || line == "") {
				return "", err
			}
		}
		switch {
		case line == "":
		case slices.Contains(farewells, strings.ToLower(line)):
			return "", io.EOF
		default:
			return line, nil
		}
	}
}
