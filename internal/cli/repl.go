// Package cli is the interactive doctor console: a readline loop over the
// conversational agent.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"medicai/internal/agent"
)

const banner = `============================================================
MedicAI - Medical Assistant
============================================================
Welcome, Doctor! I'm here to help you access patient information
and manage consultation notes efficiently.

Commands you can try:
- 'brief for patient 12345' or 'brief for Brigid O'Sullivan'
- 'list recent patients'
- 'update patient 12345: [consultation notes]'
- 'patient is now taking metformin 500mg'
- 'add penicillin allergy for patient 12345'
- 'Brigid prefers morning appointments'
- Type 'quit' to exit
============================================================`

// REPL runs the interactive chat session.
type REPL struct {
	agent    *agent.Agent
	doctorID string
	log      zerolog.Logger
}

// New constructs a REPL for the given doctor identity.
func New(ag *agent.Agent, doctorID string, log zerolog.Logger) *REPL {
	return &REPL{agent: ag, doctorID: doctorID, log: log}
}

// Run reads doctor queries until EOF or an exit command.  Each run gets a
// fresh session so conversation context does not leak between invocations.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	sessionID := uuid.NewString()
	r.agent.InitSession(r.doctorID, sessionID)

	fmt.Fprintln(out, banner)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nDoctor > ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nSession ended. Thank you for using MedicAI!")
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		switch strings.ToLower(query) {
		case "quit", "exit", "bye":
			fmt.Fprintln(out, "\nThank you for using MedicAI. Have a great day!")
			return nil
		}

		reply, err := r.agent.Ask(ctx, r.doctorID, sessionID, query)
		if err != nil {
			r.log.Error().Err(err).Msg("agent query failed")
			fmt.Fprintf(out, "\nError: %v\nPlease try again or type 'quit' to exit.\n", err)
			continue
		}
		fmt.Fprintf(out, "\nMedicAI: %s\n", reply)
	}
}
