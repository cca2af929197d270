// Package agent drives the conversational front end.  The model does the
// language understanding; everything it can actually do to patient records
// goes through the typed tool operations, so the agent adds no semantics of
// its own beyond conversation history and the tool-call loop.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"medicai/internal/llm"
	"medicai/internal/tools"
)

// maxToolRounds bounds how many times a single query may bounce between the
// model and the tools before the agent gives up.
const maxToolRounds = 8

// ErrNoResponse is returned when the model keeps requesting tools without
// ever producing a final text reply.
var ErrNoResponse = errors.New("no response received from medical assistant")

// Agent holds the model client, the toolset, and per-session conversation
// history.  Histories are keyed by (doctor, session) and guarded by a mutex
// since the HTTP layer serves requests concurrently.
type Agent struct {
	llm      llm.Client
	tools    *tools.Toolset
	toolDefs []llm.Tool
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string][]llm.Message
}

// New constructs an Agent.
func New(client llm.Client, ts *tools.Toolset, log zerolog.Logger) *Agent {
	return &Agent{
		llm:      client,
		tools:    ts,
		toolDefs: toolDefinitions(),
		log:      log.With().Str("component", "agent").Logger(),
		sessions: make(map[string][]llm.Message),
	}
}

// InitSession ensures a conversation history exists for the given doctor
// and session.  Re-initializing an existing session is a no-op.
func (a *Agent) InitSession(doctorID, sessionID string) {
	key := sessionKey(doctorID, sessionID)
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.sessions[key]; !ok {
		a.sessions[key] = []llm.Message{}
	}
}

// Ask sends a doctor's query through the model, executing any tool calls it
// requests, and returns the final text reply.  The doctor identity is passed
// through opaquely; the core never interprets it.
func (a *Agent) Ask(ctx context.Context, doctorID, sessionID, query string) (string, error) {
	key := sessionKey(doctorID, sessionID)
	history := a.snapshot(key)

	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: SystemPrompt})
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: query})

	for round := 0; round < maxToolRounds; round++ {
		reply, err := a.llm.Chat(ctx, msgs, a.toolDefs)
		if err != nil {
			a.log.Error().Err(err).Str("doctor", doctorID).Msg("model call failed")
			return FallbackReply, err
		}
		if len(reply.ToolCalls) == 0 {
			a.remember(key, llm.Message{Role: llm.RoleUser, Content: query}, reply)
			return reply.Content, nil
		}
		msgs = append(msgs, reply)
		for _, call := range reply.ToolCalls {
			result := a.dispatch(ctx, call)
			a.log.Debug().Str("tool", call.Name).Str("status", result.Status).Msg("tool call executed")
			body, err := json.Marshal(result)
			if err != nil {
				body = []byte(`{"status":"error","message":"internal encoding error"}`)
			}
			msgs = append(msgs, llm.Message{
				Role:       llm.RoleTool,
				Content:    string(body),
				ToolCallID: call.ID,
			})
		}
	}
	return "", ErrNoResponse
}

// snapshot copies a session's history so the loop can work on it without
// holding the lock across model calls.
func (a *Agent) snapshot(key string) []llm.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	history := a.sessions[key]
	out := make([]llm.Message, len(history))
	copy(out, history)
	return out
}

// remember appends the user turn and the final assistant reply to the
// session history.  Intermediate tool traffic is not retained; the tool
// results live in the record store, not the conversation.
func (a *Agent) remember(key string, turns ...llm.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[key] = append(a.sessions[key], turns...)
}

func sessionKey(doctorID, sessionID string) string {
	return doctorID + "/" + sessionID
}
