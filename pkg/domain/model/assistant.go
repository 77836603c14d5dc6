package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ChatRole identifies the author of a chat turn
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatTurn is one earlier exchange kept by the client and replayed into the prompt
type ChatTurn struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// Question asks the assistant about the rows selected by Filter
type Question struct {
	Filter  Filter     `json:"filter"`
	Text    string     `json:"question"`
	History []ChatTurn `json:"history,omitempty"`
}

// Validate validates the question
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return goerr.New("question is required", goerr.T(ErrTagInvalidRequest))
	}
	for i, turn := range q.History {
		if turn.Role != ChatRoleUser && turn.Role != ChatRoleAssistant {
			return goerr.New("invalid chat role",
				goerr.V("index", i),
				goerr.V("role", turn.Role),
				goerr.T(ErrTagInvalidRequest))
		}
	}
	return q.Filter.Validate()
}

// Answer is the assistant's raw reply
type Answer struct {
	Text string `json:"answer"`
	Rows int    `json:"rows"`
}

// DashboardView is everything the dashboard renders for a filter
type DashboardView struct {
	Filter  Filter       `json:"filter"`
	Summary *Summary     `json:"summary"`
	Rows    []*Complaint `json:"rows"`
	Missing bool         `json:"missing"`
}

// Options lists the values a user can pick from
type Options struct {
	Categories     []string    `json:"categories"`
	Municipalities []string    `json:"municipalities"`
	Severities     []string    `json:"severities"`
	From           string      `json:"from,omitempty"`
	To             string      `json:"to,omitempty"`
	Form           *FormConfig `json:"form"`
	Missing        bool        `json:"missing"`
}
