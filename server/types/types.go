package types

import (
	"time"

	"github.com/nnnkkk7/sqlbuddy/pkg/highlight"
	"github.com/nnnkkk7/sqlbuddy/pkg/query"
)

// Highlight API Types

// TextRequest carries editor text.
type TextRequest struct {
	Text string `json:"text"`
}

type HighlightResponse struct {
	Spans []SpanDTO `json:"spans"`
}

// SpanDTO is a styled segment. Start and End are rune offsets.
type SpanDTO struct {
	Kind  string `json:"kind"`
	Style string `json:"style"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Split API Types

type SplitResponse struct {
	Statements []string `json:"statements"`
}

// Run API Types

// SelectionDTO is a rune range of the submitted text.
type SelectionDTO struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// RunRequest submits SQL text. When Selection is non-empty, only the selected
// text runs.
type RunRequest struct {
	SQL       string        `json:"sql"`
	Selection *SelectionDTO `json:"selection,omitempty"`
}

type RunResponse struct {
	Handle      string       `json:"handle"`
	Status      string       `json:"status"`
	Statements  []string     `json:"statements"`
	Outcomes    []OutcomeDTO `json:"outcomes"`
	Error       string       `json:"error,omitempty"`
	CreatedOn   time.Time    `json:"createdOn"`
	CompletedOn *time.Time   `json:"completedOn,omitempty"`
}

// OutcomeDTO is one outcome of a run. Fields are set according to Kind.
type OutcomeDTO struct {
	Kind           string     `json:"kind"`
	Columns        []string   `json:"columns,omitempty"`
	Rows           [][]string `json:"rows,omitempty"`
	AffectedCount  *int64     `json:"affectedCount,omitempty"`
	StatementIndex *int       `json:"statementIndex,omitempty"`
	Text           string     `json:"text,omitempty"`
}

// Connection API Types

type ConnectionTestRequest struct {
	Profile string `json:"profile,omitempty"`
}

type ConnectionTestResponse struct {
	Success bool   `json:"success"`
	Profile string `json:"profile"`
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// Conversions

// NewHighlightResponse converts spans to their wire form.
func NewHighlightResponse(spans []highlight.Span) HighlightResponse {
	dtos := make([]SpanDTO, len(spans))
	for i, sp := range spans {
		dtos[i] = SpanDTO{
			Kind:  sp.Kind.String(),
			Style: sp.Style.String(),
			Start: sp.Start,
			End:   sp.End,
			Text:  sp.Text,
		}
	}
	return HighlightResponse{Spans: dtos}
}

// NewRunResponse converts a run snapshot to its wire form.
func NewRunResponse(run query.Run) RunResponse {
	statements := run.Statements
	if statements == nil {
		statements = []string{}
	}

	resp := RunResponse{
		Handle:      run.Handle,
		Status:      string(run.Status),
		Statements:  statements,
		Error:       run.Error,
		CreatedOn:   run.CreatedOn,
		CompletedOn: run.CompletedOn,
	}
	if run.Outcomes != nil {
		resp.Outcomes = NewOutcomeDTOs(run.Outcomes)
	}
	return resp
}

// NewOutcomeDTOs converts outcomes to their wire form, preserving order.
func NewOutcomeDTOs(outcomes []query.Outcome) []OutcomeDTO {
	dtos := make([]OutcomeDTO, 0, len(outcomes))
	for _, o := range outcomes {
		dto := OutcomeDTO{Kind: string(o.Kind())}
		switch v := o.(type) {
		case query.TableResult:
			dto.Columns = v.Columns
			dto.Rows = v.Rows
		case query.UpdateMessage:
			count := v.AffectedCount
			dto.AffectedCount = &count
		case query.ErrorMessage:
			index := v.StatementIndex
			dto.StatementIndex = &index
			dto.Text = v.Text
		}
		dtos = append(dtos, dto)
	}
	return dtos
}
