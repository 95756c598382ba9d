/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package kernel

import "encoding/json"

// Output types carried on the execution stream.
const (
	OutputTypeStream        = "stream"
	OutputTypeDisplayData   = "display_data"
	OutputTypeExecuteResult = "execute_result"
	OutputTypeError         = "error"
	OutputTypeStatus        = "status"
)

// Stream names.
const (
	StreamStdout = "stdout"
	StreamStderr = "stderr"
)

// Execution states carried on status events.
const (
	ExecutionStateBusy = "busy"
	ExecutionStateIdle = "idle"
)

// Event is one line of the NDJSON execution stream. Terminal reports
// whether the stream ends after this event: consumers stop reading at an
// error or an idle status.
type Event interface {
	Terminal() bool
}

// StreamEvent carries one line of interpreter output.
type StreamEvent struct {
	OutputType string `json:"output_type"`
	Name       string `json:"name"`
	Text       string `json:"text"`
}

func (StreamEvent) Terminal() bool { return false }

// DisplayDataEvent carries rich output keyed by MIME type.
type DisplayDataEvent struct {
	OutputType string                 `json:"output_type"`
	Data       map[string]interface{} `json:"data"`
	Metadata   map[string]interface{} `json:"metadata"`
}

func (DisplayDataEvent) Terminal() bool { return false }

// ExecuteResultEvent carries the value of the executed cell.
type ExecuteResultEvent struct {
	OutputType     string                 `json:"output_type"`
	ExecutionCount int64                  `json:"execution_count"`
	Data           map[string]interface{} `json:"data"`
	Metadata       map[string]interface{} `json:"metadata"`
}

func (ExecuteResultEvent) Terminal() bool { return false }

// ErrorEvent reports a failed execution and ends the stream.
type ErrorEvent struct {
	OutputType string   `json:"output_type"`
	Ename      string   `json:"ename"`
	Evalue     string   `json:"evalue"`
	Traceback  []string `json:"traceback"`
}

func (ErrorEvent) Terminal() bool { return true }

// StatusEvent reports the interpreter state; idle ends the stream.
type StatusEvent struct {
	OutputType     string `json:"output_type"`
	ExecutionState string `json:"execution_state"`
}

func (e StatusEvent) Terminal() bool { return e.ExecutionState == ExecutionStateIdle }

func NewStreamEvent(name, text string) StreamEvent {
	return StreamEvent{OutputType: OutputTypeStream, Name: name, Text: text}
}

func NewExecuteResultEvent(count int64, text string) ExecuteResultEvent {
	return ExecuteResultEvent{
		OutputType:     OutputTypeExecuteResult,
		ExecutionCount: count,
		Data:           map[string]interface{}{"text/plain": text},
		Metadata:       map[string]interface{}{},
	}
}

func NewErrorEvent(ename, evalue string, traceback []string) ErrorEvent {
	if traceback == nil {
		traceback = []string{}
	}
	return ErrorEvent{OutputType: OutputTypeError, Ename: ename, Evalue: evalue, Traceback: traceback}
}

func NewStatusEvent(state string) StatusEvent {
	return StatusEvent{OutputType: OutputTypeStatus, ExecutionState: state}
}

// MarshalLine renders the event as one NDJSON line, newline included.
func MarshalLine(event Event) ([]byte, error) {
	line, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}
