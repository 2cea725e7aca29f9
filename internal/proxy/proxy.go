// Package proxy decides how a tool invocation is surfaced to a
// connecting client based on its declared capabilities: as an
// observable background task, or executed and returned inline.
//
// The decision is pure routing — the proxy never executes the
// operation itself and has no side effects.
package proxy

// Capabilities is derived once per connection from the client's
// declared capabilities and is immutable for the connection's lifetime.
type Capabilities struct {
	SupportsTasks     bool `json:"supports_tasks"`
	SupportsSubscribe bool `json:"supports_subscribe"`
}

// ResultKind tags the routing decision.
type ResultKind string

const (
	// KindTask: return a task-typed result for the caller to track
	// asynchronously.
	KindTask ResultKind = "task"
	// KindDirect: the operation must be executed and its result returned
	// inline on this same call.
	KindDirect ResultKind = "direct"
)

// TaskStatusWorking is the initial status carried by a task-typed result.
const TaskStatusWorking = "working"

// ToolCallRequest is the operation a client asked for.
type ToolCallRequest struct {
	Operation string         `json:"operation"`
	Args      map[string]any `json:"args,omitempty"`
}

// ToolCallResult is the routing decision. For a task-typed result the
// original operation and args are carried through unchanged so the
// tracking side can run them later.
type ToolCallResult struct {
	Kind      ResultKind     `json:"kind"`
	Status    string         `json:"status,omitempty"` // "working" for task results
	Operation string         `json:"operation"`
	Args      map[string]any `json:"args,omitempty"`
}

// Proxy routes tool calls for one connection.
type Proxy struct {
	caps Capabilities
}

// New creates a proxy for a connection with the given declared
// capabilities. The negotiation happens exactly once, here.
func New(caps Capabilities) *Proxy {
	return &Proxy{caps: caps}
}

// Capabilities returns the connection's negotiated capabilities.
func (p *Proxy) Capabilities() Capabilities {
	return p.caps
}

// HandleToolCall returns the routing decision for one request. It is a
// pure function of the connection's capabilities and the request shape:
// identical inputs always produce identical decisions.
func (p *Proxy) HandleToolCall(req ToolCallRequest) ToolCallResult {
	if p.caps.SupportsTasks {
		return ToolCallResult{
			Kind:      KindTask,
			Status:    TaskStatusWorking,
			Operation: req.Operation,
			Args:      req.Args,
		}
	}
	return ToolCallResult{
		Kind:      KindDirect,
		Operation: req.Operation,
		Args:      req.Args,
	}
}
