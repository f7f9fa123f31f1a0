package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// JSON-RPC and LSP error codes.
const (
	codeParseError           = -32700
	codeInvalidRequest       = -32600
	codeMethodNotFound       = -32601
	codeInvalidParams        = -32602
	codeInternalError        = -32603
	codeServerNotInitialized = -32002
)

// Framing errors leave the stream at the next message.
var (
	errMissingLength = errors.New("missing Content-Length header")
	errBadLength     = errors.New("invalid Content-Length header")
)

// malformed reports whether err concerns one bad message rather than the
// stream itself.
func malformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.Is(err, errMissingLength) || errors.Is(err, errBadLength) ||
		errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// JSONRPCMessage is a JSON-RPC 2.0 request, response or notification.
type JSONRPCMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *JSONRPCError    `json:"error,omitempty"`
}

// IsRequest reports whether the message expects a response.
func (m *JSONRPCMessage) IsRequest() bool {
	return m.ID != nil && m.Method != ""
}

// JSONRPCError is the error member of a response.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *JSONRPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// conn reads and writes Content-Length framed messages. Writes are
// serialized; reads are not and belong to a single goroutine.
type conn struct {
	r *bufio.Reader

	mu sync.Mutex
	w  io.Writer
}

func newConn(r io.Reader, w io.Writer) *conn {
	return &conn{r: bufio.NewReader(r), w: w}
}

// read returns the next message. Header names are matched case
// insensitively and headers other than Content-Length are ignored.
func (c *conn) read() (*JSONRPCMessage, error) {
	length := -1
	for {
		line, err := c.r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		length, err = strconv.Atoi(strings.TrimSpace(value))
		if err != nil || length < 0 {
			return nil, fmt.Errorf("%w: %q", errBadLength, strings.TrimSpace(value))
		}
	}
	if length < 0 {
		return nil, errMissingLength
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}

	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}
	return &msg, nil
}

// write frames msg and writes it in one call.
func (c *conn) write(msg *JSONRPCMessage) error {
	msg.JSONRPC = "2.0"
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshaling message: %w", err)
	}

	frame := make([]byte, 0, len(body)+32)
	frame = fmt.Appendf(frame, "Content-Length: %d\r\n\r\n", len(body))
	frame = append(frame, body...)

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.w.Write(frame)
	return err
}

// reply answers the request with the given id. A non-nil rpcErr replaces
// the result.
func (c *conn) reply(id *json.RawMessage, result any, rpcErr *JSONRPCError) error {
	msg := &JSONRPCMessage{ID: id, Error: rpcErr}
	if rpcErr == nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("error marshaling result: %w", err)
		}
		msg.Result = raw
	}
	return c.write(msg)
}

// notify sends a notification, which has no id.
func (c *conn) notify(method string, params any) error {
	msg := &JSONRPCMessage{Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("error marshaling %s params: %w", method, err)
		}
		msg.Params = raw
	}
	return c.write(msg)
}
