package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/internal/testutil"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/sqlstyle"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

const testURI = "file:///project/models/orders.sql"

// session builds the framed input for a sequence of client messages.
type session struct {
	buf    bytes.Buffer
	nextID int
}

// newSession returns a session that has completed the initialize handshake.
func newSession() *session {
	s := &session{}
	s.request("initialize", InitializeParams{})
	s.notify("initialized", struct{}{})
	return s
}

// end queues a clean shutdown.
func (s *session) end() {
	s.request("shutdown", nil)
	s.notify("exit", nil)
}

func (s *session) request(method string, params any) int {
	s.nextID++
	s.write(map[string]any{"jsonrpc": "2.0", "id": s.nextID, "method": method, "params": params})
	return s.nextID
}

func (s *session) notify(method string, params any) {
	s.write(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

func (s *session) write(msg map[string]any) {
	body, _ := json.Marshal(msg)
	fmt.Fprintf(&s.buf, "Content-Length: %d\r\n\r\n%s", len(body), body)
}

// readFrames splits server output into messages.
func readFrames(t *testing.T, out []byte) []JSONRPCMessage {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(out))
	var msgs []JSONRPCMessage
	for {
		header, err := r.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return msgs
		}
		require.NoError(t, err)
		length, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(header, "Content-Length:")))
		require.NoError(t, err)
		_, err = r.ReadString('\n')
		require.NoError(t, err)

		body := make([]byte, length)
		_, err = io.ReadFull(r, body)
		require.NoError(t, err)

		var msg JSONRPCMessage
		require.NoError(t, json.Unmarshal(body, &msg))
		msgs = append(msgs, msg)
	}
}

func runSession(t *testing.T, s *session, opts ...Option) []JSONRPCMessage {
	t.Helper()
	msgs, err := runSessionErr(t, s, opts...)
	require.NoError(t, err)
	return msgs
}

func runSessionErr(t *testing.T, s *session, opts ...Option) ([]JSONRPCMessage, error) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t))}, opts...)
	server := NewServer(&s.buf, &out, Settings{Style: style.Default()}, opts...)
	err := server.Run(context.Background())
	return readFrames(t, out.Bytes()), err
}

func responseFor(t *testing.T, msgs []JSONRPCMessage, id int) JSONRPCMessage {
	t.Helper()
	want := strconv.Itoa(id)
	for _, msg := range msgs {
		if msg.ID != nil && string(*msg.ID) == want {
			return msg
		}
	}
	t.Fatalf("no response for request %d", id)
	return JSONRPCMessage{}
}

func notifications(msgs []JSONRPCMessage, method string) []JSONRPCMessage {
	var out []JSONRPCMessage
	for _, msg := range msgs {
		if msg.ID == nil && msg.Method == method {
			out = append(out, msg)
		}
	}
	return out
}

func openDocument(s *session, text string) {
	s.notify("textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: testURI, LanguageID: "sql", Version: 1, Text: text},
	})
}

func TestServer_Initialize(t *testing.T) {
	s := &session{}
	initID := s.request("initialize", InitializeParams{RootURI: "file:///project"})
	s.notify("initialized", struct{}{})
	shutdownID := s.request("shutdown", nil)
	s.notify("exit", nil)

	msgs := runSession(t, s, WithVersion("1.2.3"))

	var result InitializeResult
	require.NoError(t, json.Unmarshal(responseFor(t, msgs, initID).Result, &result))
	assert.True(t, result.Capabilities.DocumentFormattingProvider)
	assert.True(t, result.Capabilities.HoverProvider)
	require.NotNil(t, result.Capabilities.TextDocumentSync)
	assert.Equal(t, TextDocumentSyncKindFull, result.Capabilities.TextDocumentSync.Change)
	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "1.2.3", result.ServerInfo.Version)

	assert.Nil(t, responseFor(t, msgs, shutdownID).Error)
}

func TestServer_SettingsLoader(t *testing.T) {
	var gotRoot string
	loader := func(root string) (Settings, error) {
		gotRoot = root
		return Settings{Style: style.New(style.WithKeywordCase(style.KeywordLower))}, nil
	}

	s := &session{}
	s.request("initialize", InitializeParams{RootURI: "file:///project"})
	s.notify("initialized", struct{}{})
	openDocument(s, "select id from users\n")
	s.end()

	msgs := runSession(t, s, WithSettingsLoader(loader))

	assert.Equal(t, "/project", gotRoot)
	published := notifications(msgs, "textDocument/publishDiagnostics")
	require.Len(t, published, 1)
	var params PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(published[0].Params, &params))
	for _, d := range params.Diagnostics {
		assert.NotEqual(t, "keyword-case", d.Code, "lower-case keywords are configured")
	}
}

func TestServer_SettingsLoaderError(t *testing.T) {
	loader := func(string) (Settings, error) {
		return Settings{}, errors.New("bad config")
	}

	s := &session{}
	s.request("initialize", InitializeParams{RootURI: "file:///project"})
	s.end()

	logger, logs := testutil.NewRecordingLogger(t)
	msgs := runSession(t, s, WithSettingsLoader(loader), WithLogger(logger))

	shown := notifications(msgs, "window/showMessage")
	require.Len(t, shown, 1)
	var params ShowMessageParams
	require.NoError(t, json.Unmarshal(shown[0].Params, &params))
	assert.Equal(t, MessageTypeWarning, params.Type)
	assert.Contains(t, params.Message, "bad config")
	assert.Contains(t, logs.Messages(slog.LevelWarn), "failed to load project config")
}

func TestServer_PublishDiagnostics(t *testing.T) {
	s := newSession()
	openDocument(s, "select id, email from users\n")
	s.notify("textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: "SELECT\n    id,\n    email\nFROM users\n"}},
	})
	s.notify("textDocument/didClose", DidCloseTextDocumentParams{TextDocument: TextDocumentIdentifier{URI: testURI}})
	s.end()

	published := notifications(runSession(t, s), "textDocument/publishDiagnostics")
	require.Len(t, published, 3)

	var opened, changed, closed PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(published[0].Params, &opened))
	require.NoError(t, json.Unmarshal(published[1].Params, &changed))
	require.NoError(t, json.Unmarshal(published[2].Params, &closed))

	var keywordCase []Diagnostic
	for _, d := range opened.Diagnostics {
		assert.Equal(t, diagnosticSource, d.Source)
		if d.Code == "keyword-case" {
			keywordCase = append(keywordCase, d)
		}
	}
	require.NotEmpty(t, keywordCase)
	assert.Equal(t, DiagnosticSeverityWarning, keywordCase[0].Severity)
	assert.Equal(t, Range{End: Position{Character: 6}}, keywordCase[0].Range)

	require.NotNil(t, changed.Version)
	assert.Equal(t, 2, *changed.Version)
	assert.Empty(t, changed.Diagnostics)
	assert.Empty(t, closed.Diagnostics)
}

func TestServer_SyntaxError(t *testing.T) {
	s := newSession()
	openDocument(s, "select id\nfrom users where name = 'oops\n")
	s.end()

	published := notifications(runSession(t, s), "textDocument/publishDiagnostics")
	require.Len(t, published, 1)

	var params PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(published[0].Params, &params))
	require.Len(t, params.Diagnostics, 1)
	d := params.Diagnostics[0]
	assert.Equal(t, "syntax", d.Code)
	assert.Equal(t, DiagnosticSeverityError, d.Severity)
	assert.Equal(t, Position{Line: 1, Character: 24}, d.Range.Start)
	assert.Contains(t, d.Message, "unterminated string literal")
}

func TestServer_CodeActions(t *testing.T) {
	s := newSession()
	openDocument(s, "select id, email from users\n")
	allID := s.request("textDocument/codeAction", CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Range:        Range{End: Position{Character: 6}},
	})
	onlyID := s.request("textDocument/codeAction", CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Range:        Range{End: Position{Character: 6}},
		Context:      CodeActionContext{Only: []CodeActionKind{CodeActionKindSourceFixAll}},
	})
	s.end()

	msgs := runSession(t, s)

	var all []CodeAction
	require.NoError(t, json.Unmarshal(responseFor(t, msgs, allID).Result, &all))

	var quickFix, fixAll *CodeAction
	for i := range all {
		switch {
		case all[i].Kind == CodeActionKindQuickFix && all[i].Diagnostics[0].Code == "keyword-case":
			quickFix = &all[i]
		case all[i].Kind == CodeActionKindSourceFixAll:
			fixAll = &all[i]
		}
	}
	require.NotNil(t, quickFix)
	require.NotNil(t, fixAll)
	assert.Equal(t, []TextEdit{{Range: Range{End: Position{Character: 6}}, NewText: "SELECT"}},
		quickFix.Edit.Changes[testURI])
	assert.Contains(t, fixAll.Edit.Changes[testURI][0].NewText, "SELECT")
	assert.Contains(t, fixAll.Edit.Changes[testURI][0].NewText, "FROM")

	var only []CodeAction
	require.NoError(t, json.Unmarshal(responseFor(t, msgs, onlyID).Result, &only))
	require.Len(t, only, 1)
	assert.Equal(t, CodeActionKindSourceFixAll, only[0].Kind)
}

func TestServer_Hover(t *testing.T) {
	s := newSession()
	openDocument(s, "select id, email from users\n")
	hoverID := s.request("textDocument/hover", HoverParams{TextDocumentPositionParams: TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Position:     Position{Character: 2},
	}})
	missID := s.request("textDocument/hover", HoverParams{TextDocumentPositionParams: TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///not/open.sql"},
	}})
	s.end()

	msgs := runSession(t, s)

	var hover Hover
	require.NoError(t, json.Unmarshal(responseFor(t, msgs, hoverID).Result, &hover))
	assert.Equal(t, MarkupKindMarkdown, hover.Contents.Kind)
	assert.Contains(t, hover.Contents.Value, "**keyword-case**")

	miss := responseFor(t, msgs, missID)
	assert.Nil(t, miss.Error)
	assert.Contains(t, []string{"", "null"}, string(miss.Result))
}

func TestServer_Formatting(t *testing.T) {
	s := newSession()
	openDocument(s, "select id, email from users")
	formatID := s.request("textDocument/formatting", DocumentFormattingParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
	})
	s.end()

	msgs := runSession(t, s)

	var edits []TextEdit
	require.NoError(t, json.Unmarshal(responseFor(t, msgs, formatID).Result, &edits))
	require.Len(t, edits, 1)
	assert.Equal(t, Range{End: Position{Character: 27}}, edits[0].Range)
	assert.Equal(t, "SELECT\n    id,\n    email\nFROM users\n", edits[0].NewText)
}

func TestServer_UnknownMethod(t *testing.T) {
	s := newSession()
	id := s.request("workspace/symbol", map[string]string{"query": "x"})
	s.notify("$/cancelRequest", map[string]int{"id": 1})
	s.end()

	msgs := runSession(t, s)

	require.Len(t, msgs, 3, "initialize, workspace/symbol and shutdown responses")
	resp := responseFor(t, msgs, id)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestServer_InvalidParams(t *testing.T) {
	s := newSession()
	id := s.request("textDocument/formatting", "not an object")
	s.end()

	resp := responseFor(t, runSession(t, s), id)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestServer_Lifecycle(t *testing.T) {
	s := &session{}
	early := s.request("textDocument/hover", HoverParams{})
	openDocument(s, "select 1")
	s.request("initialize", InitializeParams{})
	again := s.request("initialize", InitializeParams{})
	s.request("shutdown", nil)
	late := s.request("textDocument/formatting", DocumentFormattingParams{})
	s.notify("exit", nil)

	msgs := runSession(t, s)

	require.NotNil(t, responseFor(t, msgs, early).Error)
	assert.Equal(t, codeServerNotInitialized, responseFor(t, msgs, early).Error.Code)
	require.NotNil(t, responseFor(t, msgs, again).Error)
	assert.Equal(t, codeInvalidRequest, responseFor(t, msgs, again).Error.Code)
	require.NotNil(t, responseFor(t, msgs, late).Error)
	assert.Equal(t, codeInvalidRequest, responseFor(t, msgs, late).Error.Code)
	assert.Empty(t, notifications(msgs, "textDocument/publishDiagnostics"),
		"notifications before initialize are dropped")
}

func TestServer_ExitWithoutShutdown(t *testing.T) {
	s := newSession()
	s.notify("exit", nil)

	_, err := runSessionErr(t, s)
	assert.ErrorIs(t, err, ErrExitWithoutShutdown)
}

func TestConn_ReadHeaders(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":7,"method":"shutdown"}`
	input := fmt.Sprintf("content-length: %d\r\nContent-Type: application/vscode-jsonrpc; charset=utf-8\r\n\r\n%s", len(body), body)

	msg, err := newConn(strings.NewReader(input), io.Discard).read()
	require.NoError(t, err)
	assert.True(t, msg.IsRequest())
	assert.Equal(t, "shutdown", msg.Method)

	_, err = newConn(strings.NewReader("Content-Type: x\r\n\r\n{}"), io.Discard).read()
	assert.ErrorIs(t, err, errMissingLength)
	assert.True(t, malformed(err))

	_, err = newConn(strings.NewReader("Content-Length: -3\r\n\r\n"), io.Discard).read()
	assert.ErrorIs(t, err, errBadLength)
	assert.True(t, malformed(err))
}

// brokenReader fails every read with the same error.
type brokenReader struct{ err error }

func (r brokenReader) Read([]byte) (int, error) { return 0, r.err }

func TestServer_ReadFailureEndsRun(t *testing.T) {
	server := NewServer(brokenReader{err: io.ErrClosedPipe}, io.Discard, Settings{},
		WithLogger(testutil.NewTestLogger(t)))

	done := make(chan error, 1)
	go func() { done <- server.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, io.ErrClosedPipe)
	case <-time.After(5 * time.Second):
		t.Fatal("Run kept reading from a failed stream")
	}
}

func TestServer_MalformedFrameIsSkipped(t *testing.T) {
	s := newSession()
	s.buf.WriteString("Content-Length: 5\r\n\r\n{oops")
	s.end()

	msgs := runSession(t, s)
	var parseErrors int
	for _, msg := range msgs {
		if msg.Error != nil && msg.Error.Code == codeParseError {
			parseErrors++
		}
	}
	assert.Equal(t, 1, parseErrors)
	assert.Nil(t, responseFor(t, msgs, 2).Error, "shutdown after the bad frame is still answered")
}

func TestServer_EOFEndsRun(t *testing.T) {
	s := newSession()
	openDocument(s, "select 1")

	// No exit message: Run returns when the input is exhausted.
	msgs := runSession(t, s)
	assert.Len(t, notifications(msgs, "textDocument/publishDiagnostics"), 1)
}

func TestServer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server := NewServer(strings.NewReader(""), io.Discard, Settings{})
	assert.NoError(t, server.Run(ctx))
}

func TestToSeverity(t *testing.T) {
	assert.Equal(t, DiagnosticSeverityError, toSeverity(lint.SeverityError))
	assert.Equal(t, DiagnosticSeverityWarning, toSeverity(lint.SeverityWarning))
	assert.Equal(t, DiagnosticSeverityInformation, toSeverity(lint.SeverityInfo))
	assert.Equal(t, DiagnosticSeverityHint, toSeverity(lint.SeverityHint))
}

func TestNewServer_DefaultLinter(t *testing.T) {
	server := NewServer(strings.NewReader(""), io.Discard, Settings{})
	require.NotNil(t, server.settings.Linter)
	assert.IsType(t, &sqlstyle.Linter{}, server.settings.Linter)
}
