package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/sqlstyle/pkg/sqlstyle"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

// diagnosticSource labels every diagnostic the server publishes.
const diagnosticSource = "sqlstyle"

// ErrExitWithoutShutdown is returned by Run when the client sends exit
// without a preceding shutdown request.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// Settings is the linter and style a workspace is analyzed with.
type Settings struct {
	Linter *sqlstyle.Linter
	Style  style.Config
}

// SettingsLoader resolves the settings for a workspace root.
type SettingsLoader func(root string) (Settings, error)

type serverState int

const (
	stateUninitialized serverState = iota
	stateRunning
	stateShuttingDown
	stateExited
)

type (
	requestHandler      func(params json.RawMessage) (any, error)
	notificationHandler func(params json.RawMessage) error
)

// Server implements the Language Server Protocol for sqlstyle.
type Server struct {
	conn      *conn
	documents *DocumentStore
	logger    *slog.Logger
	version   string

	settingsMu sync.RWMutex
	settings   Settings
	loader     SettingsLoader

	state       serverState
	projectRoot string

	requests      map[string]requestHandler
	notifications map[string]notificationHandler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSettingsLoader reloads settings from the workspace root on initialize.
func WithSettingsLoader(loader SettingsLoader) Option {
	return func(s *Server) { s.loader = loader }
}

// WithVersion sets the version reported to the client.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// NewServer creates a server reading requests from reader and writing
// responses to writer. A nil Linter in settings lints with every
// built-in rule at its default severity.
func NewServer(reader io.Reader, writer io.Writer, settings Settings, opts ...Option) *Server {
	if settings.Linter == nil {
		settings.Linter = sqlstyle.New()
	}
	s := &Server{
		conn:      newConn(reader, writer),
		documents: NewDocumentStore(),
		logger:    slog.New(slog.DiscardHandler),
		settings:  settings,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.requests = map[string]requestHandler{
		"initialize":              s.initialize,
		"shutdown":                s.shutdown,
		"textDocument/hover":      s.hover,
		"textDocument/codeAction": s.codeAction,
		"textDocument/formatting": s.formatting,
	}
	s.notifications = map[string]notificationHandler{
		"initialized":            func(json.RawMessage) error { return nil },
		"textDocument/didOpen":   s.didOpen,
		"textDocument/didChange": s.didChange,
		"textDocument/didSave":   s.didSave,
		"textDocument/didClose":  s.didClose,
	}
	return s
}

// Run serves messages until the client sends exit, closes the stream or
// ctx is cancelled. An exit that skipped shutdown is an error, as is a
// failure of the input stream itself.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("sqlstyle LSP server starting", "version", s.version)

	for s.state != stateExited {
		if ctx.Err() != nil {
			return nil
		}

		msg, err := s.conn.read()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.logger.Info("client disconnected")
				return nil
			}
			if !malformed(err) {
				return fmt.Errorf("reading message: %w", err)
			}
			s.logger.Error("error reading message", "error", err)
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				s.sendResponse(nil, nil, &JSONRPCError{Code: codeParseError, Message: err.Error()})
			}
			continue
		}

		if msg.Method == "exit" {
			clean := s.state == stateShuttingDown
			s.state = stateExited
			if !clean {
				return ErrExitWithoutShutdown
			}
			return nil
		}
		s.dispatch(msg)
	}
	return nil
}

func (s *Server) dispatch(msg *JSONRPCMessage) {
	s.logger.Debug("received", "method", msg.Method)

	if !msg.IsRequest() {
		handler, ok := s.notifications[msg.Method]
		if !ok || s.state != stateRunning {
			return
		}
		if err := handler(msg.Params); err != nil {
			s.logger.Error("notification failed", "method", msg.Method, "error", err)
		}
		return
	}

	switch {
	case s.state == stateUninitialized && msg.Method != "initialize":
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeServerNotInitialized, Message: "server not initialized"})
		return
	case s.state == stateShuttingDown:
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidRequest, Message: "server is shutting down"})
		return
	}

	handler, ok := s.requests[msg.Method]
	if !ok {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeMethodNotFound, Message: "method not found: " + msg.Method})
		return
	}

	result, err := handler(msg.Params)
	if err != nil {
		var rpcErr *JSONRPCError
		if !errors.As(err, &rpcErr) {
			rpcErr = &JSONRPCError{Code: codeInternalError, Message: err.Error()}
		}
		s.logger.Warn("request failed", "method", msg.Method, "error", err)
		s.sendResponse(msg.ID, nil, rpcErr)
		return
	}
	s.sendResponse(msg.ID, result, nil)
}

// sendResponse answers a request. Write failures are logged; the
// client is gone and Run sees EOF next.
func (s *Server) sendResponse(id *json.RawMessage, result any, rpcErr *JSONRPCError) {
	if err := s.conn.reply(id, result, rpcErr); err != nil {
		s.logger.Error("failed to send response", "error", err)
	}
}

// sendNotification sends a server-initiated notification.
func (s *Server) sendNotification(method string, params any) {
	if err := s.conn.notify(method, params); err != nil {
		s.logger.Error("failed to send notification", "method", method, "error", err)
	}
}

// decodeParams unmarshals request params, reporting failures as invalid
// params.
func decodeParams[T any](raw json.RawMessage) (T, error) {
	var params T
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	return params, nil
}

// --- Lifecycle ---

func (s *Server) initialize(raw json.RawMessage) (any, error) {
	if s.state != stateUninitialized {
		return nil, &JSONRPCError{Code: codeInvalidRequest, Message: "server already initialized"}
	}
	params, err := decodeParams[InitializeParams](raw)
	if err != nil {
		return nil, err
	}

	s.projectRoot = URIToPath(params.RootURI)
	s.logger.Info("project root", "path", s.projectRoot)
	s.loadSettings()
	s.state = stateRunning

	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
				Save:      &SaveOptions{IncludeText: true},
			},
			HoverProvider: true,
			CodeActionProvider: &CodeActionOptions{
				CodeActionKinds: []CodeActionKind{CodeActionKindQuickFix, CodeActionKindSourceFixAll},
			},
			DocumentFormattingProvider: true,
		},
		ServerInfo: &ServerInfo{Name: "sqlstyle", Version: s.version},
	}, nil
}

func (s *Server) shutdown(json.RawMessage) (any, error) {
	s.state = stateShuttingDown
	s.logger.Info("server shutdown")
	return nil, nil
}

// loadSettings reloads settings for the project root. On failure the
// previous settings stay in effect and the client is told why.
func (s *Server) loadSettings() {
	if s.loader == nil || s.projectRoot == "" {
		return
	}
	settings, err := s.loader(s.projectRoot)
	if err != nil {
		s.logger.Warn("failed to load project config", "root", s.projectRoot, "error", err)
		s.sendNotification("window/showMessage", &ShowMessageParams{
			Type:    MessageTypeWarning,
			Message: "sqlstyle: " + err.Error(),
		})
		return
	}
	if settings.Linter == nil {
		settings.Linter = sqlstyle.New()
	}
	s.settingsMu.Lock()
	s.settings = settings
	s.settingsMu.Unlock()
}

func (s *Server) currentSettings() Settings {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings
}

// --- Document sync ---

func (s *Server) didOpen(raw json.RawMessage) error {
	params, err := decodeParams[DidOpenTextDocumentParams](raw)
	if err != nil {
		return err
	}
	item := params.TextDocument
	s.documents.Open(item.URI, item.Text, item.Version)
	s.publishDiagnostics(item.URI)
	return nil
}

// didChange applies full-sync changes: the last change holds the text.
func (s *Server) didChange(raw json.RawMessage) error {
	params, err := decodeParams[DidChangeTextDocumentParams](raw)
	if err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if n := len(params.ContentChanges); n > 0 {
		s.documents.Update(uri, params.ContentChanges[n-1].Text, params.TextDocument.Version)
	}
	s.publishDiagnostics(uri)
	return nil
}

func (s *Server) didSave(raw json.RawMessage) error {
	params, err := decodeParams[DidSaveTextDocumentParams](raw)
	if err != nil {
		return err
	}
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil || params.Text == nil || *params.Text == doc.Content {
		return nil
	}
	s.documents.Update(doc.URI, *params.Text, doc.Version)
	s.publishDiagnostics(doc.URI)
	return nil
}

func (s *Server) didClose(raw json.RawMessage) error {
	params, err := decodeParams[DidCloseTextDocumentParams](raw)
	if err != nil {
		return err
	}
	uri := params.TextDocument.URI
	s.documents.Close(uri)
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []Diagnostic{},
	})
	return nil
}
