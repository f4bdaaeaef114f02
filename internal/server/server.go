// Package server exposes the move generator over HTTP: legal moves and game
// status for a FEN, perft divides, and a websocket that streams a divide one
// root move at a time.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"quint-chess/fen"
	"quint-chess/perft"
	"quint-chess/quintmg"
)

// DefaultMaxDepth caps perft requests unless overridden.
const DefaultMaxDepth = 5

var ErrDepthRange = errors.New("server: depth out of range")

// Application routes the API. It holds no per-request state.
type Application struct {
	router   *mux.Router
	lut      *quintmg.LookupTable
	maxDepth int
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// Option customises an Application.
type Option func(*Application)

// WithMaxDepth caps the depth accepted by the perft endpoints.
func WithMaxDepth(d int) Option {
	return func(app *Application) { app.maxDepth = d }
}

// WithLogger replaces the logger used for server-side events.
func WithLogger(l *slog.Logger) Option {
	return func(app *Application) { app.log = l }
}

// WithAccessLog writes an Apache common log line per request to w.
func WithAccessLog(w io.Writer) Option {
	return func(app *Application) {
		app.router.Use(func(next http.Handler) http.Handler {
			return handlers.LoggingHandler(w, next)
		})
	}
}

// NewApplication builds the router. All positions share lut (nil selects the
// default table).
func NewApplication(lut *quintmg.LookupTable, opts ...Option) *Application {
	if lut == nil {
		lut = quintmg.DefaultLookupTable()
	}
	app := &Application{
		router:   mux.NewRouter(),
		lut:      lut,
		maxDepth: DefaultMaxDepth,
		log:      slog.Default().With("package", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(app)
	}
	app.router.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	app.router.HandleFunc("/api/moves", app.movesHandler).Methods(http.MethodGet)
	app.router.HandleFunc("/api/perft", app.perftHandler).Methods(http.MethodGet)
	app.router.HandleFunc("/ws/divide", app.divideHandler)
	return app
}

func (app *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app.router.ServeHTTP(w, r)
}

// MovesResponse is the body of /api/moves.
type MovesResponse struct {
	FEN       string   `json:"fen"`
	Turn      string   `json:"turn"`
	Moves     []string `json:"moves"`
	Check     bool     `json:"check"`
	Checkmate bool     `json:"checkmate"`
	Stalemate bool     `json:"stalemate"`
}

// PerftResponse is the body of /api/perft.
type PerftResponse struct {
	FEN    string        `json:"fen"`
	Depth  int           `json:"depth"`
	Nodes  uint64        `json:"nodes"`
	Divide []perft.Entry `json:"divide"`
}

// DivideTotal is the last websocket message of a divide stream.
type DivideTotal struct {
	Total uint64 `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (app *Application) position(r *http.Request) (*quintmg.Position, error) {
	s := r.URL.Query().Get("fen")
	if s == "" {
		s = fen.StartPos
	}
	return fen.NewPosition(app.lut, s)
}

func (app *Application) depth(r *http.Request) (int, error) {
	d, err := strconv.Atoi(r.URL.Query().Get("depth"))
	if err != nil {
		return 0, errors.Join(ErrDepthRange, err)
	}
	if d < 1 || d > app.maxDepth {
		return 0, ErrDepthRange
	}
	return d, nil
}

func (app *Application) movesHandler(w http.ResponseWriter, r *http.Request) {
	p, err := app.position(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	legal := p.LegalMoves()
	check := p.IsCheck()
	writeJSON(w, http.StatusOK, MovesResponse{
		FEN:       fen.Encode(p),
		Turn:      p.Turn().String(),
		Moves:     legal.Strings(),
		Check:     check,
		Checkmate: check && legal.Len() == 0,
		Stalemate: !check && legal.Len() == 0,
	})
}

func (app *Application) perftHandler(w http.ResponseWriter, r *http.Request) {
	p, err := app.position(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	depth, err := app.depth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	div, err := perft.ParallelDivide(r.Context(), p, depth, 0)
	if err != nil {
		app.log.Warn("perft aborted", "fen", fen.Encode(p), "depth", depth, "error", err)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, PerftResponse{
		FEN:    fen.Encode(p),
		Depth:  depth,
		Nodes:  perft.Total(div),
		Divide: perft.Sorted(div),
	})
}

// divideHandler validates before upgrading so bad requests still get a 400.
// Root moves are counted in generation order and each count is sent as soon
// as it is known.
func (app *Application) divideHandler(w http.ResponseWriter, r *http.Request) {
	p, err := app.position(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	depth, err := app.depth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	conn, err := app.upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.log.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	app.log.Info("divide stream", "remote", conn.RemoteAddr().String(), "fen", fen.Encode(p), "depth", depth)

	// A hijacked connection no longer cancels r.Context, so the read side
	// watches for the client going away.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	var total uint64
	legal := p.LegalMoves()
	for _, m := range legal.Slice() {
		if err := ctx.Err(); err != nil {
			app.log.Info("divide stream cancelled", "error", err)
			return
		}
		child := p.CopyBoard()
		child.MakeMove(m)
		n, err := perft.Count(&child, depth-1)
		if err != nil {
			app.log.Error("divide stream", "move", m.String(), "error", err)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()))
			return
		}
		total += n
		if err := conn.WriteJSON(perft.Entry{Move: m.String(), Nodes: n}); err != nil {
			app.log.Warn("divide stream closed", "error", err)
			return
		}
	}
	if err := conn.WriteJSON(DivideTotal{Total: total}); err != nil {
		app.log.Warn("divide stream closed", "error", err)
		return
	}
	app.log.Debug("divide stream done", "total", total)
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, errors.New("not found"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "package", "server", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
