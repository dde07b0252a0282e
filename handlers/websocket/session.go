package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
	"whiteboard/board"
	"whiteboard/core"
	"whiteboard/handlers/auth"
	"whiteboard/stores"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// Events sent by the client.
const (
	EventOpenBoard    = "open-board"
	EventSelectTool   = "select-tool"
	EventPointerDown  = "pointer-down"
	EventPointerMove  = "pointer-move"
	EventPointerUp    = "pointer-up"
	EventPointerLeave = "pointer-leave"
	EventDoubleClick  = "double-click"
	EventTextChange   = "text-change"
	EventBlur         = "blur"
	EventKeyDown      = "key-down"
	EventDeleteActive = "delete-active"
	EventSave         = "save"
)

// Events sent by the server.
const (
	EventBoardState   = "board-state"
	EventSaved        = "saved"
	EventSaveError    = "save-error"
	EventSessionError = "session-error"
)

var clientEvents = []string{
	EventOpenBoard, EventSelectTool, EventPointerDown, EventPointerMove, EventPointerUp,
	EventPointerLeave, EventDoubleClick, EventTextChange, EventBlur, EventKeyDown,
	EventDeleteActive, EventSave,
}

const saveTimeout = 30 * time.Second

// emitter is the part of a socket a connection writes to.
type emitter interface {
	Emit(ev string, args ...any) error
}

// Config configures the live editing endpoint.
type Config struct {
	Store core.BoardStore
	// DeferredText buffers text edits until blur instead of writing every change.
	DeferredText bool
	// Origins lists allowed CORS origins; empty allows any.
	Origins []string
}

type (
	pointerArgs struct {
		X      *float64 `json:"x"`
		Y      *float64 `json:"y"`
		Target string   `json:"target"`
	}

	textArgs struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
)

// conn is one socket's editing session. A fresh board.Session is built on connect and
// dropped on disconnect, so unsaved changes do not outlive the connection.
type conn struct {
	mu sync.Mutex

	cfg     Config
	out     emitter
	log     *logrus.Entry
	session *board.Session

	userID  string
	boardID string
}

func newConn(cfg Config, out emitter, id string) *conn {
	fields := logrus.Fields{"socket_id": id}
	return &conn{
		cfg:     cfg,
		out:     out,
		log:     logrus.WithFields(fields),
		session: board.NewSession(sessionOptions(cfg, fields)...),
	}
}

func sessionOptions(cfg Config, fields logrus.Fields) []board.Option {
	opts := []board.Option{board.WithLogFields(fields)}
	if cfg.DeferredText {
		opts = append(opts, board.WithDeferredText())
	}
	return opts
}

// SetupSocketIO builds the socket.io server hosting one board session per connection.
func SetupSocketIO(cfg Config) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	cors := &types.Cors{Origin: "*", Credentials: true}
	if len(cfg.Origins) > 0 {
		origins := make([]any, len(cfg.Origins))
		for i, o := range cfg.Origins {
			origins[i] = o
		}
		cors.Origin = origins
	}
	opts.SetCors(cors)
	srv := socketio.NewServer(nil, opts)

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}

		c := newConn(cfg, socket, string(socket.Id()))
		c.log.Info("Board session connected")
		for _, event := range clientEvents {
			//nolint:errcheck // Socket.IO event handlers do not return useful errors
			socket.On(event, func(datas ...any) {
				if isSaveEvent(event, datas) {
					go c.handle(event, datas)
					return
				}
				c.handle(event, datas)
			})
		}

		socket.On("disconnect", func(datas ...any) {
			c.close()
			socket.RemoveAllListeners("")
		})
	})

	return srv
}

// handle applies one client event to the session and reports the result.
func (c *conn) handle(event string, datas []any) {
	ack, args := extractAck(datas)
	if isSaveEvent(event, args) {
		c.save(ack)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.dispatch(event, args); err != nil {
		c.log.WithField("event", event).WithError(err).Debug("Rejected board event")
		respondWithAck(c.out, ack, EventSessionError, errorPayload(err), err)
	} else {
		respondWithAck(c.out, ack, "", map[string]any{"status": "ok"}, nil)
	}

	c.emitState()
}

// save persists the session without holding c.mu. The session guards its own state
// and leaves edits made during the save dirty.
func (c *conn) save(ack ackInvoker) {
	c.mu.Lock()
	log := c.log.WithField("event", EventSave)
	boardID := c.boardID
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := c.session.Save(ctx); err != nil {
		log.WithError(err).Warn("Board save failed")
		respondWithAck(c.out, ack, EventSaveError, errorPayload(err), err)
	} else {
		respondWithAck(c.out, ack, EventSaved, map[string]any{"status": "ok", "boardId": boardID}, nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitState()
}

func (c *conn) dispatch(event string, args []any) error {
	s := c.session
	switch event {
	case EventOpenBoard:
		return c.openBoard(args)
	case EventSelectTool:
		name, err := stringArg(args, 0, "tool")
		if err != nil {
			return err
		}
		tool, err := board.ParseTool(name)
		if err != nil {
			return err
		}
		s.SelectTool(tool)
	case EventPointerDown:
		p, target, err := pointerArg(args)
		if err != nil {
			return err
		}
		if target == "" {
			target, _ = s.HitTest(p)
		}
		s.PointerDown(p, target)
	case EventPointerMove:
		p, _, err := pointerArg(args)
		if err != nil {
			return err
		}
		s.PointerMove(p)
	case EventPointerUp:
		s.PointerUp()
	case EventPointerLeave:
		s.PointerLeave()
	case EventDoubleClick:
		var in pointerArgs
		if err := decodeArg(args, &in); err != nil {
			return err
		}
		target := in.Target
		if target == "" && in.X != nil && in.Y != nil {
			target, _ = s.HitTest(core.Point{X: *in.X, Y: *in.Y})
		}
		if target == "" {
			return fmt.Errorf("double-click needs a target")
		}
		s.DoubleClick(target)
	case EventTextChange:
		var in textArgs
		if err := decodeArg(args, &in); err != nil {
			return err
		}
		if editing, ok := s.EditTarget(); ok && (in.ID == "" || in.ID == editing) {
			s.EditText(in.Text)
			return nil
		}
		if in.ID == "" {
			return fmt.Errorf("text-change needs an element id")
		}
		s.Commit(in.ID, in.Text)
	case EventBlur:
		s.Blur()
	case EventKeyDown:
		var k board.Key
		if err := decodeArg(args, &k); err != nil {
			return err
		}
		if _, err := s.KeyDown(context.Background(), k); err != nil {
			return err
		}
	case EventDeleteActive:
		s.DeleteActive()
	default:
		return fmt.Errorf("unknown event %q", event)
	}
	return nil
}

// openBoard authenticates the socket and loads the board into the session. A board
// that does not exist yet starts empty and is created on first save.
func (c *conn) openBoard(args []any) error {
	if c.cfg.Store == nil {
		return fmt.Errorf("no board store configured")
	}
	token, err := stringArg(args, 0, "token")
	if err != nil {
		return err
	}
	boardID, err := stringArg(args, 1, "board id")
	if err != nil {
		return err
	}
	if err := core.ValidateID(boardID); err != nil {
		return err
	}
	claims, err := auth.ParseJWT(token)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	snapshot := core.NewSnapshot(nil)
	name := boardID
	existing, err := c.cfg.Store.Get(ctx, claims.Subject, boardID)
	switch {
	case err == nil:
		snapshot, err = core.DecodeSnapshot(existing.Data)
		if err != nil {
			return fmt.Errorf("stored board is corrupt: %w", err)
		}
		name = existing.Name
	case errors.Is(err, core.ErrBoardNotFound):
	default:
		return fmt.Errorf("load board: %w", err)
	}

	c.session.Load(snapshot)
	c.session.SetPersister(stores.NewPersister(c.cfg.Store, claims.Subject, boardID, name))
	c.userID = claims.Subject
	c.boardID = boardID
	c.log = c.log.WithFields(logrus.Fields{"user_id": c.userID, "board_id": c.boardID})
	c.log.WithField("elements", len(snapshot.Elements)).Info("Board opened")
	return nil
}

func (c *conn) emitState() {
	if err := c.out.Emit(EventBoardState, c.session.Status()); err != nil {
		c.log.WithError(err).Warn("Failed to emit board state")
	}
}

func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Close()
	c.log.Info("Board session disconnected")
}

func isSaveEvent(event string, args []any) bool {
	if event == EventSave {
		return true
	}
	var k board.Key
	return event == EventKeyDown && decodeArg(args, &k) == nil && k.IsSave()
}

func errorPayload(err error) map[string]any {
	return map[string]any{"status": "error", "error": err.Error()}
}

// decodeArg converts the first event argument, as decoded by socket.io, into into.
func decodeArg(args []any, into any) error {
	if len(args) == 0 || args[0] == nil {
		return fmt.Errorf("missing event payload")
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		return fmt.Errorf("invalid event payload: %w", err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("invalid event payload: %w", err)
	}
	return nil
}

func stringArg(args []any, i int, what string) (string, error) {
	if len(args) <= i {
		return "", fmt.Errorf("%s is required", what)
	}
	s, ok := args[i].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("invalid %s", what)
	}
	return s, nil
}

func pointerArg(args []any) (core.Point, string, error) {
	var in pointerArgs
	if err := decodeArg(args, &in); err != nil {
		return core.Point{}, "", err
	}
	if in.X == nil || in.Y == nil {
		return core.Point{}, "", fmt.Errorf("pointer event needs x and y")
	}
	return core.Point{X: *in.X, Y: *in.Y}, in.Target, nil
}
