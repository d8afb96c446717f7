package tileserver

import (
	"encoding/binary"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/gogpu/fractile"
)

// maxMessageBytes bounds incoming websocket messages. Tile messages are
// small JSON objects.
const maxMessageBytes = 4 << 10

// TileMessage asks for one raw tile over the websocket. Zero Iterations,
// Exponent and Size take the server defaults.
type TileMessage struct {
	ID         uint32  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Iterations uint32  `json:"iterations,omitempty"`
	Exponent   uint32  `json:"exponent,omitempty"`
	Size       int     `json:"size,omitempty"`
}

// TileError is sent as a text message when a tile cannot be rendered.
type TileError struct {
	ID    uint32 `json:"id"`
	Error string `json:"error"`
}

// query exposes the optional fields as query parameters so websocket and
// HTTP requests share validation.
func (m TileMessage) query() queryGetter {
	q := messageQuery{}
	if m.Iterations != 0 {
		q["iterations"] = strconv.FormatUint(uint64(m.Iterations), 10)
	}
	if m.Exponent != 0 {
		q["exponent"] = strconv.FormatUint(uint64(m.Exponent), 10)
	}
	if m.Size != 0 {
		q["size"] = strconv.Itoa(m.Size)
	}
	return q
}

type messageQuery map[string]string

func (q messageQuery) Get(key string) string { return q[key] }

// handleWebsocket streams tiles to a canvas client. Each text message is a
// TileMessage; each reply is a binary message holding the big-endian
// request id followed by the RGBA bytes. Requests on one connection are
// served in order.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.AllowedOrigins,
	})
	if err != nil {
		fractile.Logger().Warn("tileserver: websocket accept", "err", err)
		return
	}
	defer func() { _ = c.CloseNow() }()
	c.SetReadLimit(maxMessageBytes)

	ctx := r.Context()
	log := fractile.Logger().With("remote", r.RemoteAddr)
	log.Debug("tileserver: websocket open")

	for {
		var msg TileMessage
		if err := wsjson.Read(ctx, c, &msg); err != nil {
			switch {
			case websocket.CloseStatus(err) == websocket.StatusNormalClosure,
				websocket.CloseStatus(err) == websocket.StatusGoingAway:
				log.Debug("tileserver: websocket closed")
			case ctx.Err() != nil:
				log.Debug("tileserver: websocket ended by shutdown")
			default:
				log.Warn("tileserver: websocket read", "err", err)
			}
			return
		}

		data, err := s.messageTile(msg)
		if err != nil {
			if werr := wsjson.Write(ctx, c, TileError{ID: msg.ID, Error: err.Error()}); werr != nil {
				log.Warn("tileserver: websocket write", "err", werr)
				return
			}
			continue
		}

		frame := make([]byte, 4+len(data))
		binary.BigEndian.PutUint32(frame, msg.ID)
		copy(frame[4:], data)
		if err := c.Write(ctx, websocket.MessageBinary, frame); err != nil {
			log.Warn("tileserver: websocket write", "err", err)
			return
		}
	}
}

func (s *Server) messageTile(m TileMessage) ([]byte, error) {
	req, err := s.buildRequest(m.Z, m.X, m.Y, m.query())
	if err != nil {
		return nil, err
	}
	return s.raw(req)
}
