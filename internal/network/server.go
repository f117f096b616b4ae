package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amalg/go-battlecity/internal/game"
)

// Server hosts the game and manages client connections.
type Server struct {
	engine   *game.Engine
	addr     string
	log      *zap.Logger
	listener net.Listener
	clients  map[string]*clientConn
	mu       sync.RWMutex
	done     chan struct{}
	stopOnce sync.Once
}

// clientConn represents a connected client.
type clientConn struct {
	conn     net.Conn
	playerID string
	mu       sync.Mutex
}

// NewServer wraps engine in a TCP host listening on addr.
func NewServer(addr string, engine *game.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		engine:  engine,
		addr:    addr,
		log:     log.Named("server"),
		clients: make(map[string]*clientConn),
		done:    make(chan struct{}),
	}

	// Receives a pre-copied snapshot from the engine
	engine.OnTick(s.broadcastState)

	return s
}

// Engine returns the underlying game engine.
func (s *Server) Engine() *game.Engine {
	return s.engine
}

// Listen binds the listening socket. Clients may dial as soon as it returns.
func (s *Server) Listen() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = l
	s.log.Info("listening", zap.Stringer("addr", l.Addr()))
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the game loop and accepts clients until ctx is cancelled or
// Stop is called. It calls Listen if that has not happened yet.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.engine.Run(gctx)
		return nil
	})
	g.Go(s.acceptLoop)
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.done:
		}
		s.Stop()
		return nil
	})
	return g.Wait()
}

// Stop shuts down the server. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.engine.Stop()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.RLock()
		for _, c := range s.clients {
			c.conn.Close()
		}
		s.mu.RUnlock()
	})
}

// StartGame starts the game from lobby to running.
func (s *Server) StartGame() error {
	return s.engine.StartGame()
}

func (s *Server) acceptLoop() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		go s.handleClient(conn)
	}
}

// handleClient seats the connection and then feeds its frames to the
// engine until it drops.
func (s *Server) handleClient(conn net.Conn) {
	defer conn.Close()

	cc, err := s.admit(conn)
	if err != nil {
		s.log.Info("join refused", zap.Stringer("remote", conn.RemoteAddr()), zap.Error(err))
		_ = WriteFrame(conn, MsgError, ErrorMsg{Message: err.Error()})
		return
	}
	log := s.log.With(zap.String("player", cc.playerID))

	for {
		env, err := ReadFrame(conn)
		if err != nil {
			log.Info("player disconnected", zap.Error(err))
			s.removeClient(cc.playerID)
			return
		}
		s.dispatch(cc, env, log)
	}
}

// admit runs the join handshake. The welcome must be the first frame a
// client reads, so the connection joins the broadcast list only after it
// is written.
func (s *Server) admit(conn net.Conn) (*clientConn, error) {
	env, err := ReadFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("read join: %w", err)
	}
	if env.Type != MsgJoin {
		return nil, fmt.Errorf("expected join, got %s", env.Type)
	}
	join, err := Payload[JoinMsg](env)
	if err != nil {
		return nil, err
	}

	cc := &clientConn{conn: conn, playerID: uuid.NewString()}
	if err := s.engine.AddPlayer(cc.playerID, join.Name); err != nil {
		return nil, err
	}

	snap := s.engine.Snapshot()
	welcome := WelcomeMsg{PlayerID: cc.playerID, Config: s.engine.Config}
	for _, p := range snap.Players {
		if p.ID == cc.playerID {
			welcome.Owner = p.Owner
		}
	}
	if err := WriteFrame(conn, MsgWelcome, welcome); err != nil {
		s.engine.RemovePlayer(cc.playerID)
		return nil, fmt.Errorf("send welcome: %w", err)
	}
	s.sendStateTo(cc, snap)

	s.mu.Lock()
	s.clients[cc.playerID] = cc
	s.mu.Unlock()
	s.log.Info("player connected",
		zap.String("player", cc.playerID),
		zap.String("name", join.Name),
		zap.Stringer("owner", welcome.Owner),
		zap.Stringer("remote", conn.RemoteAddr()),
	)
	return cc, nil
}

// dispatch applies one client frame.
func (s *Server) dispatch(cc *clientConn, env *Envelope, log *zap.Logger) {
	switch env.Type {
	case MsgIntent:
		intent, err := Payload[IntentMsg](env)
		if err != nil {
			log.Warn("invalid intent", zap.Error(err))
			return
		}
		s.engine.EnqueueAction(game.Action{
			PlayerID: cc.playerID,
			Type:     intent.ActionType,
			Dir:      intent.Direction,
		})
	case MsgStart:
		if err := s.engine.StartGame(); err != nil {
			cc.mu.Lock()
			_ = WriteFrame(cc.conn, MsgError, ErrorMsg{Message: err.Error()})
			cc.mu.Unlock()
		}
	default:
		log.Warn("unknown message type", zap.String("type", string(env.Type)))
	}
}

func (s *Server) removeClient(playerID string) {
	s.mu.Lock()
	if cc, ok := s.clients[playerID]; ok {
		cc.conn.Close()
		delete(s.clients, playerID)
	}
	s.mu.Unlock()
	s.engine.RemovePlayer(playerID)
}

func (s *Server) broadcastState(snap game.Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, cc := range s.clients {
		s.sendStateTo(cc, snap)
	}
}

func (s *Server) sendStateTo(cc *clientConn, snap game.Snapshot) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if err := WriteFrame(cc.conn, MsgState, StateMsg{State: snap}); err != nil {
		s.log.Debug("send state failed", zap.String("player", cc.playerID), zap.Error(err))
	}
}

// LocalAddrs lists the IPv4 addresses other machines can dial on port.
func LocalAddrs(port int) []string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var out []string
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			out = append(out, fmt.Sprintf("%s:%d", ipnet.IP, port))
		}
	}
	return out
}
