// Package discovery advertises hosted games over UDP broadcast so clients
// on the same LAN can find them without typing an address.
package discovery

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPort is the UDP port used for room discovery.
	DefaultPort = 9998
	// BroadcastInterval is how often hosts advertise their room.
	BroadcastInterval = 1 * time.Second
	// RoomExpiry is how long a room stays visible after its last broadcast.
	RoomExpiry = 4 * time.Second
)

// RoomInfo describes a hosted game.
type RoomInfo struct {
	Host       string `json:"host"`
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	GameAddr   string `json:"game_addr"` // TCP host:port to connect to
}

// Joinable reports whether the room still has a free seat in its lobby.
func (r RoomInfo) Joinable() bool {
	return r.Status == "lobby" && r.Players < r.MaxPlayers
}

// Broadcaster periodically advertises a room. The info function is called
// before every broadcast so the advertisement tracks the live game.
type Broadcaster struct {
	port int
	info func() RoomInfo
	log  *zap.Logger
}

// NewBroadcaster advertises info on port.
func NewBroadcaster(port int, info func() RoomInfo, log *zap.Logger) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{port: port, info: info, log: log.Named("discovery")}
}

// Run broadcasts until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	// ListenPacket, not DialUDP: broadcasting to 255.255.255.255 needs an
	// unconnected socket on Linux.
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("broadcast socket: %w", err)
	}
	defer conn.Close()

	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()

	for {
		b.send(conn)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (b *Broadcaster) send(conn net.PacketConn) {
	data, err := json.Marshal(b.info())
	if err != nil {
		b.log.Warn("encode room", zap.Error(err))
		return
	}
	for _, ip := range b.destinations() {
		if _, err := conn.WriteTo(data, &net.UDPAddr{IP: ip, Port: b.port}); err != nil {
			b.log.Debug("broadcast failed", zap.Stringer("dst", ip), zap.Error(err))
		}
	}
}

// destinations lists loopback (same-machine clients), the global broadcast
// address, and each interface's directed broadcast address.
func (b *Broadcaster) destinations() []net.IP {
	dst := []net.IP{net.IPv4(127, 0, 0, 1), net.IPv4bcast}

	ifaces, err := net.Interfaces()
	if err != nil {
		return dst
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagBroadcast == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			dst = append(dst, directedBroadcast(ipnet))
		}
	}
	return dst
}

// directedBroadcast returns IP | ^Mask.
func directedBroadcast(n *net.IPNet) net.IP {
	ip4 := n.IP.To4()
	mask := n.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	out := make(net.IP, net.IPv4len)
	for i := range out {
		out[i] = ip4[i] | ^mask[i]
	}
	return out
}

// Listener collects room advertisements.
type Listener struct {
	port  int
	rooms map[string]seenRoom // keyed by GameAddr
	mu    sync.Mutex
}

type seenRoom struct {
	info RoomInfo
	seen time.Time
}

// NewListener listens on port once Run is called.
func NewListener(port int) *Listener {
	return &Listener{port: port, rooms: make(map[string]seenRoom)}
}

// Run receives advertisements until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: l.port})
	if err != nil {
		return fmt.Errorf("listen UDP on port %d: %w (is another instance browsing?)", l.port, err)
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 4096)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		var info RoomInfo
		if err := json.Unmarshal(buf[:n], &info); err != nil || info.GameAddr == "" {
			continue
		}
		l.observe(info, time.Now())
	}
}

func (l *Listener) observe(info RoomInfo, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rooms[info.GameAddr] = seenRoom{info: info, seen: at}
}

// Rooms returns the rooms heard from within RoomExpiry of now, sorted by
// address.
func (l *Listener) Rooms(now time.Time) []RoomInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	rooms := make([]RoomInfo, 0, len(l.rooms))
	for addr, r := range l.rooms {
		if now.Sub(r.seen) > RoomExpiry {
			delete(l.rooms, addr)
			continue
		}
		rooms = append(rooms, r.info)
	}
	slices.SortFunc(rooms, func(a, b RoomInfo) int { return cmp.Compare(a.GameAddr, b.GameAddr) })
	return rooms
}

// Find listens until a joinable room shows up or ctx ends.
func Find(ctx context.Context, port int) (RoomInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := NewListener(port)
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-errCh:
			if err != nil {
				return RoomInfo{}, err
			}
			return RoomInfo{}, ctx.Err()
		case <-ctx.Done():
			return RoomInfo{}, fmt.Errorf("no game found: %w", ctx.Err())
		case now := <-ticker.C:
			for _, r := range l.Rooms(now) {
				if r.Joinable() {
					return r, nil
				}
			}
		}
	}
}
