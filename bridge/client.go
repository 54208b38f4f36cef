// bridge/client.go
// Copyright(c) 2024-2026 AICopilotFS contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/Plane14/AICopilotFS-sub000/aviation"
	"github.com/Plane14/AICopilotFS-sub000/log"
	"github.com/Plane14/AICopilotFS-sub000/util"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Sim names a supported simulator.
type Sim string

const (
	SimMSFS2024 Sim = "msfs2024"
	SimP3Dv6    Sim = "p3dv6"
)

// DefaultAddress returns the address the simulator's bridge plugin
// listens on.
func DefaultAddress(sim Sim) string {
	switch sim {
	case SimP3Dv6:
		return "localhost:8767"
	default:
		return "localhost:8766"
	}
}

// callDeadline bounds each round trip so a stalled simulator costs at
// most one control tick.
const callDeadline = 40 * time.Millisecond

// request is one poll or command sent to the bridge plugin.
type request struct {
	Verb    string   `msgpack:"verb"` // "state", "autopilot", or "command"
	Command *Command `msgpack:"command,omitempty"`
}

type response struct {
	State     *aviation.AircraftState  `msgpack:"state,omitempty"`
	Autopilot *aviation.AutopilotState `msgpack:"autopilot,omitempty"`
	Error     string                   `msgpack:"error,omitempty"`
}

// Client talks to the simulator's bridge plugin over a websocket,
// one request/response round trip at a time.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
	sim  Sim
	lg   *log.Logger
}

// Dial connects to the bridge plugin; an empty addr uses the
// simulator's default.
func Dial(sim Sim, addr string, lg *log.Logger) (*Client, error) {
	addr = util.Select(addr != "", addr, DefaultAddress(sim))
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/bridge", nil)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %v: %w", sim, addr, err, ErrBridgeUnavailable)
	}
	lg.Infof("connected to %s bridge at %s", sim, addr)
	return &Client{conn: conn, sim: sim, lg: lg}, nil
}

func (c *Client) roundTrip(req request) (response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := msgpack.Marshal(req)
	if err != nil {
		return response{}, err
	}

	deadline := time.Now().Add(callDeadline)
	c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return response{}, fmt.Errorf("%s write: %v: %w", req.Verb, err, ErrBridgeUnavailable)
	}

	c.conn.SetReadDeadline(deadline)
	_, rb, err := c.conn.ReadMessage()
	if err != nil {
		return response{}, fmt.Errorf("%s read: %v: %w", req.Verb, err, ErrBridgeUnavailable)
	}

	var resp response
	if err := msgpack.Unmarshal(rb, &resp); err != nil {
		return response{}, fmt.Errorf("%s response: %w", req.Verb, err)
	}
	if resp.Error != "" {
		return response{}, fmt.Errorf("%s: %s", req.Verb, resp.Error)
	}
	return resp, nil
}

func (c *Client) State() (aviation.AircraftState, error) {
	resp, err := c.roundTrip(request{Verb: "state"})
	if err != nil {
		return aviation.AircraftState{}, err
	}
	if resp.State == nil {
		return aviation.AircraftState{}, fmt.Errorf("state: empty response")
	}
	return *resp.State, nil
}

func (c *Client) Autopilot() (aviation.AutopilotState, error) {
	resp, err := c.roundTrip(request{Verb: "autopilot"})
	if err != nil {
		return aviation.AutopilotState{}, err
	}
	if resp.Autopilot == nil {
		return aviation.AutopilotState{}, fmt.Errorf("autopilot: empty response")
	}
	return *resp.Autopilot, nil
}

func (c *Client) Send(cmd Command) error {
	_, err := c.roundTrip(request{Verb: "command", Command: &cmd})
	return err
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
