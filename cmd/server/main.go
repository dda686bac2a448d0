package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stadiumsim/simulator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
}

// Client message types
type ClientMessage struct {
	Type   string               `json:"type"`
	Config *simulator.SimConfig `json:"config,omitempty"`
}

// Server message types
type ServerMessage struct {
	Type     string                    `json:"type"`
	Running  *bool                     `json:"running,omitempty"`
	Config   *simulator.SimConfig      `json:"config,omitempty"`
	Snapshot *simulator.Snapshot       `json:"snapshot,omitempty"`
	Actions  []simulator.ControlAction `json:"actions,omitempty"`
	Summary  *simulator.Summary        `json:"summary,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

// simState manages one client's engine and UI pacing. The engine is
// single-threaded; the mutex serializes the UI ticker and the command
// handler.
type simState struct {
	engine *simulator.Engine
	config *simulator.SimConfig
	// Virtual minutes advanced per UI tick.
	stepSize float64
	running  bool
	paused   bool
	mu       sync.Mutex
	stopCh   chan struct{}
}

func newSimState(cfg *simulator.SimConfig, stepSize float64) (*simState, error) {
	engine, err := simulator.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &simState{
		engine:   engine,
		config:   cfg,
		stepSize: stepSize,
		stopCh:   make(chan struct{}),
	}, nil
}

func (s *simState) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.paused = false
}

func (s *simState) pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// reset discards the engine and rebuilds it from the current config,
// restarting virtual time from zero.
func (s *simState) reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	engine, err := simulator.NewEngine(s.config)
	if err != nil {
		return err
	}
	s.engine = engine
	s.running = false
	s.paused = false
	return nil
}

// updateConfig validates and swaps in a new config. Takes effect on
// the next reset; a running engine keeps its original parameters.
func (s *simState) updateConfig(cfg *simulator.SimConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	return nil
}

func (s *simState) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && !s.paused
}

func (s *simState) getConfig() *simulator.SimConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// step advances the engine by one UI tick of virtual time.
func (s *simState) step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && !s.paused {
		s.engine.Step(s.stepSize)
		if s.engine.Now() >= s.config.Horizon {
			s.running = false
		}
	}
}

func (s *simState) latest() (simulator.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Collector().Latest()
}

func (s *simState) actions() []simulator.ControlAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Controller().Actions()
}

func (s *simState) summary() simulator.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Results().Summary
}

func (s *simState) stop() {
	close(s.stopCh)
}

// uiUpdateLoop periodically steps the engine and pushes the latest
// snapshot and action log to the client. Runs in its own goroutine and
// controls UI pacing.
func uiUpdateLoop(conn *safeConn, state *simState) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-state.stopCh:
			log.Println("UI update loop stopping")
			return

		case <-ticker.C:
			if !state.isRunning() {
				continue
			}
			state.step()

			if snap, ok := state.latest(); ok {
				updatePrometheusMetrics(snap, state)
				msg := ServerMessage{Type: "snapshot", Snapshot: &snap}
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("Error sending snapshot: %v", err)
					return
				}
			}

			actionsMsg := ServerMessage{Type: "actions", Actions: state.actions()}
			if err := conn.WriteJSON(actionsMsg); err != nil {
				log.Printf("Error sending actions: %v", err)
				return
			}
		}
	}
}

// safeConn wraps a WebSocket connection with a mutex to prevent concurrent writes
type safeConn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func (sc *safeConn) WriteJSON(v interface{}) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return sc.Conn.WriteJSON(v)
}

func (sc *safeConn) status(state *simState, running bool) error {
	return sc.WriteJSON(ServerMessage{
		Type:    "status",
		Running: &running,
		Config:  state.getConfig(),
	})
}

func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()

	safeConn := &safeConn{Conn: conn}

	log.Println("Client connected")

	state, err := newSimState(simulator.DefaultConfig(), uiStepSize)
	if err != nil {
		log.Printf("Error creating engine: %v", err)
		return
	}

	if err := safeConn.status(state, false); err != nil {
		log.Printf("Error sending status: %v", err)
		return
	}

	go uiUpdateLoop(safeConn, state)

	for {
		var msg ClientMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			break
		}

		log.Printf("Received command: %s", msg.Type)

		switch msg.Type {
		case "start":
			state.start()
			safeConn.status(state, true)

		case "pause":
			state.pause()
			safeConn.status(state, false)

		case "reset":
			if err := state.reset(); err != nil {
				log.Printf("Error resetting engine: %v", err)
				safeConn.WriteJSON(ServerMessage{Type: "error", Error: err.Error()})
				break
			}
			safeConn.status(state, false)

		case "summary":
			summary := state.summary()
			safeConn.WriteJSON(ServerMessage{Type: "summary", Summary: &summary})

		case "config_update":
			if msg.Config == nil {
				break
			}
			if err := state.updateConfig(msg.Config); err != nil {
				log.Printf("Error updating config: %v", err)
				safeConn.WriteJSON(ServerMessage{Type: "error", Error: err.Error()})
				break
			}
			safeConn.status(state, state.isRunning())
		}
	}

	state.stop()
	log.Println("Client disconnected")
}

func quitHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Shutdown requested via /quitquitquit")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Server shutting down...")

	go func() {
		time.Sleep(100 * time.Millisecond)
		log.Println("Server stopped")
		os.Exit(0)
	}()
}

var uiStepSize float64

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Float64Var(&uiStepSize, "step", 1.0, "Virtual minutes advanced per UI tick")
	flag.Parse()

	initPrometheusMetrics()

	http.HandleFunc("/ws", handleWebSocket)
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/quitquitquit", quitHandler)

	log.Printf("Server starting on http://localhost%s", *addr)
	log.Printf("WebSocket endpoint: ws://localhost%s/ws", *addr)
	log.Printf("Prometheus metrics: http://localhost%s/metrics", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
