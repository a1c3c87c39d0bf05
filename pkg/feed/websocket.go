package feed

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/fjordlab/memtopo/pkg/topo"
)

// WebsocketParameters configures the streaming websocket source.
// The struct uses annotations from Kong (https://github.com/alecthomas/kong)
type WebsocketParameters struct {
	Endpoint          string        `kong:"help='Websocket URI streaming topology documents'"`
	ReconnectInterval time.Duration `kong:"help='Wait between reconnect attempts',default='5s'"`
}

// NewWebsocketSource dials a websocket URI and treats every received message
// as a topology document. The connection is redialed until Stop.
func NewWebsocketSource(params WebsocketParameters) Source {
	return &websocketSource{
		params: params,
		mutex:  &sync.Mutex{},
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

type websocketSource struct {
	params  WebsocketParameters
	mutex   *sync.Mutex
	conn    *websocket.Conn
	sink    Sink
	started atomic.Bool
	stopped atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func (w *websocketSource) Start(sink Sink) error {
	if w.params.Endpoint == "" {
		return errors.New("no websocket URI configured")
	}
	// Kong fills the default for the CLI case; this covers programmatic use.
	if w.params.ReconnectInterval <= 0 {
		w.params.ReconnectInterval = 5 * time.Second
	}
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("source already started")
	}
	w.sink = sink
	go w.readLoop()
	return nil
}

func (w *websocketSource) Stop() error {
	if !w.started.Load() {
		return errors.New("source is not started")
	}
	w.stopped.Store(true)
	close(w.stopCh)
	w.mutex.Lock()
	if w.conn != nil {
		w.conn.Close()
	}
	w.mutex.Unlock()
	<-w.doneCh
	return nil
}

func (w *websocketSource) readLoop() {
	defer close(w.doneCh)
	for !w.stopped.Load() {
		conn, _, err := websocket.DefaultDialer.Dial(w.params.Endpoint, nil)
		if err != nil {
			log.WithError(err).WithField("endpoint", w.params.Endpoint).Warning("Can't reach topology stream")
			select {
			case <-w.stopCh:
				return
			case <-time.After(w.params.ReconnectInterval):
			}
			continue
		}
		w.mutex.Lock()
		w.conn = conn
		w.mutex.Unlock()

		w.consume(conn)

		w.mutex.Lock()
		w.conn = nil
		w.mutex.Unlock()
		conn.Close()
	}
}

// consume reads documents off one connection until it breaks.
func (w *websocketSource) consume(conn *websocket.Conn) {
	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			if !w.stopped.Load() {
				log.WithError(err).Warning("Topology stream closed, reconnecting")
			}
			return
		}
		doc, err := topo.Load(buf)
		if err != nil {
			log.WithError(err).Warning("Skipping malformed topology document")
			continue
		}
		w.sink(doc)
	}
}
