package feed

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgryski/go-farm"
	"github.com/go-zookeeper/zk"
	log "github.com/sirupsen/logrus"

	"github.com/fjordlab/memtopo/pkg/topo"
)

// ZooKeeperParameters configures the ZooKeeper source.
// The struct uses annotations from Kong (https://github.com/alecthomas/kong)
type ZooKeeperParameters struct {
	Servers        string        `kong:"help='Comma-separated list of ZooKeeper servers',default='localhost:2181'"`
	Path           string        `kong:"help='Znode holding the topology document',default='/memtopo/topology'"`
	SessionTimeout time.Duration `kong:"help='ZooKeeper session timeout',default='5s'"`
	RetryInterval  time.Duration `kong:"help='Wait before retrying a failed watch',default='2s'"`
}

// ServerList splits the servers parameter into the form zk.Connect expects.
func (p *ZooKeeperParameters) ServerList() []string {
	var ret []string
	for _, s := range strings.Split(p.Servers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			ret = append(ret, s)
		}
	}
	return ret
}

// NewZooKeeperSource watches a znode holding the topology document and
// delivers it whenever the data changes. The connection is established in the
// background, so an unreachable ensemble during Start is not an error.
func NewZooKeeperSource(params ZooKeeperParameters) Source {
	return &zkSource{
		params: params,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

type zkSource struct {
	params      ZooKeeperParameters
	conn        *zk.Conn
	sink        Sink
	fingerprint uint32
	started     atomic.Bool
	stopCh      chan struct{}
	doneCh      chan struct{}
}

func (z *zkSource) Start(sink Sink) error {
	servers := z.params.ServerList()
	if len(servers) == 0 {
		return errors.New("no ZooKeeper servers configured")
	}
	if z.params.Path == "" {
		return errors.New("no topology znode configured")
	}
	// Kong fills the defaults for the CLI case; this covers programmatic use.
	if z.params.SessionTimeout <= 0 {
		z.params.SessionTimeout = 5 * time.Second
	}
	if z.params.RetryInterval <= 0 {
		z.params.RetryInterval = 2 * time.Second
	}
	if !z.started.CompareAndSwap(false, true) {
		return errors.New("source already started")
	}
	conn, _, err := zk.Connect(servers, z.params.SessionTimeout, zk.WithLogger(&zkLogger{}))
	if err != nil {
		z.started.Store(false)
		return err
	}
	z.conn = conn
	z.sink = sink
	go z.watchLoop()
	return nil
}

func (z *zkSource) Stop() error {
	if !z.started.Load() {
		return errors.New("source is not started")
	}
	close(z.stopCh)
	// Closing the connection fires the pending watch so the loop can exit.
	z.conn.Close()
	<-z.doneCh
	return nil
}

// watchLoop re-arms a data watch on the topology znode. Watches are one-shot
// in ZooKeeper so the document is read again after every event.
func (z *zkSource) watchLoop() {
	defer close(z.doneCh)
	for {
		select {
		case <-z.stopCh:
			return
		default:
		}
		buf, _, watch, err := z.conn.GetW(z.params.Path)
		if err != nil {
			log.WithError(err).WithField("path", z.params.Path).Warning("Topology znode unavailable")
			select {
			case <-z.stopCh:
				return
			case <-time.After(z.params.RetryInterval):
			}
			continue
		}
		z.deliver(buf)
		select {
		case <-z.stopCh:
			return
		case <-watch:
		}
	}
}

// deliver runs on the watch goroutine only, so the fingerprint needs no lock.
func (z *zkSource) deliver(buf []byte) {
	fp := farm.Fingerprint32(buf)
	if fp == z.fingerprint {
		return
	}
	doc, err := topo.Load(buf)
	if err != nil {
		log.WithError(err).WithField("path", z.params.Path).Warning("Skipping malformed topology document")
		return
	}
	z.fingerprint = fp
	z.sink(doc)
}

// zkLogger routes the client's chatter to the debug level.
type zkLogger struct {
}

func (z *zkLogger) Printf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}
