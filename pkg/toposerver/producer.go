package toposerver

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fjordlab/memtopo/pkg/topo"
)

// The producer distributes published documents to the websockets. There
// might be more than one client connected so documents are dispatched to
// more than one channel.
//
// If one of the clients stops listening the channel will block and we close
// and drop the channel.

const clientSendTimeout = 10 * time.Millisecond

type docProducer struct {
	mutex *sync.Mutex
	chans []chan *topo.Document
}

func newDocProducer() *docProducer {
	return &docProducer{mutex: &sync.Mutex{}}
}

func (p *docProducer) Send(doc *topo.Document) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	keep := p.chans[:0]
	for _, ch := range p.chans {
		select {
		case ch <- doc:
			keep = append(keep, ch)
		case <-time.After(clientSendTimeout):
			log.Info("Closing socket since it timed out")
			close(ch)
		}
	}
	p.chans = keep
}

func (p *docProducer) Messages() <-chan *topo.Document {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	ch := make(chan *topo.Document)
	p.chans = append(p.chans, ch)
	return ch
}

func (p *docProducer) Done(ch <-chan *topo.Document) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for i, v := range p.chans {
		if v == ch {
			p.chans = append(p.chans[:i], p.chans[i+1:]...)
			return
		}
	}
}
