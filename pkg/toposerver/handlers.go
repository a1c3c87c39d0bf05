package toposerver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/fjordlab/memtopo/pkg/topo"
)

const contentTypeJSON = "application/json"

// Posted documents larger than this are rejected outright.
const maxDocumentSize = 1 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Revision int64  `json:"rev"`
}

type server struct {
	store    *documentStore
	producer *docProducer
}

func newServer() *server {
	return &server{
		store:    newDocumentStore(),
		producer: newDocProducer(),
	}
}

// publish is the sink for the optional file source. Documents the store
// rejects are logged and skipped.
func (s *server) publish(doc *topo.Document) {
	if err := s.apply(doc); err != nil {
		log.WithError(err).Warning("Skipping topology document")
	}
}

func (s *server) apply(doc *topo.Document) error {
	if err := s.store.Set(doc); err != nil {
		return err
	}
	log.WithField("document", doc.String()).Info("Topology document published")
	s.producer.Send(doc)
	return nil
}

func (s *server) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/topology", s.handleGet)
	r.Post("/topology", s.handlePost)
	r.Get("/topologyws", s.handleWebsocket)
	return r
}

func (s *server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warning("Error encoding response")
	}
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	buf := s.store.JSON()
	if buf == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no topology published"})
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	if _, err := w.Write(buf); err != nil {
		log.WithError(err).Warning("Error writing topology response")
	}
}

func (s *server) handlePost(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	buf, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unable to read request"})
		return
	}
	doc, err := topo.Load(buf)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.apply(doc); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errStaleRevision) {
			status = http.StatusConflict
		}
		s.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Revision: doc.Revision})
}

func (s *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("Unable to upgrade connection")
		return
	}
	defer conn.Close()

	// Send the current document first
	initial := s.store.Document()
	if initial != nil {
		if err := conn.WriteJSON(initial); err != nil {
			log.WithError(err).Error("error writing message")
			return
		}
	}

	p := s.producer.Messages()
	defer s.producer.Done(p)

	// A document published between the first write and the subscription
	// would otherwise be lost until the next update.
	if doc := s.store.Document(); doc != nil && (initial == nil || doc.Revision > initial.Revision) {
		if err := conn.WriteJSON(doc); err != nil {
			log.WithError(err).Error("error writing message")
			return
		}
	}

	// ...then forward updates as they are published
	for doc := range p {
		if err := conn.WriteJSON(doc); err != nil {
			log.WithError(err).Error("error writing message")
			return
		}
	}
}
