package http

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/joshua-hq/warroom/pkg/domain/model/errs"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/domain/types"
	"github.com/joshua-hq/warroom/pkg/service/share"
	"github.com/joshua-hq/warroom/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
)

const identityHeader = "X-Warroom-Identity"

// Server is the HTTP gateway binding the sync core for web clients.
// Each client obtains an identity once, then passes it as a header;
// the gateway keeps one session controller per identity. Live
// snapshots are delivered over the websocket endpoint, not here.
type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	appID  string

	mu       sync.RWMutex
	sessions map[types.IdentityID]*usecase.Controller
}

type Option func(*Server)

// WithWebSocket mounts the live snapshot endpoint.
func WithWebSocket(handler http.HandlerFunc) Option {
	return func(s *Server) {
		s.router.Get("/ws", handler)
	}
}

// WithAppID sets the app namespace used for the shared war room link.
func WithAppID(appID string) Option {
	return func(s *Server) {
		s.appID = appID
	}
}

func New(uc *usecase.UseCases, opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		uc:       uc,
		sessions: make(map[types.IdentityID]*usecase.Controller),
	}

	s.router.Use(loggingMiddleware)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/identity", s.handleIdentity)
		r.Post("/gate", s.handleGate)
		r.Get("/warroom", s.handleWarRoom)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", s.handleListReports)
			r.Post("/", s.handleSubmitReport)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/", s.handleListMessages)
			r.Post("/", s.handleSendMessage)
		})
	})

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// session resolves the caller's controller from the identity header.
func (s *Server) session(r *http.Request) (*usecase.Controller, error) {
	id := types.IdentityID(r.Header.Get(identityHeader))
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "missing or invalid identity header", goerr.T(errs.TagValidation))
	}

	s.mu.RLock()
	ctrl, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, goerr.New("unknown identity", goerr.T(errs.TagValidation), goerr.V("identity_id", id))
	}
	return ctrl, nil
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleIdentity(w http.ResponseWriter, r *http.Request) {
	id := types.NewIdentityID()
	ctrl, err := s.uc.NewSessionWith(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	s.mu.Lock()
	s.sessions[id] = ctrl
	s.mu.Unlock()

	respondJSON(w, http.StatusCreated, map[string]string{"identity_id": id.String()})
}

func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.session(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(err, "invalid gate request", goerr.T(errs.TagValidation)))
		return
	}

	if err := ctrl.Unlock(r.Context(), req.Code); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWarRoom(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"url": share.WarRoomURL(s.appID)})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.uc.Store().ListReports(r.Context(), 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.session(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var in report.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleError(w, r, goerr.Wrap(err, "invalid report request", goerr.T(errs.TagValidation)))
		return
	}

	fb, err := ctrl.SubmitReport(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, fb)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.uc.Store().ListMessages(r.Context(), s.uc.ChatWindow())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.session(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(err, "invalid chat request", goerr.T(errs.TagValidation)))
		return
	}

	if err := ctrl.SendMessage(r.Context(), req.Text); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
