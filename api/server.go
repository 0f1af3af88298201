package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"lootdogs/game/engine"
	"lootdogs/game/service"
)

const (
	codeInvalidArgument = "invalidArgument"
	codeMapNotFound     = "mapNotFound"
	codeBadRequest      = "badRequest"
	codeInvalidMethod   = "invalidMethod"
	codeInvalidToken    = "invalidToken"
	codeUnknownToken    = "unknownToken"
)

const maxRecordsPage = 100

// Config carries the server options that vary by deployment.
type Config struct {
	// ManualTick exposes POST /game/tick instead of running on a timer.
	ManualTick bool
	// WWWRoot is the directory of the static frontend; empty disables it.
	WWWRoot string
	// WS handles websocket upgrades at /ws; nil disables it.
	WS http.Handler
	// Log receives one entry per request and response.
	Log zerolog.Logger
}

// Server is the REST API server.
type Server struct {
	service service.GameService
	router  *mux.Router
	cfg     Config
}

// NewServer creates the API server around a game service.
func NewServer(gameService service.GameService, cfg Config) *Server {
	s := &Server{
		service: gameService,
		router:  mux.NewRouter(),
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes. Each endpoint registers a trailing
// catch-all that answers 405 with the correct Allow header.
func (s *Server) setupRoutes() {
	s.router.Use(s.logMiddleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/maps", s.handleListMaps).Methods("GET", "HEAD")
	api.HandleFunc("/maps", s.invalidMethod("GET, HEAD"))
	api.HandleFunc("/maps/{id}", s.handleGetMap).Methods("GET", "HEAD")
	api.HandleFunc("/maps/{id}", s.invalidMethod("GET, HEAD"))

	api.HandleFunc("/game/join", s.handleJoin).Methods("POST")
	api.HandleFunc("/game/join", s.invalidMethod("POST"))
	api.HandleFunc("/game/players", s.authorized(s.handlePlayers)).Methods("GET", "HEAD")
	api.HandleFunc("/game/players", s.invalidMethod("GET, HEAD"))
	api.HandleFunc("/game/state", s.authorized(s.handleState)).Methods("GET", "HEAD")
	api.HandleFunc("/game/state", s.invalidMethod("GET, HEAD"))
	api.HandleFunc("/game/player/action", s.authorized(s.handleAction)).Methods("POST")
	api.HandleFunc("/game/player/action", s.invalidMethod("POST"))

	api.HandleFunc("/game/tick", s.handleTick).Methods("POST")
	api.HandleFunc("/game/tick", s.invalidMethod("POST"))

	api.HandleFunc("/game/records", s.handleRecords).Methods("GET", "HEAD")
	api.HandleFunc("/game/records", s.invalidMethod("GET, HEAD"))

	// anything else under /api is a bad request, not a 404 page
	s.router.PathPrefix("/api/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusBadRequest, codeBadRequest, "invalid endpoint")
	})

	if s.cfg.WS != nil {
		s.router.Handle("/ws", s.cfg.WS)
	}
	if s.cfg.WWWRoot != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.WWWRoot)))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"code": code, "message": message})
}

// statusRecorder captures the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.cfg.Log.Info().
			Str("ip", r.RemoteAddr).
			Str("uri", r.RequestURI).
			Str("method", r.Method).
			Msg("request received")

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.cfg.Log.Info().
			Int64("response_time", time.Since(start).Milliseconds()).
			Int("code", rec.status).
			Msg("response sent")
	})
}

// invalidMethod answers 405 naming the verbs the endpoint accepts.
func (s *Server) invalidMethod(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		respondError(w, http.StatusMethodNotAllowed, codeInvalidMethod, "Invalid method")
	}
}

// requireJSON enforces the application/json content type on POST bodies.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Content-Type") != "application/json" {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid content type")
		return false
	}
	return true
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// authorized wraps a handler with Bearer token validation. A malformed header
// is distinguished from a well-formed token nobody owns.
func (s *Server) authorized(next func(w http.ResponseWriter, r *http.Request, token string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || len(token) != 32 {
			respondError(w, http.StatusUnauthorized, codeInvalidToken, "Authorization header is missing or malformed")
			return
		}
		for i := 0; i < len(token); i++ {
			if !isHexDigit(token[i]) {
				respondError(w, http.StatusUnauthorized, codeInvalidToken, "Authorization header is missing or malformed")
				return
			}
		}
		next(w, r, token)
	}
}

// serviceError maps engine sentinels to API error responses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrMapNotFound):
		respondError(w, http.StatusNotFound, codeMapNotFound, "Map not found")
	case errors.Is(err, engine.ErrEmptyPlayerName):
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid name")
	case errors.Is(err, engine.ErrUnknownToken):
		respondError(w, http.StatusUnauthorized, codeUnknownToken, "Player token has not been found")
	case errors.Is(err, engine.ErrInvalidDirection):
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Failed to parse action")
	default:
		respondError(w, http.StatusInternalServerError, "internalError", err.Error())
	}
}

// Map views in world-file form

type roadView struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1,omitempty"`
	Y1 *int `json:"y1,omitempty"`
}

type buildingView struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type officeView struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OffsetX int    `json:"offsetX"`
	OffsetY int    `json:"offsetY"`
}

type mapView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Roads     []roadView      `json:"roads"`
	Buildings []buildingView  `json:"buildings,omitempty"`
	Offices   []officeView    `json:"offices,omitempty"`
	LootTypes json.RawMessage `json:"lootTypes"`
}

type mapSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func viewOfMap(m *engine.GameMap) mapView {
	view := mapView{
		ID:        m.ID,
		Name:      m.Name,
		Roads:     make([]roadView, 0, len(m.Roads)),
		LootTypes: m.RawLootTypes,
	}
	for _, road := range m.Roads {
		rv := roadView{X0: road.Start.X, Y0: road.Start.Y}
		if road.IsHorizontal() {
			x1 := road.End.X
			rv.X1 = &x1
		} else {
			y1 := road.End.Y
			rv.Y1 = &y1
		}
		view.Roads = append(view.Roads, rv)
	}
	for _, b := range m.Buildings {
		view.Buildings = append(view.Buildings, buildingView{
			X: b.Bounds.Position.X,
			Y: b.Bounds.Position.Y,
			W: b.Bounds.Size.Width,
			H: b.Bounds.Size.Height,
		})
	}
	for _, o := range m.Offices {
		view.Offices = append(view.Offices, officeView{
			ID:      o.ID,
			X:       o.Position.X,
			Y:       o.Position.Y,
			OffsetX: o.Offset.DX,
			OffsetY: o.Offset.DY,
		})
	}
	return view
}

// Handlers

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.service.ListMaps(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	summaries := make([]mapSummary, 0, len(maps))
	for _, m := range maps {
		summaries = append(summaries, mapSummary{ID: m.ID, Name: m.Name})
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	m, err := s.service.FindMap(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOfMap(m))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req struct {
		UserName *string `json:"userName"`
		MapID    *string `json:"mapId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserName == nil || req.MapID == nil {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Join game request parse error")
		return
	}

	result, err := s.service.Join(r.Context(), *req.UserName, *req.MapID)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request, token string) {
	players, err := s.service.Players(r.Context(), token)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, players)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, token string) {
	state, err := s.service.State(r.Context(), token)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, token string) {
	if !requireJSON(w, r) {
		return
	}
	var req struct {
		Move *string `json:"move"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == nil {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Failed to parse action")
		return
	}

	if err := s.service.Move(r.Context(), token, *req.Move); err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.ManualTick {
		respondError(w, http.StatusBadRequest, codeBadRequest, "invalid endpoint")
		return
	}
	if !requireJSON(w, r) {
		return
	}
	var req struct {
		TimeDelta *int64 `json:"timeDelta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TimeDelta == nil || *req.TimeDelta < 0 {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Failed to parse tick request JSON")
		return
	}

	if err := s.service.Tick(r.Context(), float64(*req.TimeDelta)); err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	start, ok := queryInt(w, r, "start", 0)
	if !ok {
		return
	}
	maxItems, ok := queryInt(w, r, "maxItems", maxRecordsPage)
	if !ok {
		return
	}
	if maxItems > maxRecordsPage {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "maxItems must not exceed 100")
		return
	}

	records, err := s.service.Records(r.Context(), start, maxItems)
	if err != nil {
		serviceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid "+name+" parameter")
		return 0, false
	}
	return value, true
}
