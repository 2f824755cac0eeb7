package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/roach88/looper/internal/clock"
	"github.com/roach88/looper/internal/fault"
	"github.com/roach88/looper/internal/store"
	"github.com/roach88/looper/internal/streak"
)

// MaxBatch is the largest number of entries accepted by one sync request.
const MaxBatch = 30

const maxBodyBytes = 1 << 20

// Record is an accepted submission as stored by the server.
type Record struct {
	Submission
	User       string `json:"user"`
	ReceiptID  string `json:"receiptId"`
	AcceptedAt string `json:"acceptedAt"`
}

// Receipt is the reply to one accepted submission.
type Receipt struct {
	Date      string `json:"date"`
	ReceiptID string `json:"receiptId"`
	Streak    int    `json:"currentStreak"`
}

// BatchRequest is the body of a batch sync.
type BatchRequest struct {
	Entries []json.RawMessage `json:"entries"`
}

// EntryResult is the outcome for one batch entry.
type EntryResult struct {
	Date      string   `json:"date"`
	OK        bool     `json:"ok"`
	ReceiptID string   `json:"receiptId,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// BatchResponse is the reply to a batch sync.
type BatchResponse struct {
	Synced  int           `json:"synced"`
	Failed  int           `json:"failed"`
	Results []EntryResult `json:"results"`
}

// UserScores is the reply to a score listing.
type UserScores struct {
	User   string       `json:"user"`
	Scores []Record     `json:"scores"`
	Streak streak.State `json:"streak"`
}

// ServerConfig wires a Server.
type ServerConfig struct {
	Gate    *Gate
	Scores  store.Namespace
	Streaks *streak.Registry
	IDs     IDGenerator
	Clock   clock.Clock
	Logger  *slog.Logger
}

// Server accepts signed submissions over HTTP.
//
// The bearer token is taken as the user id; it is not verified here.
//
// Routes:
//
//	POST /api/scores               one submission
//	POST /api/sync/daily-scores    {"entries": [...]} with 1..30 submissions
//	GET  /api/scores/{user}        accepted scores and streak for user
//	GET  /health, /api/health
type Server struct {
	gate    *Gate
	scores  store.Namespace
	streaks *streak.Registry
	ids     IDGenerator
	clock   clock.Clock
	logger  *slog.Logger

	// users serializes writes per user so a batch and a single submit for
	// the same player cannot interleave their score and streak updates.
	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewServer creates a Server.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		gate:    cfg.Gate,
		scores:  cfg.Scores,
		streaks: cfg.Streaks,
		ids:     cfg.IDs,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		users:   make(map[string]*sync.Mutex),
	}
	if s.ids == nil {
		s.ids = UUIDv7Generator{}
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/scores", s.handleSubmit)
	mux.HandleFunc("POST /api/sync/daily-scores", s.handleBatch)
	mux.HandleFunc("GET /api/scores/{user}", s.handleList)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := bearer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	receipt, err := s.accept(r.Context(), user, raw)
	if err != nil {
		s.writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := bearer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid entries")
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "invalid entries")
		return
	}
	if len(req.Entries) > MaxBatch {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("max %d entries allowed", MaxBatch))
		return
	}

	resp := BatchResponse{Results: make([]EntryResult, 0, len(req.Entries))}
	for _, raw := range req.Entries {
		receipt, err := s.accept(r.Context(), user, raw)
		if fault.IsStorage(err) {
			s.logger.Error("batch entry storage failure", "user", user, "error", err)
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}
		if err != nil {
			resp.Failed++
			resp.Results = append(resp.Results, EntryResult{
				Date:   entryDate(raw),
				Errors: []string{fault.MessageOf(err)},
			})
			continue
		}
		resp.Synced++
		resp.Results = append(resp.Results, EntryResult{
			Date:      receipt.Date,
			OK:        true,
			ReceiptID: receipt.ReceiptID,
		})
	}

	s.logger.Info("batch sync", "user", user, "synced", resp.Synced, "failed", resp.Failed)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	out, err := s.List(r.Context(), user)
	if err != nil {
		s.writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// List returns the accepted scores and streak for user, ordered by date.
func (s *Server) List(ctx context.Context, user string) (UserScores, error) {
	keys, err := s.scores.Keys(ctx)
	if err != nil {
		return UserScores{}, err
	}

	out := UserScores{User: user, Scores: []Record{}}
	prefix := user + "|"
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rec, ok, err := store.GetJSON[Record](ctx, s.scores, key)
		if err != nil {
			return UserScores{}, err
		}
		if ok {
			out.Scores = append(out.Scores, rec)
		}
	}

	st, err := s.streaks.For(user).Load(ctx)
	if err != nil {
		return UserScores{}, err
	}
	out.Streak = st
	return out, nil
}

// accept runs the gate, stores the record and advances the user's streak.
func (s *Server) accept(ctx context.Context, user string, raw []byte) (Receipt, error) {
	sub, err := s.gate.CheckJSON(raw)
	if err != nil {
		s.logger.Warn("submission rejected", "user", user, "kind", fault.KindOf(err), "reason", fault.MessageOf(err))
		return Receipt{}, err
	}

	lock := s.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	rec := Record{
		Submission: sub,
		User:       user,
		ReceiptID:  s.ids.Generate(),
		AcceptedAt: s.clock.Now().UTC().Format(time.RFC3339),
	}
	if err := store.SetJSON(ctx, s.scores, scoreKey(user, sub.Date), rec); err != nil {
		return Receipt{}, err
	}

	st, err := s.streaks.For(user).Complete(ctx, sub.Date)
	if err != nil {
		return Receipt{}, err
	}

	s.logger.Info("submission accepted",
		"user", user,
		"date", sub.Date,
		"puzzle_id", sub.PuzzleID,
		"score", sub.Score,
		"receipt", rec.ReceiptID,
	)
	return Receipt{Date: sub.Date, ReceiptID: rec.ReceiptID, Streak: st.CurrentStreak}, nil
}

func (s *Server) userLock(user string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[user]
	if !ok {
		l = &sync.Mutex{}
		s.users[user] = l
	}
	return l
}

func (s *Server) writeFault(w http.ResponseWriter, err error) {
	var fe *fault.Error
	if errors.As(err, &fe) && fe.Status != 0 {
		writeError(w, fe.Status, fault.MessageOf(err))
		return
	}
	s.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "server error")
}

func scoreKey(user, date string) string {
	return user + "|" + date
}

// entryDate best-effort extracts the date of an entry that failed checks.
func entryDate(raw []byte) string {
	var v struct {
		Date string `json:"date"`
	}
	_ = json.Unmarshal(raw, &v)
	return v.Date
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
