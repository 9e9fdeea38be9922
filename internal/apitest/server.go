// Package apitest is an in-process stand-in for the review API. It honours
// the same envelope and routes as the real server and records what it was
// asked to do, so packages can test against a real HTTP round trip.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/mux"
	"github.com/smart-review/smart-review-cli/internal/authn"
	"github.com/smart-review/smart-review-cli/models"
)

type Account struct {
	Password string
	User     models.Identity
}

type Server struct {
	*httptest.Server

	secret []byte

	mu           sync.Mutex
	epoch        int
	accounts     map[string]Account
	periods      []models.ReviewPeriod
	results      map[int]*models.ScheduleResult
	slotResults  map[int]*models.ScheduleResult
	groupResults map[int]*models.ScheduleResult
	generated    map[int]*models.ScheduleResult
	sessions     map[int][]models.ReviewSession
	approved     map[int]bool
	rejected     map[int]string
	calls        map[string]int
	failStatus   int
}

func NewServer() *Server {
	s := &Server{
		secret:       []byte("apitest-secret"),
		accounts:     make(map[string]Account),
		results:      make(map[int]*models.ScheduleResult),
		slotResults:  make(map[int]*models.ScheduleResult),
		groupResults: make(map[int]*models.ScheduleResult),
		generated:    make(map[int]*models.ScheduleResult),
		sessions:     make(map[int][]models.ReviewSession),
		approved:     make(map[int]bool),
		rejected:     make(map[int]string),
		calls:        make(map[string]int),
		failStatus:   http.StatusBadRequest,
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.countCalls)

	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(s.requireToken)

	api.HandleFunc("/auth/me", s.me).Methods(http.MethodGet)
	api.HandleFunc("/review-periods", s.listPeriods).Methods(http.MethodGet)
	api.HandleFunc("/review-sessions/scheduled/{period-id}", s.scheduledSessions).Methods(http.MethodGet)

	admin := func(h http.HandlerFunc) http.HandlerFunc { return requireRole(models.RoleAdmin, h) }
	api.HandleFunc("/scheduling/generate", admin(s.generate)).Methods(http.MethodPost)
	api.HandleFunc("/scheduling/{period-id}/approve", admin(s.approve)).Methods(http.MethodPost)
	api.HandleFunc("/scheduling/{period-id}/reject", admin(s.reject)).Methods(http.MethodPost)
	api.HandleFunc("/scheduling/slots/{slot-id}/regenerate", admin(s.regenerateSlot)).Methods(http.MethodPost)
	api.HandleFunc("/scheduling/groups/{group-id}/regenerate", admin(s.regenerateGroup)).Methods(http.MethodPost)

	return r
}

// AddAccount registers a user that can log in with email and password.
func (s *Server) AddAccount(password string, user models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[user.Email] = Account{Password: password, User: user}
}

// IssueToken mints a token for user valid in the current epoch.
func (s *Server) IssueToken(user models.Identity) string {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	claims := authn.Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        strconv.Itoa(epoch),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
		Email: user.Email,
		Role:  string(user.Role),
		Name:  user.FullName,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("apitest: failed to sign token: %v", err))
	}
	return token
}

// RevokeTokens invalidates every token issued so far.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
}

func (s *Server) AddPeriod(p models.ReviewPeriod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods = append(s.periods, p)
}

// SetResult makes generate for periodID return result. A result with
// IsSuccess=false is sent with the failure status and the result as data.
func (s *Server) SetResult(periodID int, result *models.ScheduleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[periodID] = result
}

func (s *Server) SetSlotResult(slotID int, result *models.ScheduleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotResults[slotID] = result
}

func (s *Server) SetGroupResult(groupID int, result *models.ScheduleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupResults[groupID] = result
}

// SetFailureStatus sets the HTTP status used for failed scheduling runs.
// 200 models servers that report failures only inside the envelope.
func (s *Server) SetFailureStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

// Calls returns how many requests were made for "METHOD /path".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) Approved(periodID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.approved[periodID]
}

func (s *Server) Rejected(periodID int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reason, ok := s.rejected[periodID]
	return reason, ok
}

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	s.mu.Lock()
	account, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || account.Password != req.Password {
		writeEnvelope(w, http.StatusUnauthorized, nil, "Invalid email or password")
		return
	}

	writeEnvelope(w, http.StatusOK, models.LoginResponse{
		Token:     s.IssueToken(account.User),
		ExpiresAt: time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		User:      account.User,
	}, "Login successful")
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(claimsKey).(authn.Claims)

	s.mu.Lock()
	account, ok := s.accounts[claims.Email]
	s.mu.Unlock()
	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil, "user not found")
		return
	}
	writeEnvelope(w, http.StatusOK, account.User, "")
}

func (s *Server) listPeriods(w http.ResponseWriter, r *http.Request) {
	semesterID, _ := strconv.Atoi(r.URL.Query().Get("semesterId"))

	s.mu.Lock()
	periods := []models.ReviewPeriod{}
	for _, p := range s.periods {
		if semesterID == 0 || p.SemesterID == semesterID {
			periods = append(periods, p)
		}
	}
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, periods, "")
}

func (s *Server) scheduledSessions(w http.ResponseWriter, r *http.Request) {
	periodID, ok := pathID(w, r, "period-id")
	if !ok {
		return
	}

	s.mu.Lock()
	sessions := append([]models.ReviewSession{}, s.sessions[periodID]...)
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, sessions, "")
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	s.mu.Lock()
	result, ok := s.results[req.ReviewPeriodID]
	if ok {
		s.generated[req.ReviewPeriodID] = result
	}
	s.mu.Unlock()

	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil, "Review period not found")
		return
	}
	s.writeResult(w, result)
}

func (s *Server) approve(w http.ResponseWriter, r *http.Request) {
	periodID, ok := pathID(w, r, "period-id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.generated[periodID]
	if !ok || !result.IsSuccess {
		writeEnvelope(w, http.StatusBadRequest, nil, "No successful schedule to approve")
		return
	}

	for _, ss := range result.ScheduledSessions {
		score := ss.AlgorithmScore
		s.sessions[periodID] = append(s.sessions[periodID], models.ReviewSession{
			ID:                 ss.SessionID,
			ReviewPeriodID:     periodID,
			ReviewSlotID:       ss.SlotID,
			SlotDate:           ss.SlotDate,
			StartTime:          ss.StartTime,
			EndTime:            ss.EndTime,
			GroupID:            ss.GroupID,
			GroupName:          ss.GroupName,
			RegistrationStatus: models.RegistrationApproved,
			Status:             models.SessionScheduled,
			CouncilMembers:     ss.CouncilMembers,
			AlgorithmScore:     &score,
		})
	}
	s.approved[periodID] = true
	delete(s.generated, periodID)

	writeEnvelope(w, http.StatusOK, nil, "Schedule approved")
}

func (s *Server) reject(w http.ResponseWriter, r *http.Request) {
	periodID, ok := pathID(w, r, "period-id")
	if !ok {
		return
	}

	var req models.RejectScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		writeEnvelope(w, http.StatusBadRequest, nil, "Validation failed", "Reason is required")
		return
	}

	s.mu.Lock()
	s.rejected[periodID] = req.Reason
	delete(s.generated, periodID)
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, nil, "Schedule rejected")
}

func (s *Server) regenerateSlot(w http.ResponseWriter, r *http.Request) {
	s.regenerate(w, r, "slot-id", s.slotResults)
}

func (s *Server) regenerateGroup(w http.ResponseWriter, r *http.Request) {
	s.regenerate(w, r, "group-id", s.groupResults)
}

func (s *Server) regenerate(w http.ResponseWriter, r *http.Request, key string, results map[int]*models.ScheduleResult) {
	id, ok := pathID(w, r, key)
	if !ok {
		return
	}

	s.mu.Lock()
	result, ok := results[id]
	if ok {
		s.generated[result.ReviewPeriodID] = result
	}
	s.mu.Unlock()

	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil, "Nothing to regenerate")
		return
	}
	s.writeResult(w, result)
}

func (s *Server) writeResult(w http.ResponseWriter, result *models.ScheduleResult) {
	if result.IsSuccess {
		writeEnvelope(w, http.StatusOK, result, "Schedule generated")
		return
	}

	s.mu.Lock()
	status := s.failStatus
	s.mu.Unlock()

	errs := result.Errors
	if len(errs) == 0 {
		errs = []string{"schedule is incomplete"}
	}
	writeEnvelope(w, status, result, "Scheduling failed", errs...)
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[key])
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, fmt.Sprintf("invalid %s", key))
		return 0, false
	}
	return id, true
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}, message string, errs ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "max-age=0")
	w.WriteHeader(status)

	env := struct {
		Data       interface{} `json:"data"`
		IsSuccess  bool        `json:"isSuccess"`
		StatusCode int         `json:"statusCode"`
		Message    string      `json:"message"`
		Errors     []string    `json:"errors,omitempty"`
		Timestamp  string      `json:"timestamp"`
	}{
		Data:       data,
		IsSuccess:  status >= 200 && status < 300 && len(errs) == 0,
		StatusCode: status,
		Message:    message,
		Errors:     errs,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
