package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"kentei-quiz-service/internal/app"
	"kentei-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// API exposes the quiz use cases as JSON endpoints.
type API struct {
	questions    *app.QuestionService
	grading      *app.GradingService
	certificates *app.CertificateService
	leaderboard  *app.LeaderboardService
	limiter      *app.RateLimiter
}

func NewAPI(questions *app.QuestionService, grading *app.GradingService, certificates *app.CertificateService, leaderboard *app.LeaderboardService, limiter *app.RateLimiter) *API {
	return &API{
		questions:    questions,
		grading:      grading,
		certificates: certificates,
		leaderboard:  leaderboard,
		limiter:      limiter,
	}
}

type judgeRequest struct {
	Topic      string        `json:"topic"`
	Level      string        `json:"level"`
	QuestionID string        `json:"questionId"`
	Answer     domain.Answer `json:"answer"`
}

type judgeAllRequest struct {
	Topic   string                    `json:"topic"`
	Level   string                    `json:"level"`
	Answers []domain.AnswerSubmission `json:"answers"`
	UserID  string                    `json:"userId"`
}

type certificateRequest struct {
	Topic     string `json:"topic"`
	Level     string `json:"level"`
	Nickname  string `json:"nickname"`
	Date      string `json:"date"`
	ImageData string `json:"imageData"`
}

type scoreRequest struct {
	BrowserID string `json:"browserId"`
	Nickname  string `json:"nickname"`
	Score     int    `json:"score"`
	Mode      string `json:"mode"`
}

func (a *API) GetQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := a.limiter.Allow(r.Context(), q.Get("userId")); err != nil {
		writeFailure(w, r, err)
		return
	}
	questions, err := a.questions.GetQuestions(r.Context(), q.Get("topic"), q.Get("level"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, questions)
}

func (a *API) TimedQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := a.limiter.Allow(r.Context(), q.Get("userId")); err != nil {
		writeFailure(w, r, err)
		return
	}
	questions, err := a.questions.TimedQuestions(r.Context(), q.Get("topic"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, questions)
}

func (a *API) Judge(w http.ResponseWriter, r *http.Request) {
	var req judgeRequest
	if !decode(w, r, &req) {
		return
	}
	correct, err := a.grading.GradeSingle(r.Context(), req.Topic, req.Level, req.QuestionID, req.Answer)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, map[string]bool{"correct": correct})
}

func (a *API) JudgeAll(w http.ResponseWriter, r *http.Request) {
	var req judgeAllRequest
	if !decode(w, r, &req) {
		return
	}
	if err := a.limiter.Allow(r.Context(), req.UserID); err != nil {
		writeFailure(w, r, err)
		return
	}
	result, err := a.grading.GradeBatch(r.Context(), req.Topic, req.Level, req.Answers)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, result)
}

func (a *API) IssueCertificate(w http.ResponseWriter, r *http.Request) {
	var req certificateRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := a.certificates.Issue(r.Context(), app.CertificateRequest{
		Topic:     req.Topic,
		Level:     req.Level,
		Nickname:  req.Nickname,
		IssuedAt:  req.Date,
		ImageData: req.ImageData,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, http.StatusCreated, map[string]string{"id": id})
}

func (a *API) GetCertificate(w http.ResponseWriter, r *http.Request) {
	cert, err := a.certificates.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, cert)
}

func (a *API) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decode(w, r, &req) {
		return
	}
	rank, err := a.leaderboard.Submit(r.Context(), app.ScoreSubmission{
		BrowserID: req.BrowserID,
		Nickname:  req.Nickname,
		Score:     req.Score,
		Mode:      req.Mode,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, map[string]int{"rank": rank})
}

func (a *API) TopScores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	lb, err := a.leaderboard.Top(r.Context(), q.Get("mode"), limit, q.Get("browserId"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, lb)
}

func (a *API) ReloadCache(w http.ResponseWriter, r *http.Request) {
	result, err := a.questions.ReloadAll(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	status := http.StatusOK
	if result.InProgress {
		status = http.StatusAccepted
	}
	writeOK(w, r, status, result)
}

func (a *API) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := a.questions.ClearAll(r.Context()); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, map[string]bool{"cleared": true})
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
