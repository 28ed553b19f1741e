package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/losclub/community-surveys/internal/domain"
	mw "github.com/losclub/community-surveys/internal/http/middleware"
	"github.com/losclub/community-surveys/internal/http/response"
	"github.com/losclub/community-surveys/internal/service"
)

type SurveyHandler struct {
	Surveys service.SurveyService
}

func NewSurveyHandler(surveys service.SurveyService) *SurveyHandler {
	return &SurveyHandler{Surveys: surveys}
}

// Routes mirrors the public API: survey ids travel in the path, question and
// response targets travel in the path or query depending on the endpoint.
func (h *SurveyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/surveys", h.listSurveys)
	r.Get("/surveys/{surveyID}", h.getSurvey)
	r.Post("/survey/create", h.createSurvey)
	r.Put("/survey/edit", h.updateSurvey)
	r.Delete("/surveys/delete/{surveyID}", h.deleteSurvey)

	r.Get("/surveys/{surveyID}/questions", h.listQuestions)
	r.Post("/surveys/{surveyID}/questions/create", h.createQuestion)
	r.Put("/survey/questions/edit", h.updateQuestion)
	r.Delete("/survey/questions/delete", h.deleteQuestion)

	r.Get("/survey/response/{responseID}", h.getResponse)
	r.Get("/surveys/{surveyID}/responses", h.listResponses)
	r.Post("/surveys/{surveyID}/response", h.createResponse)
	r.Put("/survey/response/edit", h.updateResponse)
	r.Delete("/survey/response/{responseID}/delete", h.deleteResponse)

	return r
}

// Surveys

func (h *SurveyHandler) listSurveys(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := pageParams(w, r)
	if !ok {
		return
	}

	activeOnly := true
	if v := r.URL.Query().Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.WriteError(w, http.StatusUnprocessableEntity, "malformed active flag", response.CodeInvalidInput)
			return
		}
		activeOnly = b
	}

	surveys, err := h.Surveys.ListSurveys(r.Context(), mw.CurrentUser(r), offset, limit, activeOnly)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, surveys)
}

func (h *SurveyHandler) getSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "surveyID")
	if !ok {
		return
	}

	survey, err := h.Surveys.GetSurvey(r.Context(), mw.CurrentUser(r), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, survey)
}

func (h *SurveyHandler) createSurvey(w http.ResponseWriter, r *http.Request) {
	var in domain.SurveyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	survey, err := h.Surveys.CreateSurvey(r.Context(), mw.CurrentUser(r), &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, survey)
}

func (h *SurveyHandler) updateSurvey(w http.ResponseWriter, r *http.Request) {
	var in domain.SurveyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	survey, err := h.Surveys.UpdateSurvey(r.Context(), mw.CurrentUser(r), &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, survey)
}

func (h *SurveyHandler) deleteSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "surveyID")
	if !ok {
		return
	}

	if err := h.Surveys.DeleteSurvey(r.Context(), mw.CurrentUser(r), id); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Questions

func (h *SurveyHandler) listQuestions(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathUUID(w, r, "surveyID")
	if !ok {
		return
	}

	questions, err := h.Surveys.ListQuestions(r.Context(), mw.CurrentUser(r), surveyID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, questions)
}

func (h *SurveyHandler) createQuestion(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathUUID(w, r, "surveyID")
	if !ok {
		return
	}

	var in domain.QuestionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	question, err := h.Surveys.CreateQuestion(r.Context(), mw.CurrentUser(r), surveyID, &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, question)
}

func (h *SurveyHandler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var in domain.QuestionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	question, err := h.Surveys.UpdateQuestion(r.Context(), mw.CurrentUser(r), &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, question)
}

func (h *SurveyHandler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := queryUUID(w, r, "question_id")
	if !ok {
		return
	}

	if err := h.Surveys.DeleteQuestion(r.Context(), mw.CurrentUser(r), questionID); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Responses

func (h *SurveyHandler) getResponse(w http.ResponseWriter, r *http.Request) {
	responseID, ok := pathUUID(w, r, "responseID")
	if !ok {
		return
	}

	resp, err := h.Surveys.GetResponse(r.Context(), mw.CurrentUser(r), responseID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, resp)
}

func (h *SurveyHandler) listResponses(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathUUID(w, r, "surveyID")
	if !ok {
		return
	}
	offset, limit, ok := pageParams(w, r)
	if !ok {
		return
	}

	responses, err := h.Surveys.ListResponses(r.Context(), mw.CurrentUser(r), surveyID, offset, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, responses)
}

func (h *SurveyHandler) createResponse(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathUUID(w, r, "surveyID")
	if !ok {
		return
	}
	questionID, ok := queryUUID(w, r, "question_id")
	if !ok {
		return
	}

	var in domain.ResponseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	resp, err := h.Surveys.CreateResponse(r.Context(), mw.CurrentUser(r), surveyID, questionID, &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, resp)
}

func (h *SurveyHandler) updateResponse(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := queryUUID(w, r, "survey_id")
	if !ok {
		return
	}
	questionID, ok := queryUUID(w, r, "question_id")
	if !ok {
		return
	}

	var in domain.ResponseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	resp, err := h.Surveys.UpdateResponse(r.Context(), mw.CurrentUser(r), surveyID, questionID, &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, resp)
}

func (h *SurveyHandler) deleteResponse(w http.ResponseWriter, r *http.Request) {
	responseID, ok := pathUUID(w, r, "responseID")
	if !ok {
		return
	}

	if err := h.Surveys.DeleteResponse(r.Context(), mw.CurrentUser(r), responseID); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helpers

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.WriteError(w, http.StatusUnprocessableEntity, "malformed id", response.CodeInvalidInput)
		return uuid.Nil, false
	}
	return id, true
}

func queryUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.URL.Query().Get(name))
	if err != nil {
		response.WriteError(w, http.StatusUnprocessableEntity, "malformed "+name, response.CodeInvalidInput)
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(w http.ResponseWriter, r *http.Request) (offset, limit int, ok bool) {
	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.WriteError(w, http.StatusUnprocessableEntity, "malformed offset", response.CodeInvalidInput)
			return 0, 0, false
		}
		offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.WriteError(w, http.StatusUnprocessableEntity, "malformed limit", response.CodeInvalidInput)
			return 0, 0, false
		}
		limit = n
	}
	return offset, limit, true
}
