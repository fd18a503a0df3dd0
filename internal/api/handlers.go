package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
	"github.com/mwhite7112/woodpantry-brewlist/internal/service"
)

// NewRouter exposes the service commands. metricsHandler is mounted on
// /metrics when non-nil.
func NewRouter(svc *service.Service, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Post("/commands", handleCommand(svc))

	r.Post("/list/recipes", handleAddRecipe(svc))
	r.Get("/list", handleAction(svc, service.ActionGetList))
	r.Delete("/list", handleAction(svc, service.ActionClearList))
	r.Delete("/list/items/{id}", handleRemoveItem(svc))

	r.Get("/substitutions", handleAction(svc, service.ActionGetSubstitutions))
	r.Post("/substitutions/recompute", handleAction(svc, service.ActionRecompute))
	r.Post("/substitutions/apply", handleApplyBatch(svc))
	r.Post("/substitutions/{id}/apply", handleApply(svc))
	r.Delete("/substitutions", handleAction(svc, service.ActionClearSubstitutions))
	r.Delete("/substitutions/{id}", handleDismiss(svc))

	r.Get("/advice/{ingredientId}", handleAdvice(svc))
	r.Get("/export", handleExport(svc))
	r.Post("/recipes/discover", handleDiscover(svc))

	r.Get("/settings", handleAction(svc, service.ActionGetSettings))
	r.Put("/settings", handleSaveSettings(svc))
	r.Put("/settings/credentials", handleSaveCredentials(svc))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok")) //nolint:errcheck
}

// handleCommand accepts any Command body and answers with its envelope.
func handleCommand(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd service.Command
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeEnvelope(w, svc.Dispatch(r.Context(), cmd))
	}
}

// handleAction runs a command that needs nothing from the request.
func handleAction(svc *service.Service, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, svc.Dispatch(r.Context(), service.Command{Action: action}))
	}
}

type addRecipeRequest struct {
	RecipeID string `json:"recipeId"`
}

// handleAddRecipe accepts a recipe id or a recipe URL in recipeId.
func handleAddRecipe(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addRecipeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeEnvelope(w, svc.Dispatch(r.Context(), service.Command{
			Action:   service.ActionAddRecipe,
			RecipeID: req.RecipeID,
		}))
	}
}

func handleRemoveItem(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, svc.Dispatch(r.Context(), service.Command{
			Action:       service.ActionRemoveItem,
			IngredientID: chi.URLParam(r, "id"),
		}))
	}
}

type applyRequest struct {
	ChosenIngredientID string `json:"chosenIngredientId"`
}

func handleApply(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req applyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeEnvelope(w, svc.Dispatch(r.Context(), service.Command{
			Action:             service.ActionApplySubstitution,
			SubstitutionID:     chi.URLParam(r, "id"),
			ChosenIngredientID: req.ChosenIngredientID,
		}))
	}
}

func handleDismiss(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, svc.Dispatch(r.Context(), service.Command{
			Action:         service.ActionDismiss,
			SubstitutionID: chi.URLParam(r, "id"),
		}))
	}
}

type applyBatchRequest struct {
	Selections []domain.Selection `json:"selections"`
}

func handleApplyBatch(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req applyBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeEnvelope(w, svc.Dispatch(r.Context(), service.Command{
			Action:     service.ActionApplyBatch,
			Selections: req.Selections,
		}))
	}
}

func handleAdvice(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, svc.Dispatch(r.Context(), service.Command{
			Action:       service.ActionGetAdvice,
			IngredientID: chi.URLParam(r, "ingredientId"),
		}))
	}
}

// handleExport streams the rendered file itself rather than an envelope.
//
// Query params:
//   - format=csv|xlsx|text (default csv)
//   - archive=true also writes the file to the blob store
func handleExport(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		env := svc.Dispatch(r.Context(), service.Command{
			Action:  service.ActionExportList,
			Format:  q.Get("format"),
			Archive: q.Get("archive") == "true",
		})
		doc, ok := env.Data.(service.ExportResult)
		if !env.Success || !ok {
			writeEnvelope(w, env)
			return
		}
		w.Header().Set("Content-Type", doc.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
		if doc.ArchiveKey != "" {
			w.Header().Set("X-Archive-Key", doc.ArchiveKey)
		}
		w.Write(doc.Content) //nolint:errcheck
	}
}

type discoverRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

func handleDiscover(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req discoverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeEnvelope(w, svc.Dispatch(r.Context(), service.Command{
			Action: service.ActionDiscoverRecipes,
			URL:    req.URL,
			HTML:   req.HTML,
		}))
	}
}

func handleSaveSettings(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings domain.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeEnvelope(w, svc.Dispatch(r.Context(), service.Command{
			Action:   service.ActionSaveSettings,
			Settings: &settings,
		}))
	}
}

func handleSaveCredentials(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeEnvelope(w, svc.Dispatch(r.Context(), service.Command{
			Action:      service.ActionSaveCredentials,
			Credentials: &creds,
		}))
	}
}

// statusFor maps an envelope error kind onto an HTTP status.
func statusFor(kind string) int {
	switch kind {
	case "":
		return http.StatusOK
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeEnvelope(w http.ResponseWriter, env service.Envelope) {
	writeEnvelopeStatus(w, env, statusFor(env.ErrorKind))
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeEnvelopeStatus(w, service.Envelope{Error: msg, ErrorKind: domain.KindInvalidInput}, status)
}

func writeEnvelopeStatus(w http.ResponseWriter, env service.Envelope, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env) //nolint:errcheck
}
