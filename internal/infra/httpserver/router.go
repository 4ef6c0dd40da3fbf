package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/rizaldyaw/socmint/internal/application/recon"
	"github.com/rizaldyaw/socmint/internal/domain/cases"
	"github.com/rizaldyaw/socmint/internal/middleware"
)

type Router struct {
	svc *recon.Service
}

// NewRouter builds the HTTP surface. health may be nil; when set it is
// mounted at /healthz for dependency-level checks.
func NewRouter(svc *recon.Service, health http.HandlerFunc) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestLogger)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if health != nil {
		mux.Get("/healthz", health)
	}
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api/cases", func(rt chi.Router) {
		rt.Get("/", r.wrap(r.handleListCases))
		rt.Post("/", r.wrap(r.handleCreateCase))
		rt.Route("/{name}", func(ct chi.Router) {
			ct.Post("/process", r.wrap(r.handleProcess))
			ct.Get("/log", r.wrap(r.handleLog))
			ct.Get("/analyses", r.wrap(r.handleAnalyses))
			ct.Get("/artifacts/*", r.wrap(r.handleArtifact))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var verrs validation.Errors
			switch {
			case errors.As(err, &verrs):
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verrs})
			case errors.Is(err, cases.ErrNotFound):
				writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
			case errors.Is(err, cases.ErrInvalidName), errors.Is(err, recon.ErrNoPlatforms):
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			case errors.Is(err, cases.ErrExists):
				writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
			default:
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type createCaseRequest struct {
	Name string `json:"case_name"`
}

func (c createCaseRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 128)),
	)
}

type processRequest struct {
	Target     string         `json:"target"`
	Platforms  []string       `json:"platforms"`
	Parameters map[string]any `json:"parameters"`
}

func (p processRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Target, validation.Required, validation.Length(1, 256)),
		validation.Field(&p.Platforms, validation.Required, validation.Length(1, 0)),
	)
}

// GET /api/cases
func (r *Router) handleListCases(w http.ResponseWriter, req *http.Request) error {
	names, err := r.svc.ListCases()
	if err != nil {
		return err
	}
	return writeOK(w, map[string]any{"cases": names})
}

// POST /api/cases
// Body: {"case_name": "<name>"}
func (r *Router) handleCreateCase(w http.ResponseWriter, req *http.Request) error {
	var body createCaseRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errors.Join(cases.ErrInvalidName, err)
	}
	if err := body.Validate(); err != nil {
		return err
	}
	paths, err := r.svc.CreateCase(body.Name)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"case_name": paths.Name, "status": "created"})
	return nil
}

// POST /api/cases/{name}/process
// Body: {"target": "<username>", "platforms": ["instagram", ...]}
func (r *Router) handleProcess(w http.ResponseWriter, req *http.Request) error {
	name := chi.URLParam(req, "name")

	var body processRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errors.Join(cases.ErrInvalidName, err)
	}
	if err := body.Validate(); err != nil {
		return err
	}

	result, err := r.svc.ProcessCase(req.Context(), recon.ProcessCommand{
		CaseName:   name,
		Target:     body.Target,
		Platforms:  body.Platforms,
		Parameters: body.Parameters,
	})
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	if result.Analysis != nil && result.Analysis.Structured.Fallback {
		middleware.IncrementFallbacks()
	}
	middleware.AddItemsPreserved(result.ItemsPreserved)

	return writeOK(w, result)
}

// GET /api/cases/{name}/log
func (r *Router) handleLog(w http.ResponseWriter, req *http.Request) error {
	name := chi.URLParam(req, "name")
	events, err := r.svc.CaseLog(name)
	if err != nil {
		return err
	}
	return writeOK(w, map[string]any{"case_name": name, "events": events})
}

// GET /api/cases/{name}/analyses?page=&page_size=
func (r *Router) handleAnalyses(w http.ResponseWriter, req *http.Request) error {
	name := chi.URLParam(req, "name")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.ListAnalyses(req.Context(), name, page, size)
	if err != nil {
		return err
	}
	return writeOK(w, list)
}

// GET /api/cases/{name}/artifacts/<relative path under the case dir>
func (r *Router) handleArtifact(w http.ResponseWriter, req *http.Request) error {
	name := chi.URLParam(req, "name")
	rel := chi.URLParam(req, "*")

	path, err := r.svc.ArtifactPath(name, rel)
	if err != nil {
		return err
	}
	http.ServeFile(w, req, path)
	return nil
}

func writeOK(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}
