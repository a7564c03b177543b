package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/runixer/evalboard/internal/config"
	"github.com/runixer/evalboard/internal/dashboard"
	"github.com/runixer/evalboard/internal/i18n"
	"github.com/runixer/evalboard/internal/notify"
	"github.com/runixer/evalboard/internal/ui"
)

const metricsNamespace = "evalboard"

// SessionCookieName identifies the browser's dashboard session.
const SessionCookieName = "evalboard_session"

// dashboardViewPath renders the dashboard from the session state without
// starting a new visit. Form posts redirect here.
const dashboardViewPath = "/dashboard?view=1"

// sweepInterval is how often idle sessions are expired.
const sweepInterval = time.Minute

// getClientIP extracts the real client IP from the request.
// It checks X-Forwarded-For and X-Real-IP headers (set by reverse proxies like traefik),
// falling back to RemoteAddr if no proxy headers are present.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For may contain multiple IPs: "client, proxy1, proxy2"
	// The first one is the original client IP
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

// Server serves the dashboard pages.
type Server struct {
	cfg        *config.Config
	sessions   *dashboard.SessionStore
	translator *i18n.Translator
	renderer   *ui.Renderer
	logger     *slog.Logger
	lang       string
	loc        *time.Location
	wg         sync.WaitGroup
}

// NewServer creates the web server. sessions owns the per-browser view state.
func NewServer(logger *slog.Logger, cfg *config.Config, sessions *dashboard.SessionStore, translator *i18n.Translator) (*Server, error) {
	renderer, err := ui.NewRenderer()
	if err != nil {
		return nil, err
	}

	serverLogger := logger.With("component", "web_server")

	lang := cfg.Dashboard.Language
	if !translator.Has(lang) {
		serverLogger.Warn("Unknown dashboard language, falling back to default", "language", lang, "available", translator.Languages())
		lang = ""
	}

	return &Server{
		cfg:        cfg,
		sessions:   sessions,
		translator: translator,
		renderer:   renderer,
		logger:     serverLogger,
		lang:       lang,
		loc:        cfg.Dashboard.GetLocation(),
	}, nil
}

// Handler builds the routed handler with all middlewares applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /dashboard", instrumentHandler("dashboard", s.dashboardHandler))
	mux.HandleFunc("POST /dashboard/select", instrumentHandler("dashboard_select", s.selectHandler))
	mux.HandleFunc("POST /dashboard/close", instrumentHandler("dashboard_close", s.closeHandler))
	mux.HandleFunc("GET /login", instrumentHandler("login", s.loginHandler))
	mux.HandleFunc("GET /healthz", instrumentHandler("healthz", s.healthzHandler))
	mux.Handle("GET /metrics", promhttp.Handler())

	// Everything else, including "/", lands on the dashboard.
	mux.HandleFunc("/", instrumentHandler("redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}))

	return s.loggingMiddleware(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.cfg.Server.ListenPort,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("web server shutdown failed", "error", err)
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sessions.Sweep()
			}
		}
	}()

	s.logger.Info("Starting web server", "port", s.cfg.Server.ListenPort)
	err := server.ListenAndServe()
	if err != http.ErrServerClosed {
		return err
	}
	s.wg.Wait() // Wait for background goroutines to finish
	return nil
}

// session returns the caller's session, issuing a cookie for a new one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *dashboard.Session {
	var id string
	if c, err := r.Cookie(SessionCookieName); err == nil {
		id = c.Value
	}

	sess, created := s.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// dashboardHandler starts a new visit: the modal is closed, the cached detail
// is dropped and the list is fetched again. With ?view the page is rendered
// from the session state, which is where select and close redirect to.
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	if !r.URL.Query().Has("view") {
		// Errors are already queued as notifications by the list view.
		_ = sess.List.Activate(r.Context())
	}

	s.renderDashboard(w, sess)
}

func (s *Server) selectHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := strings.TrimSpace(r.PostFormValue("id"))
	if id == "" {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	sess := s.session(w, r)
	if err := sess.List.Select(r.Context(), id); err != nil && !errors.Is(err, dashboard.ErrSuperseded) {
		s.logger.Debug("Detail fetch failed", "conversation_id", id, "error", err)
	}

	http.Redirect(w, r, dashboardViewPath, http.StatusSeeOther)
}

func (s *Server) closeHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.List.CloseModal()
	http.Redirect(w, r, dashboardViewPath, http.StatusSeeOther)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", ui.PageData{
		Title:  s.t("login.title"),
		Active: "login",
	})
}

func (s *Server) healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) renderDashboard(w http.ResponseWriter, sess *dashboard.Session) {
	data := ui.NewDashboardData(sess.List.Snapshot(), sess.Detail.Snapshot(), s.cfg.Dashboard.GetPageSize())
	s.render(w, "dashboard.html", ui.PageData{
		Title:         s.t("dashboard.title"),
		Active:        "dashboard",
		Notifications: sess.Notices.Drain(),
		Data:          data,
	})
}

// render executes a page into a buffer so a template failure can still be
// answered with a clean 500.
func (s *Server) render(w http.ResponseWriter, page string, data ui.PageData) {
	data.Lang = s.lang
	if data.Lang == "" {
		data.Lang = "en"
	}
	data.Copied = notify.Copied(s.t("notify.copied"))

	var buf bytes.Buffer
	funcMap := ui.GetFuncMap(s.loc, s.translator.For(s.lang))
	if err := s.renderer.Render(&buf, page, data, funcMap); err != nil {
		s.logger.Error("failed to render template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) t(key string, args ...interface{}) string {
	return s.translator.Get(s.lang, key, args...)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		start := time.Now()

		next.ServeHTTP(w, r)

		// Log healthz and metrics at debug level, other requests at info level
		level := slog.LevelInfo
		if path == "/healthz" || path == "/metrics" {
			level = slog.LevelDebug
		}
		s.logger.Log(r.Context(), level, "Handled HTTP request",
			"method", r.Method,
			"path", path,
			"client_ip", getClientIP(r),
			"user_agent", r.UserAgent(),
			"duration", time.Since(start),
		)
	})
}
