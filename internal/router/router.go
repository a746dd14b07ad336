// Package router wires the HTTP surface of the service: the owner
// dashboard at the root path, the public profile page at /{username},
// and the JSON/form API the two screens drive.
package router

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/dtechoracle/linkNest/internal/auth"
	"github.com/dtechoracle/linkNest/internal/dashboard"
	"github.com/dtechoracle/linkNest/internal/gzippedhttp"
	"github.com/dtechoracle/linkNest/internal/ipchecker"
	"github.com/dtechoracle/linkNest/internal/linkinfo"
	"github.com/dtechoracle/linkNest/internal/links"
	"github.com/dtechoracle/linkNest/internal/logger"
	"github.com/dtechoracle/linkNest/internal/models"
	"github.com/dtechoracle/linkNest/internal/profile"
	"github.com/dtechoracle/linkNest/internal/session"
	"github.com/dtechoracle/linkNest/internal/user"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

type authenticator interface {
	SignUp(ctx context.Context, email, password string, transaction *sql.Tx) (*user.User, error)
	SignIn(ctx context.Context, email, password string) (*user.User, error)
	IssueSession(response http.ResponseWriter, userID string) error
	DropSession(response http.ResponseWriter)
	AuthenticateUser(h http.Handler) http.Handler
	RequireUser(h http.Handler) http.Handler
}

type transactioner interface {
	BeginTransaction() (*sql.Tx, error)
	RollbackTransaction(transaction *sql.Tx) error
	CommitTransaction(transaction *sql.Tx) error
}

type statsKeeper interface {
	GetNumberOfProfiles(ctx context.Context) (int64, error)
	GetNumberOfLinks(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	transactioner
	statsKeeper
	pinger
}

// Router bundles the HTTP handlers with their dependencies.
type Router struct {
	db            storage
	profiles      *profile.Store
	links         *links.Collection
	sessions      *session.Manager
	auth          authenticator
	ipChecker     *ipchecker.IPChecker
	publicBaseURL string
	validate      *validator.Validate
	templates     *template.Template
}

type linkView struct {
	ID    string
	URL   string
	Label string
	Info  linkinfo.Info
}

type dashboardView struct {
	Profile    models.Profile
	Links      []linkView
	BioEditing bool
	MenuOpen   bool
	Palette    []models.Theme
	PublicURL  string
}

type publicView struct {
	Profile models.Profile
	Links   []linkView
	PageURL string
}

// New assembles the chi mux with logging, gzip and authentication
// middleware and all route handlers.
func New(
	db storage,
	profiles *profile.Store,
	linkCollection *links.Collection,
	sessions *session.Manager,
	theAuth authenticator,
	ipChecker *ipchecker.IPChecker,
	publicBaseURL string,
) http.Handler {
	myRouter := &Router{
		db:            db,
		profiles:      profiles,
		links:         linkCollection,
		sessions:      sessions,
		auth:          theAuth,
		ipChecker:     ipChecker,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		validate:      validator.New(),
		templates:     template.Must(template.ParseFS(templatesFS, "templates/*.gohtml")),
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipRequest,
	)

	router.With(gzippedhttp.GzipResponse, theAuth.AuthenticateUser).Get(`/`, myRouter.GetDashboard)
	router.Get(`/ping`, myRouter.GetPing)

	router.Route(`/api`, func(api chi.Router) {
		api.Post(`/signup`, myRouter.PostAPISignup)
		api.Post(`/login`, myRouter.PostAPILogin)
		api.Post(`/logout`, myRouter.PostAPILogout)

		api.Group(func(authenticated chi.Router) {
			authenticated.Use(theAuth.AuthenticateUser, theAuth.RequireUser)
			authenticated.Post(`/profile/bio`, myRouter.PostAPIProfileBio)
			authenticated.Post(`/profile/theme`, myRouter.PostAPIProfileTheme)
			authenticated.Post(`/links`, myRouter.PostAPILinks)
			authenticated.Delete(`/links/{linkID}`, myRouter.DeleteAPILink)
			authenticated.Post(`/links/{linkID}/delete`, myRouter.DeleteAPILink)
		})

		api.Get(`/internal/stats`, myRouter.GetAPIInternalStats)
	})

	router.With(gzippedhttp.GzipResponse).Get(`/{username}`, myRouter.GetPublicProfile)

	return router
}

// GetDashboard renders the owner dashboard, or the authentication form
// when the request carries no valid session.
func (r *Router) GetDashboard(response http.ResponseWriter, request *http.Request) {
	userID, _ := request.Context().Value(auth.UserIDKey).(string)
	if userID == "" {
		r.render(response, "login", nil)
		return
	}

	// A failed fetch is logged and renders as empty state, the same as
	// having no data yet.
	var prof models.Profile
	loaded, err := r.profiles.Load(request.Context(), userID)
	if err != nil {
		logger.Log.Debugln("Error calling the `r.profiles.Load()`: ", zap.Error(err))
	} else {
		prof = *loaded
	}
	if prof.Theme.Primary == "" {
		prof.Theme = models.DefaultTheme
	}

	profileLinks, err := r.links.List(request.Context(), userID)
	if err != nil {
		logger.Log.Debugln("Error calling the `r.links.List()`: ", zap.Error(err))
		profileLinks = nil
	}

	editor := dashboard.NewBioEditor(r.profiles, userID, prof.Bio)
	if request.URL.Query().Get("bio") == "edit" {
		editor.Edit()
	}

	// Navigating without the menu parameter counts as an interaction
	// outside the dropdown, which dismisses it.
	menu := &dashboard.Dropdown{}
	if request.URL.Query().Get("menu") == "open" {
		menu.Toggle()
	} else {
		menu.OutsideInteraction()
	}

	r.render(response, "dashboard", dashboardView{
		Profile:    prof,
		Links:      buildLinkViews(profileLinks),
		BioEditing: editor.State() == dashboard.Editing,
		MenuOpen:   menu.Open(),
		Palette:    models.ThemePalette,
		PublicURL:  r.publicBaseURL + "/" + prof.Username,
	})
}

// GetPublicProfile renders the read-only profile page for the username
// in the path. Unknown usernames redirect to the root path.
func (r *Router) GetPublicProfile(response http.ResponseWriter, request *http.Request) {
	username := chi.URLParam(request, "username")

	prof, err := r.profiles.LoadByUsername(request.Context(), username)
	if err != nil {
		if !errors.Is(err, models.ErrProfileNotFound) {
			logger.Log.Debugln("Error calling the `r.profiles.LoadByUsername()`: ", zap.Error(err))
		}
		http.Redirect(response, request, "/", http.StatusSeeOther)
		return
	}

	profileLinks, err := r.links.List(request.Context(), prof.ID)
	if err != nil {
		logger.Log.Debugln("Error calling the `r.links.List()`: ", zap.Error(err))
		profileLinks = nil
	}

	r.render(response, "public", publicView{
		Profile: *prof,
		Links:   buildLinkViews(profileLinks),
		PageURL: r.publicBaseURL + "/" + prof.Username,
	})
}

// PostAPISignup registers an account, bootstraps its profile in the same
// transaction and opens a session.
func (r *Router) PostAPISignup(response http.ResponseWriter, request *http.Request) {
	var body models.SignUpRequest
	if !r.decodeBody(response, request, &body, func() {
		body.Email = request.FormValue("email")
		body.Password = request.FormValue("password")
	}) {
		return
	}
	if err := r.validate.Struct(body); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := r.db.BeginTransaction()
	if err != nil {
		logger.Log.Debugln("Error calling the `r.db.BeginTransaction()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	usr, err := r.auth.SignUp(request.Context(), body.Email, body.Password, transaction)
	if err == nil {
		_, err = r.profiles.Ensure(request.Context(), usr.ID, usr.Email, transaction)
	}
	if err != nil {
		if rollbackErr := r.db.RollbackTransaction(transaction); rollbackErr != nil {
			logger.Log.Debugln("Error calling the `r.db.RollbackTransaction()`: ", zap.Error(rollbackErr))
		}
		if errors.Is(err, models.ErrEmailTaken) {
			http.Error(response, err.Error(), http.StatusConflict)
			return
		}
		logger.Log.Debugln("Error during sign-up: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := r.db.CommitTransaction(transaction); err != nil {
		logger.Log.Debugln("Error calling the `r.db.CommitTransaction()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.openSession(response, request, usr)
}

// PostAPILogin verifies the credentials, lazily creates the profile on a
// first authenticated session and opens a session.
func (r *Router) PostAPILogin(response http.ResponseWriter, request *http.Request) {
	var body models.SignInRequest
	if !r.decodeBody(response, request, &body, func() {
		body.Email = request.FormValue("email")
		body.Password = request.FormValue("password")
	}) {
		return
	}
	if err := r.validate.Struct(body); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	usr, err := r.auth.SignIn(request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			http.Error(response, err.Error(), http.StatusUnauthorized)
			return
		}
		logger.Log.Debugln("Error calling the `r.auth.SignIn()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	if _, err := r.profiles.Ensure(request.Context(), usr.ID, usr.Email, nil); err != nil {
		logger.Log.Debugln("Error calling the `r.profiles.Ensure()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.openSession(response, request, usr)
}

// PostAPILogout drops the auth cookie and clears session-bound state.
func (r *Router) PostAPILogout(response http.ResponseWriter, request *http.Request) {
	r.auth.DropSession(response)
	r.sessions.SignOut()

	if wantsJSON(request) {
		response.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(response, request, "/", http.StatusSeeOther)
}

// PostAPIProfileBio saves the bio draft through the editor state machine.
func (r *Router) PostAPIProfileBio(response http.ResponseWriter, request *http.Request) {
	userID, _ := request.Context().Value(auth.UserIDKey).(string)

	var body models.UpdateBioRequest
	if !r.decodeBody(response, request, &body, func() {
		body.Bio = request.FormValue("bio")
	}) {
		return
	}

	currentBio := ""
	if cached, found := r.profiles.Cached(userID); found {
		currentBio = cached.Bio
	}

	editor := dashboard.NewBioEditor(r.profiles, userID, currentBio)
	editor.Edit()
	editor.Type(body.Bio)
	if err := editor.Save(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `editor.Save()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.respondOK(response, request)
}

// PostAPIProfileTheme applies a palette entry to the profile. Values
// outside the fixed palette are logged but persisted anyway.
func (r *Router) PostAPIProfileTheme(response http.ResponseWriter, request *http.Request) {
	userID, _ := request.Context().Value(auth.UserIDKey).(string)

	var body models.UpdateThemeRequest
	if !r.decodeBody(response, request, &body, func() {
		body.Theme.Primary = request.FormValue("primary")
		body.Theme.Secondary = request.FormValue("secondary")
	}) {
		return
	}

	if !funk.Contains(models.ThemePalette, body.Theme) {
		logger.Log.Infoln("theme outside the fixed palette", "primary", body.Theme.Primary, "secondary", body.Theme.Secondary)
	}

	if err := r.profiles.UpdateTheme(request.Context(), userID, body.Theme); err != nil {
		logger.Log.Debugln("Error calling the `r.profiles.UpdateTheme()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.respondOK(response, request)
}

// PostAPILinks appends a link to the owner's collection.
func (r *Router) PostAPILinks(response http.ResponseWriter, request *http.Request) {
	userID, _ := request.Context().Value(auth.UserIDKey).(string)

	var body models.AddLinkRequest
	if !r.decodeBody(response, request, &body, func() {
		body.URL = request.FormValue("url")
		body.Title = request.FormValue("title")
	}) {
		return
	}
	if err := r.validate.Struct(body); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	link, err := r.links.Append(request.Context(), userID, body.URL, body.Title)
	if err != nil {
		if errors.Is(err, models.ErrEmptyURL) {
			http.Error(response, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.Debugln("Error calling the `r.links.Append()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	if wantsJSON(request) {
		response.Header().Set("Content-Type", "application/json")
		response.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(response).Encode(link); err != nil {
			logger.Log.Debugln("Error encoding the link response: ", zap.Error(err))
		}
		return
	}
	http.Redirect(response, request, "/", http.StatusSeeOther)
}

// DeleteAPILink removes a link by its identifier.
func (r *Router) DeleteAPILink(response http.ResponseWriter, request *http.Request) {
	linkID := chi.URLParam(request, "linkID")

	if err := r.links.Remove(request.Context(), linkID); err != nil {
		logger.Log.Debugln("Error calling the `r.links.Remove()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	if wantsJSON(request) || request.Method == http.MethodDelete {
		response.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(response, request, "/", http.StatusSeeOther)
}

// GetPing reports storage connectivity.
func (r *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := r.db.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `r.db.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}
	response.WriteHeader(http.StatusOK)
}

// GetAPIInternalStats returns profile and link totals to callers from
// the trusted subnet.
func (r *Router) GetAPIInternalStats(response http.ResponseWriter, request *http.Request) {
	if !r.ipChecker.Enabled() {
		response.WriteHeader(http.StatusForbidden)
		return
	}
	clientIP, err := r.ipChecker.ClientIP(request)
	if err != nil || !r.ipChecker.Check(clientIP) {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	profiles, err := r.db.GetNumberOfProfiles(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `r.db.GetNumberOfProfiles()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}
	linksTotal, err := r.db.GetNumberOfLinks(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `r.db.GetNumberOfLinks()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(response).Encode(models.StatsResponse{
		Profiles: profiles,
		Links:    linksTotal,
	}); err != nil {
		logger.Log.Debugln("Error encoding the stats response: ", zap.Error(err))
	}
}

func (r *Router) openSession(response http.ResponseWriter, request *http.Request, usr *user.User) {
	if err := r.auth.IssueSession(response, usr.ID); err != nil {
		logger.Log.Debugln("Error calling the `r.auth.IssueSession()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.sessions.SignIn(session.Identity{UserID: usr.ID, Email: usr.Email})

	if wantsJSON(request) {
		response.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(response, request, "/", http.StatusSeeOther)
}

// decodeBody fills dst from a JSON body, or runs fromForm for
// form-encoded submissions. Returns false when the request was rejected.
func (r *Router) decodeBody(
	response http.ResponseWriter,
	request *http.Request,
	dst interface{},
	fromForm func(),
) bool {
	if wantsJSON(request) {
		if err := json.NewDecoder(request.Body).Decode(dst); err != nil {
			http.Error(response, err.Error(), http.StatusBadRequest)
			return false
		}
		return true
	}

	if err := request.ParseForm(); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return false
	}
	fromForm()

	return true
}

func (r *Router) respondOK(response http.ResponseWriter, request *http.Request) {
	if wantsJSON(request) {
		response.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(response, request, "/", http.StatusSeeOther)
}

func (r *Router) render(response http.ResponseWriter, name string, data interface{}) {
	response.Header().Set("Content-Type", "text/html; charset=utf-8")
	response.WriteHeader(http.StatusOK)
	if err := r.templates.ExecuteTemplate(response, name, data); err != nil {
		logger.Log.Debugln("Error executing the template: ", "template", name, zap.Error(err))
	}
}

func buildLinkViews(profileLinks []models.Link) []linkView {
	result := make([]linkView, 0, len(profileLinks))
	for _, link := range profileLinks {
		info := linkinfo.Classify(link.URL)
		label := link.Title
		if label == "" {
			label = info.Name
		}
		result = append(result, linkView{
			ID:    link.ID,
			URL:   link.URL,
			Label: label,
			Info:  info,
		})
	}

	return result
}

func wantsJSON(request *http.Request) bool {
	return strings.Contains(request.Header.Get("Content-Type"), "application/json")
}
