package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/auth"
	"github.com/zfogg/blogicum/internal/email"
	"github.com/zfogg/blogicum/internal/repository"
	"github.com/zfogg/blogicum/internal/storage"
	"github.com/zfogg/blogicum/internal/telemetry"
	"github.com/zfogg/blogicum/internal/util"
	"github.com/zfogg/blogicum/internal/visibility"
)

// DefaultPageSize is the number of posts per listing page
const DefaultPageSize = 10

// Deps are the services the page handlers need
type Deps struct {
	Posts      repository.PostRepository
	Comments   repository.CommentRepository
	Users      repository.UserRepository
	Categories repository.CategoryRepository
	Locations  repository.LocationRepository

	Accounts auth.ServiceInterface
	Sessions *auth.SessionManager

	Images storage.ImageStore
	Mailer email.Sender
	Policy *visibility.Policy

	// PageSize is the listing page size, DefaultPageSize when zero
	PageSize int
	// BaseURL prefixes links sent by email
	BaseURL string
}

// Handlers contains all HTTP handlers for the site
type Handlers struct {
	posts      repository.PostRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	accounts   auth.ServiceInterface
	sessions   *auth.SessionManager
	images     storage.ImageStore
	mailer     email.Sender
	policy     *visibility.Policy
	events     *telemetry.BusinessEvents
	pageSize   int
	baseURL    string
}

// NewHandlers creates a new handlers instance
func NewHandlers(deps Deps) *Handlers {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	policy := deps.Policy
	if policy == nil {
		policy = visibility.NewPolicy(false)
	}

	return &Handlers{
		posts:      deps.Posts,
		comments:   deps.Comments,
		users:      deps.Users,
		categories: deps.Categories,
		locations:  deps.Locations,
		accounts:   deps.Accounts,
		sessions:   deps.Sessions,
		images:     deps.Images,
		mailer:     deps.Mailer,
		policy:     policy,
		events:     telemetry.GetBusinessEvents(),
		pageSize:   pageSize,
		baseURL:    deps.BaseURL,
	}
}

// render writes a page with the common template context
func (h *Handlers) render(c *gin.Context, status int, name string, data gin.H) {
	c.HTML(status, name, util.PageData(c, data))
}

// URL builders for redirects and templates

func postDetailURL(postID uint) string {
	return "/posts/" + strconv.FormatUint(uint64(postID), 10) + "/"
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func (h *Handlers) redirectToProfile(c *gin.Context) {
	user, _ := util.GetUserFromContext(c)
	c.Redirect(http.StatusFound, profileURL(user.Username))
}
