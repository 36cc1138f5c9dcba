package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/zfogg/blogicum/internal/auth"
	"github.com/zfogg/blogicum/internal/database"
	"github.com/zfogg/blogicum/internal/middleware"
	"github.com/zfogg/blogicum/internal/models"
	"github.com/zfogg/blogicum/internal/repository"
	"github.com/zfogg/blogicum/internal/storage"
	"github.com/zfogg/blogicum/internal/visibility"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPassword  = "correct-horse-battery-9"
	testCSRFToken = "0123456789abcdef0123456789abcdef"
)

var baseTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// pngHeader is enough of a PNG for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type sentReset struct {
	to   string
	link string
}

type fakeMailer struct {
	sent []sentReset
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, toEmail, _, resetURL string) error {
	m.sent = append(m.sent, sentReset{to: toEmail, link: resetURL})
	return nil
}

type HandlersTestSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	mediaRoot string

	router   *gin.Engine
	sessions *auth.SessionManager
	accounts *auth.Service
	mailer   *fakeMailer

	posts      repository.PostRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	categories repository.CategoryRepository

	author   *models.User
	reader   *models.User
	category models.Category
	hidden   models.Category
}

func (s *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *HandlersTestSuite) SetupTest() {
	db, err := database.Open("sqlite", ":memory:", nil)
	s.Require().NoError(err)
	s.Require().NoError(database.MigrateDB(db))

	s.ctx = context.Background()
	s.now = baseTime
	policy := &visibility.Policy{Clock: func() time.Time { return s.now }}

	s.posts = repository.NewPostRepository(db, policy)
	s.comments = repository.NewCommentRepository(db)
	s.users = repository.NewUserRepository(db)
	s.categories = repository.NewCategoryRepository(db)
	locations := repository.NewLocationRepository(db)

	s.accounts = auth.NewService(s.users).WithBcryptCost(bcrypt.MinCost)
	s.sessions = auth.NewSessionManager([]byte("test-secret"), false)
	s.mailer = &fakeMailer{}

	s.mediaRoot = s.T().TempDir()
	images, err := storage.NewLocalStore(s.mediaRoot, "/media")
	s.Require().NoError(err)

	h := NewHandlers(Deps{
		Posts:      s.posts,
		Comments:   s.comments,
		Users:      s.users,
		Categories: s.categories,
		Locations:  locations,
		Accounts:   s.accounts,
		Sessions:   s.sessions,
		Images:     images,
		Mailer:     s.mailer,
		Policy:     policy,
		PageSize:   2,
		BaseURL:    "http://blog.test",
	})
	s.router, err = NewRouter(h, RouterConfig{
		MediaRoot:   s.mediaRoot,
		MediaURL:    "/media",
		HealthCheck: func() error { return nil },
	})
	s.Require().NoError(err)

	s.author = s.register("author", "author@example.com")
	s.reader = s.register("reader", "reader@example.com")

	s.category = models.Category{Title: "Travel", Description: "Trips", Slug: "travel", IsPublished: true}
	s.hidden = models.Category{Title: "Secret", Description: "Hidden", Slug: "secret", IsPublished: false}
	s.Require().NoError(s.categories.CreateCategory(s.ctx, &s.category))
	s.Require().NoError(s.categories.CreateCategory(s.ctx, &s.hidden))
}

func (s *HandlersTestSuite) register(username, email string) *models.User {
	user, err := s.accounts.Register(s.ctx, auth.RegisterRequest{
		Username: username,
		Email:    email,
		Password: testPassword,
	})
	s.Require().NoError(err)
	return user
}

func (s *HandlersTestSuite) createPost(title string, mutate func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:       title,
		Text:        title + " body",
		PubDate:     s.now.Add(-time.Hour),
		IsPublished: true,
		AuthorID:    s.author.ID,
		CategoryID:  &s.category.ID,
	}
	if mutate != nil {
		mutate(post)
	}
	s.Require().NoError(s.posts.CreatePost(s.ctx, post))
	return post
}

func (s *HandlersTestSuite) createComment(post *models.Post, author *models.User, text string) *models.Comment {
	comment := &models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID}
	s.Require().NoError(s.comments.CreateComment(s.ctx, comment))
	return comment
}

// do sends a request as user (anonymous when nil). A non-nil form is posted
// url-encoded together with a valid CSRF token.
func (s *HandlersTestSuite) do(method, target string, form url.Values, user *models.User) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		form.Set(middleware.CSRFFormField, testCSRFToken)
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	s.authenticate(req, user)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) authenticate(req *http.Request, user *models.User) {
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: testCSRFToken})
	if user == nil {
		return
	}
	token, _, err := s.sessions.Issue(user)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
}

func postPath(post *models.Post, suffix string) string {
	return "/posts/" + strconv.FormatUint(uint64(post.ID), 10) + "/" + suffix
}

func commentPath(comment *models.Comment, action string) string {
	return "/posts/" + strconv.FormatUint(uint64(comment.PostID), 10) + "/" + action + "/" +
		strconv.FormatUint(uint64(comment.ID), 10) + "/"
}

func (s *HandlersTestSuite) postForm(title string) url.Values {
	return url.Values{
		"title":        {title},
		"text":         {"Some text"},
		"pub_date":     {"2024-05-01T10:00"},
		"category":     {strconv.FormatUint(uint64(s.category.ID), 10)},
		"is_published": {"true"},
	}
}

func (s *HandlersTestSuite) TestRendererParsesEveryPage() {
	r, err := NewRenderer()
	s.Require().NoError(err)

	for _, name := range []string{
		"blog/index.html", "blog/detail.html", "blog/category.html", "blog/profile.html",
		"blog/create.html", "blog/comment.html", "blog/user.html",
		"registration/registration_form.html", "registration/login.html", "registration/logged_out.html",
		"registration/password_change_form.html", "registration/password_change_done.html",
		"registration/password_reset_form.html", "registration/password_reset_done.html",
		"registration/password_reset_confirm.html", "registration/password_reset_complete.html",
		"pages/about.html", "pages/rules.html", "pages/contacts.html",
		"errors/404.html", "errors/403csrf.html", "errors/500.html", "errors/error.html",
	} {
		s.True(r.Has(name), name)
	}
	s.False(r.Has("base.html"))
}

func (s *HandlersTestSuite) TestIndexShowsOnlyLivePosts() {
	s.createPost("Live post", nil)
	s.createPost("Draft post", func(p *models.Post) { p.IsPublished = false })
	s.createPost("Future post", func(p *models.Post) { p.PubDate = s.now.Add(time.Hour) })
	s.createPost("Secret post", func(p *models.Post) { p.CategoryID = &s.hidden.ID })

	w := s.do(http.MethodGet, "/", nil, s.author)
	s.Equal(http.StatusOK, w.Code)

	body := w.Body.String()
	s.Contains(body, "Live post")
	s.NotContains(body, "Draft post")
	s.NotContains(body, "Future post")
	s.NotContains(body, "Secret post")
}

func (s *HandlersTestSuite) TestIndexOrdersNewestFirstWithCommentCounts() {
	older := s.createPost("Older post", func(p *models.Post) { p.PubDate = s.now.Add(-2 * time.Hour) })
	s.createPost("Newer post", nil)
	s.createComment(older, s.reader, "first")
	s.createComment(older, s.author, "second")

	body := s.do(http.MethodGet, "/", nil, nil).Body.String()
	s.Less(strings.Index(body, "Newer post"), strings.Index(body, "Older post"))
	s.Contains(body, "Comments (2)")
	s.Contains(body, "Comments (0)")
}

func (s *HandlersTestSuite) TestPagination() {
	for i := 0; i < 3; i++ {
		s.createPost("Post "+strconv.Itoa(i), func(p *models.Post) {
			p.PubDate = s.now.Add(-time.Duration(i+1) * time.Hour)
		})
	}

	first := s.do(http.MethodGet, "/", nil, nil)
	s.Equal(http.StatusOK, first.Code)
	s.Contains(first.Body.String(), "Page 1 of 2")

	last := s.do(http.MethodGet, "/?page=last", nil, nil)
	s.Equal(http.StatusOK, last.Code)
	s.Contains(last.Body.String(), "Post 2")
	s.NotContains(last.Body.String(), "Post 0")

	for _, page := range []string{"3", "0", "abc"} {
		w := s.do(http.MethodGet, "/?page="+page, nil, nil)
		s.Equal(http.StatusNotFound, w.Code, page)
	}
}

func (s *HandlersTestSuite) TestCategoryPage() {
	s.createPost("Travel post", nil)

	w := s.do(http.MethodGet, "/category/travel/", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Travel post")

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/category/secret/", nil, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/category/missing/", nil, nil).Code)
}

func (s *HandlersTestSuite) TestProfileOwnerSeesDrafts() {
	s.createPost("Draft post", func(p *models.Post) { p.IsPublished = false })
	s.createPost("Scheduled post", func(p *models.Post) { p.PubDate = s.now.Add(24 * time.Hour) })

	own := s.do(http.MethodGet, "/profile/author/", nil, s.author).Body.String()
	s.Contains(own, "Draft post")
	s.Contains(own, "Scheduled post")
	s.Contains(own, "Edit profile")

	other := s.do(http.MethodGet, "/profile/author/", nil, s.reader).Body.String()
	s.NotContains(other, "Draft post")
	s.NotContains(other, "Scheduled post")
	s.NotContains(other, "Edit profile")

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/profile/nobody/", nil, nil).Code)
}

func (s *HandlersTestSuite) TestPostDetailHidesNonLivePostsFromOthers() {
	draft := s.createPost("Draft post", func(p *models.Post) { p.IsPublished = false })

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, postPath(draft, ""), nil, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, postPath(draft, ""), nil, s.reader).Code)

	w := s.do(http.MethodGet, postPath(draft, ""), nil, s.author)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Draft post")
}

func (s *HandlersTestSuite) TestScheduledPostBecomesVisible() {
	post := s.createPost("Scheduled post", func(p *models.Post) { p.PubDate = s.now.Add(time.Hour) })

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, postPath(post, ""), nil, nil).Code)

	s.now = s.now.Add(2 * time.Hour)
	w := s.do(http.MethodGet, postPath(post, ""), nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(s.do(http.MethodGet, "/", nil, nil).Body.String(), "Scheduled post")
}

func (s *HandlersTestSuite) TestAnonymousEditRedirectsToLogin() {
	post := s.createPost("Original", nil)

	w := s.do(http.MethodGet, postPath(post, "edit/"), nil, nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/auth/login/?next="+url.QueryEscape(postPath(post, "edit/")), w.Header().Get("Location"))

	w = s.do(http.MethodPost, postPath(post, "edit/"), s.postForm("Changed"), nil)
	s.Equal(http.StatusSeeOther, w.Code)
	s.True(strings.HasPrefix(w.Header().Get("Location"), middleware.LoginURL))

	stored, err := s.posts.GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal("Original", stored.Title)
}

func (s *HandlersTestSuite) TestNonAuthorCannotEditOrDeletePost() {
	post := s.createPost("Original", nil)

	w := s.do(http.MethodPost, postPath(post, "edit/"), s.postForm("Changed"), s.reader)
	s.Equal(http.StatusSeeOther, w.Code)
	s.Equal(postPath(post, ""), w.Header().Get("Location"))

	w = s.do(http.MethodPost, postPath(post, "delete/"), url.Values{}, s.reader)
	s.Equal(http.StatusSeeOther, w.Code)

	stored, err := s.posts.GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal("Original", stored.Title)
}

func (s *HandlersTestSuite) TestCreatePost() {
	w := s.do(http.MethodPost, "/posts/create/", s.postForm("Brand new"), s.author)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/profile/author/", w.Header().Get("Location"))

	posts, err := s.posts.ListAllPosts(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(posts, 1)
	s.Equal("Brand new", posts[0].Title)
	s.Equal(s.author.ID, posts[0].AuthorID)
	s.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), posts[0].PubDate.UTC())
	s.False(posts[0].IsScheduled)
}

func (s *HandlersTestSuite) TestCreatePostValidation() {
	form := s.postForm("")
	form.Set("category", "9999")
	form.Set("pub_date", "yesterday")

	w := s.do(http.MethodPost, "/posts/create/", form, s.author)
	s.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Contains(body, "This field is required.")
	s.Contains(body, "Enter a valid date/time.")
	s.Contains(body, "Select a valid choice.")

	posts, err := s.posts.ListAllPosts(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(posts)
}

func (s *HandlersTestSuite) TestCreatePostWithImage() {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, values := range s.postForm("With image") {
		s.Require().NoError(mw.WriteField(key, values[0]))
	}
	s.Require().NoError(mw.WriteField(middleware.CSRFFormField, testCSRFToken))
	part, err := mw.CreateFormFile("image", "photo.png")
	s.Require().NoError(err)
	_, err = part.Write(pngHeader)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	s.authenticate(req, s.author)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusFound, w.Code)

	posts, err := s.posts.ListAllPosts(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(posts, 1)
	s.True(strings.HasPrefix(posts[0].ImageURL, "/media/"))
	s.FileExists(filepath.Join(s.mediaRoot, filepath.FromSlash(posts[0].ImageKey)))

	// Editing with image_clear removes the stored file
	form := s.postForm("With image")
	form.Set("image_clear", "true")
	w = s.do(http.MethodPost, postPath(&posts[0], "edit/"), form, s.author)
	s.Require().Equal(http.StatusFound, w.Code)

	stored, err := s.posts.GetPost(s.ctx, posts[0].ID)
	s.Require().NoError(err)
	s.Empty(stored.ImageURL)
	_, err = os.Stat(filepath.Join(s.mediaRoot, filepath.FromSlash(posts[0].ImageKey)))
	s.True(os.IsNotExist(err))
}

func (s *HandlersTestSuite) TestAuthorEditsAndDeletesPost() {
	post := s.createPost("Original", nil)

	s.Equal(http.StatusOK, s.do(http.MethodGet, postPath(post, "edit/"), nil, s.author).Code)

	w := s.do(http.MethodPost, postPath(post, "edit/"), s.postForm("Changed"), s.author)
	s.Equal(http.StatusFound, w.Code)
	s.Equal(postPath(post, ""), w.Header().Get("Location"))

	stored, err := s.posts.GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal("Changed", stored.Title)

	confirm := s.do(http.MethodGet, postPath(post, "delete/"), nil, s.author)
	s.Equal(http.StatusOK, confirm.Code)
	s.Contains(confirm.Body.String(), "Delete post")

	w = s.do(http.MethodPost, postPath(post, "delete/"), url.Values{}, s.author)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/profile/author/", w.Header().Get("Location"))

	_, err = s.posts.GetPost(s.ctx, post.ID)
	s.Error(err)
}

func (s *HandlersTestSuite) TestAddComment() {
	post := s.createPost("Commented", nil)

	w := s.do(http.MethodPost, postPath(post, "comment/"), url.Values{"text": {"Nice post"}}, s.reader)
	s.Equal(http.StatusFound, w.Code)
	s.Equal(postPath(post, ""), w.Header().Get("Location"))

	w = s.do(http.MethodPost, postPath(post, "comment/"), url.Values{"text": {"   "}}, s.reader)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "This field is required.")

	count, err := s.comments.CountPostComments(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	detail := s.do(http.MethodGet, postPath(post, ""), nil, nil).Body.String()
	s.Contains(detail, "Nice post")
	s.Contains(detail, "Comments (1)")
}

func (s *HandlersTestSuite) TestCannotCommentOnHiddenPost() {
	draft := s.createPost("Draft", func(p *models.Post) { p.IsPublished = false })

	w := s.do(http.MethodPost, postPath(draft, "comment/"), url.Values{"text": {"hello"}}, s.reader)
	s.Equal(http.StatusNotFound, w.Code)

	count, err := s.comments.CountPostComments(s.ctx, draft.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *HandlersTestSuite) TestNonAuthorCannotEditOrDeleteComment() {
	post := s.createPost("Commented", nil)
	comment := s.createComment(post, s.author, "mine")

	w := s.do(http.MethodPost, commentPath(comment, "edit_comment"), url.Values{"text": {"hijacked"}}, s.reader)
	s.Equal(http.StatusSeeOther, w.Code)
	s.Equal(postPath(post, ""), w.Header().Get("Location"))

	w = s.do(http.MethodPost, commentPath(comment, "delete_comment"), url.Values{}, s.reader)
	s.Equal(http.StatusSeeOther, w.Code)

	stored, err := s.comments.GetPostComment(s.ctx, post.ID, comment.ID)
	s.Require().NoError(err)
	s.Equal("mine", stored.Text)
}

func (s *HandlersTestSuite) TestAuthorEditsAndDeletesComment() {
	post := s.createPost("Commented", nil)
	comment := s.createComment(post, s.reader, "typo")

	w := s.do(http.MethodPost, commentPath(comment, "edit_comment"), url.Values{"text": {"fixed"}}, s.reader)
	s.Equal(http.StatusFound, w.Code)

	stored, err := s.comments.GetPostComment(s.ctx, post.ID, comment.ID)
	s.Require().NoError(err)
	s.Equal("fixed", stored.Text)

	w = s.do(http.MethodPost, commentPath(comment, "delete_comment"), url.Values{}, s.reader)
	s.Equal(http.StatusFound, w.Code)

	_, err = s.comments.GetPostComment(s.ctx, post.ID, comment.ID)
	s.Error(err)
}

func (s *HandlersTestSuite) TestCommentMustBelongToPost() {
	post := s.createPost("First", nil)
	other := s.createPost("Second", nil)
	comment := s.createComment(post, s.reader, "on first")

	target := postPath(other, "edit_comment/"+strconv.FormatUint(uint64(comment.ID), 10)+"/")
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, target, nil, s.reader).Code)
}

func (s *HandlersTestSuite) TestCSRFRequiredOnPost() {
	req := httptest.NewRequest(http.MethodPost, "/posts/create/", strings.NewReader(s.postForm("No token").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	token, _, err := s.sessions.Issue(s.author)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusForbidden, w.Code)
	s.Contains(w.Body.String(), "CSRF verification failed")

	posts, err := s.posts.ListAllPosts(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(posts)
}

func (s *HandlersTestSuite) TestRegistrationAndLogin() {
	w := s.do(http.MethodPost, "/auth/registration/", url.Values{
		"username":  {"newbie"},
		"email":     {"newbie@example.com"},
		"password1": {testPassword},
		"password2": {testPassword},
	}, nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))

	w = s.do(http.MethodPost, "/auth/registration/", url.Values{
		"username":  {"newbie"},
		"password1": {testPassword},
		"password2": {testPassword},
	}, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "A user with that username already exists.")

	w = s.do(http.MethodPost, "/auth/registration/", url.Values{
		"username":  {"another"},
		"password1": {"12345678"},
		"password2": {"12345678"},
	}, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "This password is entirely numeric.")

	w = s.do(http.MethodPost, "/auth/login/", url.Values{
		"username": {"newbie"},
		"password": {testPassword},
		"next":     {"/pages/about/"},
	}, nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/pages/about/", w.Header().Get("Location"))
	s.Contains(w.Header().Get("Set-Cookie"), auth.SessionCookieName+"=")
}

func (s *HandlersTestSuite) TestRegistrationReportsTakenUsernameWithOtherErrors() {
	w := s.do(http.MethodPost, "/auth/registration/", url.Values{
		"username":  {"author"},
		"email":     {"not-an-email"},
		"password1": {testPassword},
		"password2": {"something else"},
	}, nil)
	s.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Contains(body, "A user with that username already exists.")
	s.Contains(body, "Enter a valid email address.")

	w = s.do(http.MethodPost, "/auth/registration/", url.Values{
		"username":  {"no spaces allowed"},
		"email":     {"spaces@example.com"},
		"password1": {testPassword},
		"password2": {testPassword},
	}, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Enter a valid username.")
	s.NotContains(w.Body.String(), "A user with that username already exists.")

	_, err := s.users.GetUserByUsername(s.ctx, "no spaces allowed")
	s.ErrorIs(err, repository.ErrUserNotFound)
}

func (s *HandlersTestSuite) TestLoginFailures() {
	w := s.do(http.MethodPost, "/auth/login/", url.Values{
		"username": {"author"},
		"password": {"wrong password"},
	}, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Please enter a correct username and password.")

	w = s.do(http.MethodPost, "/auth/login/", url.Values{
		"username": {"author"},
		"password": {testPassword},
		"next":     {"https://evil.example.com/"},
	}, nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))
}

func (s *HandlersTestSuite) TestLogout() {
	w := s.do(http.MethodPost, "/auth/logout/", url.Values{}, s.author)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "You have been logged out")
	s.Contains(w.Header().Get("Set-Cookie"), auth.SessionCookieName+"=;")
}

func (s *HandlersTestSuite) TestEditProfile() {
	w := s.do(http.MethodPost, "/edit_profile/", url.Values{
		"username":   {"renamed"},
		"first_name": {"Ann"},
		"last_name":  {"Author"},
		"email":      {"ann@example.com"},
	}, s.author)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/profile/renamed/", w.Header().Get("Location"))

	w = s.do(http.MethodPost, "/edit_profile/", url.Values{"username": {"reader"}}, s.author)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "A user with that username already exists.")

	w = s.do(http.MethodPost, "/edit_profile/", url.Values{
		"username": {"reader"},
		"email":    {"broken@"},
	}, s.author)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "A user with that username already exists.")
	s.Contains(w.Body.String(), "Enter a valid email address.")

	// Keeping your own username is not a clash
	w = s.do(http.MethodPost, "/edit_profile/", url.Values{"username": {"renamed"}}, s.author)
	s.Equal(http.StatusFound, w.Code)
}

func (s *HandlersTestSuite) TestPasswordChangeKeepsCurrentSession() {
	w := s.do(http.MethodPost, "/password/change/", url.Values{
		"old_password":  {"not it"},
		"new_password1": {"another-good-pass-7"},
		"new_password2": {"another-good-pass-7"},
	}, s.author)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Your old password was entered incorrectly.")

	w = s.do(http.MethodPost, "/password/change/", url.Values{
		"old_password":  {testPassword},
		"new_password1": {"another-good-pass-7"},
		"new_password2": {"another-good-pass-7"},
	}, s.author)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/password/change/done/", w.Header().Get("Location"))
	s.Contains(w.Header().Get("Set-Cookie"), auth.SessionCookieName+"=")

	// Sessions issued before the change no longer authenticate
	w = s.do(http.MethodGet, "/posts/create/", nil, s.author)
	s.Equal(http.StatusFound, w.Code)
}

func (s *HandlersTestSuite) TestPasswordResetFlow() {
	w := s.do(http.MethodPost, "/password/reset/", url.Values{"email": {"nobody@example.com"}}, nil)
	s.Equal(http.StatusFound, w.Code)
	s.Empty(s.mailer.sent)

	w = s.do(http.MethodPost, "/password/reset/", url.Values{"email": {"reader@example.com"}}, nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/password/reset/done/", w.Header().Get("Location"))
	s.Require().Len(s.mailer.sent, 1)
	s.Equal("reader@example.com", s.mailer.sent[0].to)

	link, err := url.Parse(s.mailer.sent[0].link)
	s.Require().NoError(err)
	s.Equal("blog.test", link.Host)

	page := s.do(http.MethodGet, link.Path, nil, nil)
	s.Equal(http.StatusOK, page.Code)
	s.Contains(page.Body.String(), "Choose a new password")

	w = s.do(http.MethodPost, link.Path, url.Values{
		"new_password1": {"brand-new-secret-5"},
		"new_password2": {"brand-new-secret-5"},
	}, nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/password/reset/complete/", w.Header().Get("Location"))

	// The link works once
	reused := s.do(http.MethodGet, link.Path, nil, nil)
	s.Contains(reused.Body.String(), "Password reset unsuccessful")

	_, err = s.accounts.Authenticate(s.ctx, "reader", "brand-new-secret-5")
	s.NoError(err)
}

func (s *HandlersTestSuite) TestStaticAndErrorPages() {
	for _, path := range []string{"/pages/about/", "/pages/rules/", "/pages/contacts/", "/auth/login/", "/auth/registration/"} {
		s.Equal(http.StatusOK, s.do(http.MethodGet, path, nil, nil).Code, path)
	}

	w := s.do(http.MethodGet, "/no/such/page/", nil, s.author)
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), "Log out")

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health", nil, nil).Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
