package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/metrics"
	"github.com/zfogg/blogicum/internal/models"
	"github.com/zfogg/blogicum/internal/repository"
	"github.com/zfogg/blogicum/internal/storage"
	"github.com/zfogg/blogicum/internal/telemetry"
	"github.com/zfogg/blogicum/internal/util"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Index renders the public post feed
// GET /
func (h *Handlers) Index(c *gin.Context) {
	h.renderListing(c, "index", "blog/index.html", repository.ListOptions{
		ApplyFilters:  true,
		CountComments: true,
	}, gin.H{})
}

// CategoryPosts renders the live posts of one published category
// GET /category/:category_slug/
func (h *Handlers) CategoryPosts(c *gin.Context) {
	category, err := h.categories.GetPublishedCategory(c.Request.Context(), c.Param("category_slug"))
	if util.HandleDBError(c, err, "category") {
		return
	}

	h.renderListing(c, "category", "blog/category.html", repository.ListOptions{
		Scopes:        []repository.Scope{repository.InCategory(category.ID)},
		ApplyFilters:  true,
		CountComments: true,
	}, gin.H{"category": category})
}

// Profile renders a user's posts. Owners also see their unpublished and
// scheduled posts; everyone else gets the public feed rules.
// GET /profile/:username/
func (h *Handlers) Profile(c *gin.Context) {
	profile, err := h.users.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if util.HandleDBError(c, err, "user") {
		return
	}

	isOwner := util.GetUserIDFromContext(c) == profile.ID
	h.renderListing(c, "profile", "blog/profile.html", repository.ListOptions{
		Scopes:        []repository.Scope{repository.ByAuthor(profile.ID)},
		ApplyFilters:  !isOwner,
		CountComments: true,
	}, gin.H{"profile": profile, "is_owner": isOwner})
}

func (h *Handlers) renderListing(c *gin.Context, listing, page string, opts repository.ListOptions, data gin.H) {
	req, err := util.ParsePage(c.Query("page"), h.pageSize)
	if err != nil {
		util.RenderNotFound(c, "page")
		return
	}

	ctx, span := h.events.TraceListPosts(c.Request.Context(), telemetry.ListingAttrs{
		Listing:      listing,
		Page:         req.Number,
		ApplyFilters: opts.ApplyFilters,
	})
	defer span.End()

	result, err := h.posts.ListPosts(ctx, opts, req)
	if err != nil {
		telemetry.RecordError(span, err)
		util.HandleDBError(c, err, "page")
		return
	}
	span.SetAttributes(attribute.Int("listing.item_count", len(result.Posts)))
	metrics.Get().ListingPagesRendered.WithLabelValues(listing).Inc()

	data["page_obj"] = result.Page
	data["posts"] = result.Posts
	h.render(c, http.StatusOK, page, data)
}

// PostDetail renders a post with its comments. Posts that are not live are
// shown to their author only; everyone else gets a 404.
// GET /posts/:post_id/
func (h *Handlers) PostDetail(c *gin.Context) {
	post, ok := h.visiblePost(c)
	if !ok {
		return
	}
	h.renderDetail(c, http.StatusOK, post, CommentForm{}, FormErrors{})
}

// visiblePost loads the :post_id post if the current user may see it,
// rendering a 404 otherwise
func (h *Handlers) visiblePost(c *gin.Context) (*models.Post, bool) {
	postID, err := util.ParseID(c.Param("post_id"))
	if err != nil {
		util.RenderNotFound(c, "post")
		return nil, false
	}

	post, err := h.posts.GetVisiblePost(c.Request.Context(), postID, util.GetUserIDFromContext(c))
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			metrics.Get().PostsHiddenFromViewer.Inc()
		}
		util.HandleDBError(c, err, "post")
		return nil, false
	}
	return post, true
}

func (h *Handlers) renderDetail(c *gin.Context, status int, post *models.Post, form CommentForm, errs FormErrors) {
	comments, err := h.comments.ListPostComments(c.Request.Context(), post.ID)
	if err != nil {
		util.RenderInternalError(c, err)
		return
	}

	h.render(c, status, "blog/detail.html", gin.H{
		"post":     post,
		"comments": comments,
		"form":     form,
		"errors":   errs,
	})
}

// CreatePostForm renders an empty post form
// GET /posts/create/
func (h *Handlers) CreatePostForm(c *gin.Context) {
	form := PostForm{
		PubDate:     h.policy.Now().Format(util.DateTimeLocalLayout),
		IsPublished: true,
	}
	h.renderPostForm(c, http.StatusOK, form, FormErrors{}, nil)
}

// CreatePost saves a new post authored by the current user
// POST /posts/create/
func (h *Handlers) CreatePost(c *gin.Context) {
	user, _ := util.GetUserFromContext(c)

	var form PostForm
	errs := bindForm(c, &form)
	input := h.validatePostForm(c, &form, errs)
	if errs.Any() {
		h.renderPostForm(c, http.StatusOK, form, errs, nil)
		return
	}

	post := &models.Post{
		Title:       form.Title,
		Text:        form.Text,
		PubDate:     input.pubDate,
		IsPublished: form.IsPublished,
		AuthorID:    user.ID,
		CategoryID:  input.categoryID,
		LocationID:  input.locationID,
	}

	ctx, span := h.events.TraceCreatePost(c.Request.Context(), user.ID, post.PubDate.After(h.policy.Now()))
	defer span.End()

	if input.image != nil {
		upload, err := h.saveImage(ctx, input.image, user.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			util.RenderInternalError(c, err)
			return
		}
		post.ImageKey = upload.Key
		post.ImageURL = upload.URL
	}

	if err := h.posts.CreatePost(ctx, post); err != nil {
		telemetry.RecordError(span, err)
		h.deleteImage(ctx, post.ImageKey)
		util.RenderInternalError(c, err)
		return
	}

	metrics.Get().PostsCreatedTotal.WithLabelValues(strconv.FormatBool(post.IsScheduled)).Inc()
	logger.Log.Info("Post created",
		logger.WithPostID(post.ID),
		logger.WithUserID(user.ID),
		zap.Bool("scheduled", post.IsScheduled),
	)

	h.redirectToProfile(c)
}

// EditPostForm renders the form for an existing post
// GET /posts/:post_id/edit/
func (h *Handlers) EditPostForm(c *gin.Context) {
	post := guardedPost(c)
	h.renderPostForm(c, http.StatusOK, postFormFrom(post), FormErrors{}, post)
}

// EditPost saves changes to a post. The scheduled flag keeps its value
// from creation.
// POST /posts/:post_id/edit/
func (h *Handlers) EditPost(c *gin.Context) {
	post := guardedPost(c)
	ctx := c.Request.Context()

	var form PostForm
	errs := bindForm(c, &form)
	input := h.validatePostForm(c, &form, errs)
	if errs.Any() {
		h.renderPostForm(c, http.StatusOK, form, errs, post)
		return
	}

	oldImageKey := post.ImageKey
	post.Title = form.Title
	post.Text = form.Text
	post.PubDate = input.pubDate
	post.IsPublished = form.IsPublished
	post.CategoryID = input.categoryID
	post.LocationID = input.locationID

	switch {
	case input.image != nil:
		upload, err := h.saveImage(ctx, input.image, post.AuthorID)
		if err != nil {
			util.RenderInternalError(c, err)
			return
		}
		post.ImageKey = upload.Key
		post.ImageURL = upload.URL
	case form.ClearImage:
		post.ImageKey = ""
		post.ImageURL = ""
	}

	if err := h.posts.UpdatePost(ctx, post); err != nil {
		if post.ImageKey != oldImageKey {
			h.deleteImage(ctx, post.ImageKey)
		}
		util.HandleDBError(c, err, "post")
		return
	}

	if oldImageKey != "" && oldImageKey != post.ImageKey {
		h.deleteImage(ctx, oldImageKey)
	}

	logger.Log.Info("Post updated", logger.WithPostID(post.ID), logger.WithUserID(post.AuthorID))
	c.Redirect(http.StatusFound, postDetailURL(post.ID))
}

// DeletePostConfirm asks the author to confirm deletion
// GET /posts/:post_id/delete/
func (h *Handlers) DeletePostConfirm(c *gin.Context) {
	post := guardedPost(c)
	h.render(c, http.StatusOK, "blog/create.html", gin.H{
		"post":     post,
		"form":     postFormFrom(post),
		"errors":   FormErrors{},
		"deleting": true,
	})
}

// DeletePost deletes a post with its comments and stored image
// POST /posts/:post_id/delete/
func (h *Handlers) DeletePost(c *gin.Context) {
	post := guardedPost(c)

	ctx, span := h.events.TraceDeletePost(c.Request.Context(), post.ID)
	defer span.End()

	if err := h.posts.DeletePost(ctx, post.ID); err != nil {
		telemetry.RecordError(span, err)
		util.HandleDBError(c, err, "post")
		return
	}
	h.deleteImage(ctx, post.ImageKey)

	metrics.Get().PostsDeletedTotal.Inc()
	logger.Log.Info("Post deleted", logger.WithPostID(post.ID), logger.WithUserID(post.AuthorID))

	h.redirectToProfile(c)
}

// postInput holds the parsed, validated non-text fields of a PostForm
type postInput struct {
	pubDate    time.Time
	categoryID *uint
	locationID *uint
	image      *storage.Image
}

func (h *Handlers) validatePostForm(c *gin.Context, form *PostForm, errs FormErrors) postInput {
	ctx := c.Request.Context()
	var input postInput

	requireText(errs, "title", &form.Title)
	requireText(errs, "text", &form.Text)

	if form.PubDate != "" {
		pubDate, err := util.ParseDateTimeLocal(form.PubDate, time.UTC)
		if err != nil {
			errs.Add("pub_date", "Enter a valid date/time.")
		}
		input.pubDate = pubDate
	}

	if form.Category != "" {
		id, err := util.ParseID(form.Category)
		if err == nil {
			_, err = h.categories.GetCategory(ctx, id)
		}
		if err != nil {
			errs.Add("category", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			input.categoryID = &id
		}
	}

	if form.Location != "" {
		id, err := util.ParseID(form.Location)
		if err == nil {
			_, err = h.locations.GetLocation(ctx, id)
		}
		if err != nil {
			errs.Add("location", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			input.locationID = &id
		}
	}

	header, err := c.FormFile("image")
	switch {
	case err == nil:
		img, err := storage.ReadImage(header)
		switch {
		case errors.Is(err, storage.ErrImageTooLarge):
			errs.Add("image", "The image file is too large (5 MB maximum).")
		case err != nil:
			errs.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		default:
			input.image = img
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		errs.Add("image", "The submitted file could not be read.")
	}

	return input
}

func (h *Handlers) renderPostForm(c *gin.Context, status int, form PostForm, errs FormErrors, post *models.Post) {
	ctx := c.Request.Context()

	categories, err := h.categories.ListCategories(ctx, true)
	if err != nil {
		util.RenderInternalError(c, err)
		return
	}
	locations, err := h.locations.ListLocations(ctx, true)
	if err != nil {
		util.RenderInternalError(c, err)
		return
	}

	h.render(c, status, "blog/create.html", gin.H{
		"form":       form,
		"errors":     errs,
		"post":       post,
		"categories": categories,
		"locations":  locations,
	})
}

func postFormFrom(post *models.Post) PostForm {
	form := PostForm{
		Title:       post.Title,
		Text:        post.Text,
		PubDate:     post.PubDate.UTC().Format(util.DateTimeLocalLayout),
		IsPublished: post.IsPublished,
	}
	if post.CategoryID != nil {
		form.Category = strconv.FormatUint(uint64(*post.CategoryID), 10)
	}
	if post.LocationID != nil {
		form.Location = strconv.FormatUint(uint64(*post.LocationID), 10)
	}
	return form
}

func (h *Handlers) saveImage(ctx context.Context, img *storage.Image, authorID uint) (*storage.UploadResult, error) {
	ctx, span := h.events.TraceExternalCall(ctx, "storage", "save_image")
	defer span.End()

	upload, err := h.images.SaveImage(ctx, img, authorID)
	if err != nil {
		telemetry.RecordError(span, err)
		metrics.Get().ImageUploadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.Get().ImageUploadsTotal.WithLabelValues("success").Inc()
	return upload, nil
}

// deleteImage removes a stored image, logging instead of failing
func (h *Handlers) deleteImage(ctx context.Context, key string) {
	if key == "" {
		return
	}

	ctx, span := h.events.TraceExternalCall(ctx, "storage", "delete_image")
	defer span.End()

	if err := h.images.DeleteImage(ctx, key); err != nil {
		telemetry.RecordError(span, err)
		logger.Log.Warn("Failed to delete post image",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
