package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/metrics"
	"github.com/zfogg/blogicum/internal/models"
	"github.com/zfogg/blogicum/internal/telemetry"
	"github.com/zfogg/blogicum/internal/util"
)

// AddComment adds a comment by the current user to a post they can see.
// The author and post come from the session and the URL, never the form.
// POST /posts/:post_id/comment/
func (h *Handlers) AddComment(c *gin.Context) {
	post, ok := h.visiblePost(c)
	if !ok {
		return
	}
	user, _ := util.GetUserFromContext(c)

	var form CommentForm
	errs := bindForm(c, &form)
	requireText(errs, "text", &form.Text)
	if errs.Any() {
		h.renderDetail(c, http.StatusOK, post, form, errs)
		return
	}

	ctx, span := h.events.TraceComment(c.Request.Context(), "create", post.ID)
	defer span.End()

	comment := &models.Comment{
		Text:     form.Text,
		PostID:   post.ID,
		AuthorID: user.ID,
	}
	if err := h.comments.CreateComment(ctx, comment); err != nil {
		telemetry.RecordError(span, err)
		util.RenderInternalError(c, err)
		return
	}

	metrics.Get().CommentsTotal.WithLabelValues("create").Inc()
	logger.Log.Info("Comment created",
		logger.WithCommentID(comment.ID),
		logger.WithPostID(post.ID),
		logger.WithUserID(user.ID),
	)

	c.Redirect(http.StatusFound, postDetailURL(post.ID))
}

// EditCommentForm renders the comment edit form
// GET /posts/:post_id/edit_comment/:comment_id/
func (h *Handlers) EditCommentForm(c *gin.Context) {
	comment := guardedComment(c)
	h.renderCommentPage(c, http.StatusOK, comment, CommentForm{Text: comment.Text}, FormErrors{}, false)
}

// EditComment saves a new comment text
// POST /posts/:post_id/edit_comment/:comment_id/
func (h *Handlers) EditComment(c *gin.Context) {
	comment := guardedComment(c)

	var form CommentForm
	errs := bindForm(c, &form)
	requireText(errs, "text", &form.Text)
	if errs.Any() {
		h.renderCommentPage(c, http.StatusOK, comment, form, errs, false)
		return
	}

	ctx, span := h.events.TraceComment(c.Request.Context(), "edit", comment.PostID)
	defer span.End()

	if err := h.comments.UpdateCommentText(ctx, comment.ID, form.Text); err != nil {
		telemetry.RecordError(span, err)
		util.HandleDBError(c, err, "comment")
		return
	}

	metrics.Get().CommentsTotal.WithLabelValues("edit").Inc()
	c.Redirect(http.StatusFound, postDetailURL(comment.PostID))
}

// DeleteCommentConfirm asks the author to confirm deletion
// GET /posts/:post_id/delete_comment/:comment_id/
func (h *Handlers) DeleteCommentConfirm(c *gin.Context) {
	comment := guardedComment(c)
	h.renderCommentPage(c, http.StatusOK, comment, CommentForm{Text: comment.Text}, FormErrors{}, true)
}

// DeleteComment deletes a comment
// POST /posts/:post_id/delete_comment/:comment_id/
func (h *Handlers) DeleteComment(c *gin.Context) {
	comment := guardedComment(c)

	ctx, span := h.events.TraceComment(c.Request.Context(), "delete", comment.PostID)
	defer span.End()

	if err := h.comments.DeleteComment(ctx, comment.ID); err != nil {
		telemetry.RecordError(span, err)
		util.HandleDBError(c, err, "comment")
		return
	}

	metrics.Get().CommentsTotal.WithLabelValues("delete").Inc()
	logger.Log.Info("Comment deleted",
		logger.WithCommentID(comment.ID),
		logger.WithPostID(comment.PostID),
	)

	c.Redirect(http.StatusFound, postDetailURL(comment.PostID))
}

func (h *Handlers) renderCommentPage(c *gin.Context, status int, comment *models.Comment, form CommentForm, errs FormErrors, deleting bool) {
	h.render(c, status, "blog/comment.html", gin.H{
		"comment":  comment,
		"form":     form,
		"errors":   errs,
		"deleting": deleting,
	})
}
