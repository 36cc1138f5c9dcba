package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/models"
	"github.com/zfogg/blogicum/internal/util"
	"go.uber.org/zap"
)

// Context keys for resources loaded by the guards
const (
	postKey    = "post"
	commentKey = "comment"
)

// RequirePostAuthor loads the post named by :post_id and lets only its
// author through. Others are redirected to the post page. Must run after
// middleware.RequireLogin.
func (h *Handlers) RequirePostAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := util.ParseID(c.Param("post_id"))
		if err != nil {
			util.RenderNotFound(c, "post")
			return
		}

		post, err := h.posts.GetPost(c.Request.Context(), postID)
		if util.HandleDBError(c, err, "post") {
			return
		}

		userID := util.GetUserIDFromContext(c)
		if !post.IsAuthoredBy(userID) {
			denyAuthorship(c, "post", post.ID, userID)
			return
		}

		c.Set(postKey, post)
		c.Next()
	}
}

// RequireCommentAuthor loads the comment named by :comment_id, which must
// belong to the post named by :post_id, and lets only its author through
func (h *Handlers) RequireCommentAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := util.ParseID(c.Param("post_id"))
		if err != nil {
			util.RenderNotFound(c, "post")
			return
		}
		commentID, err := util.ParseID(c.Param("comment_id"))
		if err != nil {
			util.RenderNotFound(c, "comment")
			return
		}

		comment, err := h.comments.GetPostComment(c.Request.Context(), postID, commentID)
		if util.HandleDBError(c, err, "comment") {
			return
		}

		userID := util.GetUserIDFromContext(c)
		if !comment.IsAuthoredBy(userID) {
			denyAuthorship(c, "comment", postID, userID)
			return
		}

		c.Set(commentKey, comment)
		c.Next()
	}
}

func denyAuthorship(c *gin.Context, resource string, postID, userID uint) {
	logger.Log.Info("Rejected edit by non-author",
		zap.String("resource", resource),
		logger.WithPostID(postID),
		logger.WithUserID(userID),
		logger.WithRequestID(util.GetRequestID(c)),
	)
	c.Redirect(http.StatusSeeOther, postDetailURL(postID))
	c.Abort()
}

func guardedPost(c *gin.Context) *models.Post {
	return c.MustGet(postKey).(*models.Post)
}

func guardedComment(c *gin.Context) *models.Comment {
	return c.MustGet(commentKey).(*models.Comment)
}
