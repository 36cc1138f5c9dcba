package middleware

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/blogicum/internal/util"
)

// errorPages stands in for the real error templates
const errorPages = `
{{define "` + util.NotFoundTemplate + `"}}not found{{end}}
{{define "` + util.CSRFTemplate + `"}}csrf: {{.reason}}{{end}}
{{define "` + util.ServerTemplate + `"}}server error{{end}}
{{define "` + util.GenericTemplate + `"}}{{.status}} {{.message}}{{end}}
`

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("errors").Parse(errorPages)))
	return router
}
