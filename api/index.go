package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.AppName}}</title></head>
<body>
<h1>{{.AppName}}</h1>
<ul>
<li>Port: {{.Port}}</li>
<li>Environment: {{.Environment}}</li>
<li>Database: {{.Database}}</li>
<li>Mongo URI: {{.URI}}</li>
</ul>
</body>
</html>
`))

func (a *API) getIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index", gin.H{
		"AppName":     a.cfg.AppName,
		"Port":        a.cfg.Port,
		"Environment": a.cfg.Environment,
		"Database":    a.cfg.Mongo.Database,
		"URI":         a.cfg.Mongo.RedactedURI(),
	})
}
