package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// SetupSwagger serves the UI under /swagger/ and the document at
// /swagger/doc.json. specPath is read on every request so the document can be
// edited without a restart.
func SetupSwagger(router *gin.Engine, specPath string) {
	router.GET("/swagger/*any", func(c *gin.Context) {
		switch c.Param("any") {
		case "/", "/index.html":
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerUIHTML))
		case "/doc.json":
			if _, err := os.Stat(specPath); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "api document not available"})
				return
			}
			c.File(specPath)
		default:
			c.Status(http.StatusNotFound)
		}
	})
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Netaxept Gateway - API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/swagger/doc.json',
      dom_id: '#swagger-ui',
      deepLinking: true,
      tryItOutEnabled: false,
      presets: [SwaggerUIBundle.presets.apis]
    });
  </script>
</body>
</html>`
