package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed console.html
var consoleHTML []byte

// serveConsole returns the signing console: a static page that signs a
// request URL locally with WebCrypto. The secret never leaves the
// operator's browser.
func (h *ScreenshotHandler) serveConsole(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", consoleHTML)
}
