package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var landingPageHTML = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>Atlas Immo API</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: linear-gradient(135deg,#1f3a5f,#3d7ea6); color: #fff; min-height: 100vh; display: flex; flex-direction: column; }
main { flex: 1; padding: 60px 20px; text-align: center; }
a { color: #ffd86b; }
code { background: rgba(255,255,255,0.15); padding: 2px 6px; border-radius: 4px; }
footer { text-align: center; padding: 20px; font-size: 14px; opacity: 0.8; }
</style>
</head>
<body>
<main>
  <h1>Atlas Immo</h1>
  <p>API du marché immobilier : annonces, messagerie et comptes.</p>
  <p>Documentation interactive : <a href="/swagger/index.html">/swagger</a></p>
  <p>Authentification : <code>POST /api/auth/register</code> puis <code>POST /api/auth/login</code>.</p>
</main>
<footer>Atlas Immo API</footer>
</body>
</html>`

func RegisterPages(e *echo.Echo, frontendURL string) {
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, landingPageHTML)
	})

	e.GET("/app", func(c echo.Context) error {
		if frontendURL != "" {
			return c.Redirect(http.StatusTemporaryRedirect, frontendURL)
		}
		return c.HTML(http.StatusOK, landingPageHTML)
	})
}
