package server

import (
	"bytes"
	"daily-shoutout/internal/types"
	"daily-shoutout/lib/translation"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// ClientErrorShoutout is what the page shows when the API cannot be reached
var ClientErrorShoutout = types.Shoutout{
	Name:        "Error",
	Description: "Could not fetch today's shoutout.",
}

//go:embed templates/index.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

type pageData struct {
	Lang        string
	Title       string
	Tagline     string
	Loading     string
	LearnMore   string
	Footer      string
	Endpoint    string
	ErrorRecord template.JS
}

func newPageData() pageData {
	errorRecord, _ := json.Marshal(ClientErrorShoutout)

	return pageData{
		Lang:        translation.GetLanguage(),
		Title:       translation.Translate("Shoutout of the Day"),
		Tagline:     translation.Translate("Celebrate a person each day!"),
		Loading:     translation.Translate("Loading..."),
		LearnMore:   translation.Translate("Learn More"),
		Footer:      translation.Translate("© %d Daily shoutout app. All rights reserved. All images from Wikipedia.", time.Now().Year()),
		Endpoint:    "/api/dailyShoutout",
		ErrorRecord: template.JS(errorRecord),
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageData()); err != nil {
		log.Errorf("Failed to render page: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
