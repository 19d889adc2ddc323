// Package web serves the two page shells of the chat client.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templates embed.FS

type Pages struct {
	home *template.Template
	chat *template.Template
}

func NewPages() (*Pages, error) {
	home, err := template.ParseFS(templates, "templates/home.html")
	if err != nil {
		return nil, err
	}
	chat, err := template.ParseFS(templates, "templates/chat.html")
	if err != nil {
		return nil, err
	}
	return &Pages{home: home, chat: chat}, nil
}

func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	if err := p.home.Execute(w, nil); err != nil {
		slog.Error("render error", "page", "home", "error", err)
	}
}

func (p *Pages) Chat(w http.ResponseWriter, r *http.Request) {
	data := struct{ Room string }{Room: r.PathValue("id")}
	if err := p.chat.Execute(w, data); err != nil {
		slog.Error("render error", "page", "chat", "error", err)
	}
}
