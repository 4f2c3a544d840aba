package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(questionHandler *QuestionHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/questions", func(r chi.Router) {
			r.Post("/", questionHandler.CreateQuestion)
			r.Get("/", questionHandler.ListQuestions)
			r.Get("/{id}", questionHandler.GetQuestion)
			r.Put("/{id}", questionHandler.UpdateQuestion)
			r.Patch("/{id}", questionHandler.UpdateQuestion)
			r.Delete("/{id}", questionHandler.DeleteQuestion)
		})
	})

	return r
}
