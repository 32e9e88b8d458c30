package handler

import (
	"net/http"

	"github.com/boddenberg/revomotors-web/internal/web"
)

func landingHandler(k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		k.render(w, r, http.StatusOK, web.PageLanding, &web.View{Title: "Sell your car to verified dealers"})
	}
}

func notFoundHandler(k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		k.notFound(w, r)
	}
}
