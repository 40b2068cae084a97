package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/fixtures", handler.ListFixtures)
	mux.HandleFunc("GET /v1/fixtures/live", handler.ListLiveFixtures)
	mux.HandleFunc("POST /v1/analyses", handler.CreateAnalyses)
	mux.HandleFunc("POST /v1/parlay", handler.RecommendParlay)
	mux.HandleFunc("GET /v1/predictions/history", handler.ListPredictionHistory)
}
