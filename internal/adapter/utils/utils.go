package utils

import (
	"net/http"
	"regexp"
	"strings"
	"sync"

	_ "github.com/akepally/ScholarRAG/cmd/api/docs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"
)

var once sync.Once
var router *chi.Mux

func GetNewUUID() string {
	return uuid.New().String()
}

type RouterClient struct {
	Router *chi.Mux
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

func GetRouter() RouterClient {
	once.Do(func() {
		router = chi.NewRouter()
		InitSwagger(router)
		//register prometheus
		router.Handle("/metrics", promhttp.Handler())
	})

	return RouterClient{Router: router}
}

func InitSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

var codeFenceRe = regexp.MustCompile("(?i)```(?:json|python)?\\s*")
var trailingCommaObjRe = regexp.MustCompile(`,\s*}`)
var trailingCommaArrRe = regexp.MustCompile(`,\s*]`)

// ExtractJSONObject pulls the outermost JSON object out of a model
// response and repairs the usual damage: markdown code fences, single
// quotes, trailing commas.
func ExtractJSONObject(raw string) (string, bool) {
	return extractSpan(raw, '{', '}')
}

// ExtractJSONArray does the same for a top-level JSON array.
func ExtractJSONArray(raw string) (string, bool) {
	return extractSpan(raw, '[', ']')
}

func extractSpan(raw string, opening, closing byte) (string, bool) {
	cleaned := codeFenceRe.ReplaceAllString(raw, "")
	start := strings.IndexByte(cleaned, opening)
	end := strings.LastIndexByte(cleaned, closing)
	if start == -1 || end <= start {
		return "", false
	}
	cleaned = cleaned[start : end+1]
	cleaned = strings.ReplaceAll(cleaned, "'", `"`)
	cleaned = trailingCommaObjRe.ReplaceAllString(cleaned, "}")
	cleaned = trailingCommaArrRe.ReplaceAllString(cleaned, "]")
	return cleaned, true
}
