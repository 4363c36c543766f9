package recohttp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"edu-recommender/internal/domain"
	"edu-recommender/internal/usecase"
)

// userIDHeader carries the authenticated user identity set by the upstream
// auth layer. Anonymous requests leave it empty.
const userIDHeader = "X-User-Id"

const defaultTopN = 5

type Handler struct {
	recommend usecase.RecommendUsecase
	logSearch usecase.LogSearchUsecase
}

func NewHandler(recommend usecase.RecommendUsecase, logSearch usecase.LogSearchUsecase) *Handler {
	return &Handler{
		recommend: recommend,
		logSearch: logSearch,
	}
}

type recommendRequest struct {
	Query    string `json:"query"`
	TopN     int    `json:"top_n"`
	Duration string `json:"duration"`
}

type videoResult struct {
	VideoID     string  `json:"video_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail"`
	Channel     string  `json:"channel"`
	Link        string  `json:"link"`
	Score       float64 `json:"score"`
	Views       int64   `json:"views"`
	Likes       int64   `json:"likes"`
}

type recommendResponse struct {
	Results []videoResult `json:"results"`
}

// Recommend handles POST /api/recommend. Input normalization happens here,
// at the boundary: the usecase receives a valid bucket and a positive topN.
func (h *Handler) Recommend(c echo.Context) error {
	var req recommendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.TopN <= 0 {
		req.TopN = defaultTopN
	}

	userID := c.Request().Header.Get(userIDHeader)
	ctx := c.Request().Context()

	candidates := h.recommend.Execute(ctx, usecase.RecommendInput{
		Query:  req.Query,
		TopN:   req.TopN,
		UserID: userID,
		Bucket: domain.ParseBucket(req.Duration),
	})

	// Best-effort analytics; never affects the response.
	h.logSearch.Execute(ctx, req.Query, userID)

	results := make([]videoResult, 0, len(candidates))
	for _, cand := range candidates {
		results = append(results, videoResult{
			VideoID:     cand.VideoID,
			Title:       cand.Title,
			Description: cand.Description,
			Thumbnail:   cand.Thumbnail,
			Channel:     cand.Channel,
			Link:        cand.Link,
			Score:       cand.Score,
			Views:       cand.Views,
			Likes:       cand.Likes,
		})
	}
	return c.JSON(http.StatusOK, recommendResponse{Results: results})
}

// Profile handles GET /api/profile, returning the mean embedding of the
// requesting user's recent searches.
func (h *Handler) Profile(c echo.Context) error {
	userID := c.Request().Header.Get(userIDHeader)
	vector := h.logSearch.Profile(c.Request().Context(), userID)
	if vector == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no profile"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"embedding": vector})
}

// RegisterRoutes wires the handler into the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/recommend", h.Recommend)
	e.GET("/api/profile", h.Profile)
	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
