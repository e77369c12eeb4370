package handlers

import (
	"net/http"
	"strconv"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/usecases"
	"github.com/just-nibble/git-digest/pkg/response"
)

type FeedHandler struct {
	feedUsecase usecases.FeedUsecase
}

func NewFeedHandler(feedUsecase usecases.FeedUsecase) *FeedHandler {
	return &FeedHandler{feedUsecase: feedUsecase}
}

func (h *FeedHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseUint(r.PathValue("projectId"), 10, 64)
	if err != nil || projectID == 0 {
		response.ErrorResponse(w, http.StatusBadRequest, "Project id must be a positive integer")
		return
	}

	// an empty type lists feeds of every type
	feedType := domain.FeedType(r.URL.Query().Get("type"))

	page, limit := getPagingInfo(r)
	feeds, err := h.feedUsecase.FeedsByProject(r.Context(), uint(projectID), feedType, page, limit)
	if err != nil {
		response.AppErrorResponse(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, feeds)
}
