package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/http/dtos"
	"github.com/just-nibble/git-digest/internal/repository"
	"github.com/just-nibble/git-digest/internal/usecases"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/just-nibble/git-digest/pkg/response"
)

type CommitmentHandler struct {
	commitmentUsecase usecases.CommitmentUsecase
}

func NewCommitmentHandler(commitmentUsecase usecases.CommitmentUsecase) *CommitmentHandler {
	return &CommitmentHandler{commitmentUsecase: commitmentUsecase}
}

func getPagingInfo(r *http.Request) (page, limit int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	return page, limit
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTime(value, name string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Time{}, errcodes.Validation("%s must be RFC3339 or YYYY-MM-DD, got %q", name, value)
}

func getCommitmentFilter(r *http.Request) (domain.CommitmentFilter, error) {
	q := r.URL.Query()
	filter := domain.CommitmentFilter{
		CommitIDs:  splitList(q.Get("commit_ids")),
		Repository: q.Get("repository"),
		Priority:   domain.Level(q.Get("priority")),
		Impact:     domain.Level(q.Get("impact")),
		Author:     q.Get("author"),
		Branch:     q.Get("branch"),
		Search:     q.Get("search"),
		FileStatus: domain.FileStatus(q.Get("file_status")),
		Channels:   splitList(q.Get("channels")),
	}

	start, end := q.Get("start"), q.Get("end")
	if start == "" && end == "" {
		return filter, nil
	}
	if start == "" || end == "" {
		return filter, errcodes.Validation("start and end must be given together")
	}

	var (
		dates domain.DateRange
		err   error
	)
	if dates.Start, err = parseTime(start, "start"); err != nil {
		return filter, err
	}
	if dates.End, err = parseTime(end, "end"); err != nil {
		return filter, err
	}
	filter.DateRange = &dates

	return filter, nil
}

func (h *CommitmentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := getCommitmentFilter(r)
	if err != nil {
		response.AppErrorResponse(w, err)
		return
	}

	page, limit := getPagingInfo(r)
	query := repository.CommitmentQuery{
		Page:   page,
		Limit:  limit,
		Filter: filter,
		Sort: domain.CommitmentSort{
			By:        r.URL.Query().Get("sort"),
			Direction: domain.SortDirection(strings.ToLower(r.URL.Query().Get("direction"))),
		},
	}

	commitments, err := h.commitmentUsecase.Query(r.Context(), query)
	if err != nil {
		response.AppErrorResponse(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, commitments)
}

func (h *CommitmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	commitment, err := h.commitmentUsecase.Get(r.Context(), r.PathValue("commitId"))
	if err != nil {
		response.AppErrorResponse(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, commitment)
}

func (h *CommitmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateCommitmentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	commitment, err := h.commitmentUsecase.Update(r.Context(), r.PathValue("commitId"), req.ToDomain())
	if err != nil {
		response.AppErrorResponse(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, commitment)
}

func (h *CommitmentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	filter, err := getCommitmentFilter(r)
	if err != nil {
		response.AppErrorResponse(w, err)
		return
	}

	stats, err := h.commitmentUsecase.Stats(r.Context(), filter)
	if err != nil {
		response.AppErrorResponse(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, stats)
}

// Details renders the grouped report as markdown text.
func (h *CommitmentHandler) Details(w http.ResponseWriter, r *http.Request) {
	filter, err := getCommitmentFilter(r)
	if err != nil {
		response.AppErrorResponse(w, err)
		return
	}

	cfg := domain.DefaultDetailsConfig()
	q := r.URL.Query()
	if q.Has("group_by") {
		cfg.GroupBy = domain.GroupBy(q.Get("group_by"))
	}
	if format := q.Get("format"); format != "" {
		cfg.Format = domain.DetailsFormat(format)
	}
	if q.Has("stats") {
		cfg.IncludeStats, _ = strconv.ParseBool(q.Get("stats"))
	}
	if q.Has("files") {
		cfg.IncludeFileChanges, _ = strconv.ParseBool(q.Get("files"))
	}

	report, err := h.commitmentUsecase.Details(r.Context(), filter, cfg)
	if err != nil {
		response.AppErrorResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report))
}
