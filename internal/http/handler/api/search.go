package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

type SearchResponse struct {
	Results []NodeResponse `json:"results"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		slog.ErrorContext(ctx, "missing q parameter")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rawSize := r.URL.Query().Get("size")
	var (
		size int64
		err  error
	)
	if rawSize != "" {
		size, err = strconv.ParseInt(rawSize, 10, 32)
		if err != nil {
			slog.ErrorContext(ctx, "could not parse size parameter", slog.Any("error", errors.WithStack(err)))
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	} else {
		size = 20
	}

	nodes, err := h.nodeManager.Search(ctx, query, int(size))
	if err != nil {
		slog.ErrorContext(ctx, "could not search nodes", slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	res := SearchResponse{
		Results: make([]NodeResponse, 0, len(nodes)),
	}

	for _, n := range nodes {
		res.Results = append(res.Results, toNodeResponse(n))
	}

	encodeResponse(w, r, res)
}
