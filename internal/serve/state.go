package serve

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	verrors "github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/store"
	"github.com/vango-dev/vstore/pkg/value"
)

// maxBodyBytes caps PUT and PATCH bodies.
const maxBodyBytes = 1 << 20

// writeResult is the body of a successful PUT or PATCH.
type writeResult struct {
	Accepted bool `json:"accepted"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(s.store.Get())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, verrors.FromError(err, "E003"))
		return
	}

	if path := r.URL.Query().Get("path"); path != "" {
		res := gjson.GetBytes(data, path)
		if !res.Exists() {
			s.writeError(w, r, http.StatusNotFound, verrors.New("E062").WithDetail(path))
			return
		}
		data = []byte(res.Raw)
	}

	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleWrite(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			s.writeError(w, r, status, verrors.New("E063").Wrap(err))
			return
		}

		v, err := value.Parse(body)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, verrors.FromError(err, "E002"))
			return
		}

		accepted := s.store.Set(v, store.WithPartial(partial))
		data, _ := json.Marshal(writeResult{Accepted: accepted})
		writeJSON(w, http.StatusOK, data)
	}
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err *verrors.Error) {
	s.logger.Warn("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err.FormatCompact(),
	)
	writeJSON(w, status, []byte(err.FormatJSON()))
}
