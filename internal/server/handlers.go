package server

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/wiring/pkg/buildinfo"
	werrors "github.com/matzehuels/wiring/pkg/errors"
	wio "github.com/matzehuels/wiring/pkg/io"
	"github.com/matzehuels/wiring/pkg/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleColors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"colors": s.colors.Entries(),
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	input, err := io.ReadAll(r.Body)
	if err != nil {
		writeErr(w, err)
		return
	}

	res, err := s.runner.Build(r.Context(), input, opts)
	if err != nil {
		writeErr(w, err)
		return
	}

	var buf bytes.Buffer
	if err := wio.WriteJSON(res, &buf); err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Wiring-Diagnostics", strconv.Itoa(len(res.Diagnostics)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	q := r.URL.Query()
	format := pipeline.FormatSVG
	if f := q.Get("format"); f != "" {
		format = f
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeErr(w, err)
		return
	}
	opts.Formats = []string{format}
	if opts.Group == "" {
		opts.Combine = true
	}

	input, err := io.ReadAll(r.Body)
	if err != nil {
		writeErr(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), input, opts)
	if err != nil {
		writeErr(w, err)
		return
	}
	if len(result.Artifacts) == 0 {
		writeErr(w, werrors.New(werrors.ErrCodeNotFound, "nothing to render"))
		return
	}

	a := result.Artifacts[0]
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("X-Wiring-Diagnostics", strconv.Itoa(result.Stats.Diagnostics))
	if a.Cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(a.Data) //nolint:errcheck
}

// options reads the shared query parameters on top of the server defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Defaults
	opts.Formats = append([]string(nil), opts.Formats...)
	q := r.URL.Query()

	for name, dst := range map[string]*bool{"strict": &opts.Strict, "combine": &opts.Combine} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, werrors.New(werrors.ErrCodeInvalidInput, "%s: invalid boolean %q", name, v)
		}
		*dst = b
	}
	if g := q.Get("group"); g != "" {
		opts.Group = g
	}
	return opts, nil
}
