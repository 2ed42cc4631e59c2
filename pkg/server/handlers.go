package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/stakr/pkg/errors"
	"github.com/matzehuels/stakr/pkg/pipeline"
	"github.com/matzehuels/stakr/pkg/raster"
)

// bakeResponse is the body of a successful POST /v1/bakes.
type bakeResponse struct {
	ID         string `json:"id"`
	Object     string `json:"object"`
	Shadow     string `json:"shadow"`
	Manifest   string `json:"manifest,omitempty"`
	Angles     []int  `json:"angles"`
	CellWidth  int    `json:"cell_width"`
	CellHeight int    `json:"cell_height"`
	CacheHit   bool   `json:"cache_hit"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// artifact kinds served by GET /v1/bakes/{id}/{kind}, mapped to file globs.
var artifactGlobs = map[string]string{
	"obj":      "*" + pipeline.ObjectSuffix + ".*",
	"shd":      "*" + pipeline.ShadowSuffix + ".*",
	"manifest": "*" + pipeline.ManifestSuffix,
}

func (s *Server) handleBake(w http.ResponseWriter, r *http.Request) {
	name, data, opts, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	id := uuid.NewString()
	res, err := s.runner.BakeBytes(r.Context(), name, data, filepath.Join(s.outDir, id), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	base := "/v1/bakes/" + id + "/"
	resp := bakeResponse{
		ID:         id,
		Object:     base + "obj",
		Shadow:     base + "shd",
		Angles:     res.Angles,
		CellWidth:  res.CellWidth,
		CellHeight: res.CellHeight,
		CacheHit:   res.CacheHit,
	}
	if res.ManifestPath != "" {
		resp.Manifest = base + "manifest"
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kind := chi.URLParam(r, "kind")

	pattern, ok := artifactGlobs[kind]
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "unknown artifact kind %q", kind))
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "bake %q not found", id))
		return
	}

	matches, err := filepath.Glob(filepath.Join(s.outDir, id, pattern))
	if err != nil || len(matches) == 0 {
		writeError(w, errors.New(errors.ErrCodeNotFound, "%s of bake %s not found", kind, id))
		return
	}
	http.ServeFile(w, r, matches[0])
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	index := 0
	if v := r.URL.Query().Get("index"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeParse, err, "index %q is not an integer", v))
			return
		}
		index = n
	}

	_, data, opts, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	frames, err := s.runner.Preview(r.Context(), data, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	n := len(frames)
	frame := frames[((index%n)+n)%n]

	var buf bytes.Buffer
	if err := raster.Encode(&buf, frame.Canvas.Image, raster.FormatPNG); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Stakr-Angle", strconv.Itoa(frame.Angle))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// readUpload parses the multipart body: the "source" file plus option fields.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, pipeline.Options, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return "", nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeValidation, err, "invalid multipart body")
	}

	file, header, err := r.FormFile("source")
	if err != nil {
		return "", nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeValidation, err, "missing source file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeIO, err, "read source")
	}

	opts, err := optionsFromForm(r.MultipartForm.Value, s.defaults)
	if err != nil {
		return "", nil, pipeline.Options{}, err
	}
	return header.Filename, data, opts, nil
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeValidation, errors.ErrCodeParse, errors.ErrCodeDecode, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
