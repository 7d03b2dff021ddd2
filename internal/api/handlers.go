// Package api exposes timecode conversion, arithmetic and range queries
// over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/vtc/internal/cache"
	"github.com/zsiec/vtc/internal/config"
	"github.com/zsiec/vtc/internal/errors"
	"github.com/zsiec/vtc/internal/logger"
	"github.com/zsiec/vtc/internal/metrics"
	"github.com/zsiec/vtc/pkg/vtc"
)

const maxBodyBytes = 64 << 10

// Handler serves the /api/v1 endpoints.
type Handler struct {
	cache        *cache.Cache
	defaultRate  vtc.Framerate
	precision    int
	errorHandler *errors.ErrorHandler
	logger       *logrus.Logger
}

// NewHandler creates a handler. c may be nil to disable caching.
func NewHandler(cfg *config.TimecodeConfig, c *cache.Cache, errorHandler *errors.ErrorHandler, log *logrus.Logger) (*Handler, error) {
	rate, err := cfg.Rate()
	if err != nil {
		return nil, fmt.Errorf("default rate: %w", err)
	}

	return &Handler{
		cache:        c,
		defaultRate:  rate,
		precision:    cfg.RuntimePrecision,
		errorHandler: errorHandler,
		logger:       log,
	}, nil
}

// RegisterRoutes mounts the endpoints on the /api/v1 subrouter.
func (h *Handler) RegisterRoutes(api *mux.Router) {
	logger.WithComponent(h.logger, "api").WithFields(logrus.Fields{
		"default_rate":      h.defaultRate.String(),
		"runtime_precision": h.precision,
		"cache":             h.cache != nil,
	}).Info("Registering timecode API routes")

	api.HandleFunc("/rates", h.handleRates).Methods(http.MethodGet)
	api.HandleFunc("/timecode", h.handleConvert).Methods(http.MethodPost)
	api.HandleFunc("/timecode/rebase", h.handleRebase).Methods(http.MethodPost)
	api.HandleFunc("/timecode/calc", h.handleCalc).Methods(http.MethodPost)
	api.HandleFunc("/range", h.handleRange).Methods(http.MethodPost)
}

// RateInfo describes a framerate in responses.
type RateInfo struct {
	Name      string `json:"name,omitempty"`
	Display   string `json:"display"`
	Playback  string `json:"playback"`
	Timebase  string `json:"timebase"`
	NTSC      bool   `json:"ntsc"`
	DropFrame bool   `json:"dropframe"`
}

func rateInfo(name string, rate vtc.Framerate) RateInfo {
	return RateInfo{
		Name:      name,
		Display:   rate.String(),
		Playback:  rate.Fraction(),
		Timebase:  rate.Timebase().RatString(),
		NTSC:      rate.NTSC(),
		DropFrame: rate.DropFrame(),
	}
}

// project renders every projection of tc. Frame and tick counts travel as
// JSON integers, so values past the int64 range are refused.
func (h *Handler) project(tc vtc.Timecode) (*cache.Entry, error) {
	if !tc.BigFrames().IsInt64() || !tc.BigPremiereTicks().IsInt64() {
		return nil, errors.NewValidationError(fmt.Sprintf("timecode %s is too large to project", tc.Timecode())).
			WithCode(errors.CodeInvalidValue)
	}

	return &cache.Entry{
		Rate:          tc.Rate().String(),
		Timecode:      tc.Timecode(),
		Frames:        tc.Frames(),
		Seconds:       tc.Seconds().String(),
		Rational:      tc.Rational().RatString(),
		Runtime:       tc.Runtime(h.precision),
		FeetAndFrames: tc.FeetAndFrames(),
		PremiereTicks: int64(tc.PremiereTicks()),
		Negative:      tc.Negative(),
	}, nil
}

func (h *Handler) handleRates(w http.ResponseWriter, r *http.Request) {
	named := vtc.StandardRates()
	rates := make([]RateInfo, 0, len(named))
	for _, n := range named {
		rates = append(rates, rateInfo(n.Name, n.Rate))
	}

	h.writeJSON(w, r, http.StatusOK, struct {
		Rates   []RateInfo `json:"rates"`
		Default RateInfo   `json:"default"`
	}{
		Rates:   rates,
		Default: rateInfo("", h.defaultRate),
	})
}

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	entry, err := h.convert(r, req)
	metrics.RecordConversion("convert", err, time.Since(start))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, entry)
}

func (h *Handler) convert(r *http.Request, req ConvertRequest) (*cache.Entry, error) {
	rate, err := req.Rate.Framerate(h.defaultRate)
	if err != nil {
		return nil, err
	}

	compute := func() (*cache.Entry, error) {
		tc, err := h.parse(req.Kind, req.Value, rate)
		if err != nil {
			return nil, err
		}
		return h.project(tc)
	}

	if h.cache == nil {
		return compute()
	}

	key := h.cache.Key(req.Kind, req.Value, rateKey(rate)+"|p="+strconv.Itoa(h.precision))
	return h.cache.GetOrCompute(r.Context(), key, compute)
}

func (h *Handler) parse(kind, value string, rate vtc.Framerate) (vtc.Timecode, error) {
	src, err := SourceFor(kind, value)
	if err == nil {
		var tc vtc.Timecode
		if tc, err = vtc.New(src, rate); err == nil {
			return tc, nil
		}
	}

	if kind == "" {
		kind = KindText
	}
	metrics.IncrementParseError(kind)
	return vtc.Timecode{}, err
}

func (h *Handler) handleRebase(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	resp, err := h.rebase(req)
	metrics.RecordConversion("rebase", err, time.Since(start))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

// RebaseResponse holds the source and rebased projections.
type RebaseResponse struct {
	Source  *cache.Entry `json:"source"`
	Rebased *cache.Entry `json:"rebased"`
}

func (h *Handler) rebase(req ConvertRequest) (*RebaseResponse, error) {
	if req.NewRate.IsZero() {
		return nil, errors.NewValidationError("new_rate is required").WithCode(errors.CodeInvalidValue)
	}

	rate, err := req.Rate.Framerate(h.defaultRate)
	if err != nil {
		return nil, err
	}
	newRate, err := req.NewRate.Framerate(h.defaultRate)
	if err != nil {
		return nil, err
	}

	tc, err := h.parse(req.Kind, req.Value, rate)
	if err != nil {
		return nil, err
	}
	rebased, err := tc.Rebase(newRate)
	if err != nil {
		return nil, err
	}

	source, err := h.project(tc)
	if err != nil {
		return nil, err
	}
	target, err := h.project(rebased)
	if err != nil {
		return nil, err
	}
	return &RebaseResponse{Source: source, Rebased: target}, nil
}

// CalcResponse carries either a timecode result or a comparison.
type CalcResponse struct {
	Op      string       `json:"op"`
	Result  *cache.Entry `json:"result,omitempty"`
	Compare *int         `json:"compare,omitempty"`
}

func (h *Handler) handleCalc(w http.ResponseWriter, r *http.Request) {
	var req CalcRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	resp, err := h.calc(req)
	metrics.RecordConversion(calcOperation(req.Op), err, time.Since(start))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

var calcOps = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true, "floordiv": true,
	"mod": true, "neg": true, "abs": true, "cmp": true,
}

// calcOperation returns the metrics label for op.
func calcOperation(op string) string {
	if calcOps[op] {
		return "calc_" + op
	}
	return "calc_unknown"
}

func (h *Handler) calc(req CalcRequest) (*CalcResponse, error) {
	rate, err := req.Rate.Framerate(h.defaultRate)
	if err != nil {
		return nil, err
	}
	a, err := h.parse(req.Kind, req.A, rate)
	if err != nil {
		return nil, err
	}

	operand := func() (vtc.Timecode, error) {
		return h.parse(req.Kind, req.B, rate)
	}

	var result vtc.Timecode
	switch req.Op {
	case "add", "sub", "cmp":
		b, err := operand()
		if err != nil {
			return nil, err
		}
		switch req.Op {
		case "add":
			result = a.Add(b)
		case "sub":
			result = a.Sub(b)
		default:
			cmp := a.Cmp(b)
			return &CalcResponse{Op: req.Op, Compare: &cmp}, nil
		}
	case "mul", "div", "floordiv", "mod":
		x, err := parseScalar(req.B)
		if err != nil {
			return nil, err
		}
		switch req.Op {
		case "mul":
			result = a.Mul(x)
		case "div":
			result, err = a.Div(x)
		case "floordiv":
			result, err = a.FloorDiv(x)
		default:
			result, err = a.Mod(x)
		}
		if err != nil {
			return nil, err
		}
	case "neg":
		result = a.Neg()
	case "abs":
		result = a.Abs()
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown op %q", req.Op)).
			WithCode(errors.CodeInvalidValue)
	}

	entry, err := h.project(result)
	if err != nil {
		return nil, err
	}
	return &CalcResponse{Op: req.Op, Result: entry}, nil
}

// RangeInfo is the JSON form of a range.
type RangeInfo struct {
	In       string       `json:"in"`
	Out      string       `json:"out"`
	Length   int64        `json:"length"`
	Duration *cache.Entry `json:"duration"`
}

// RangeResponse answers a range query.
type RangeResponse struct {
	Range        RangeInfo  `json:"range"`
	Contains     *bool      `json:"contains,omitempty"`
	Overlaps     *bool      `json:"overlaps,omitempty"`
	Intersection *RangeInfo `json:"intersection,omitempty"`
	Separation   *RangeInfo `json:"separation,omitempty"`
}

func (h *Handler) rangeInfo(rg vtc.Range) (*RangeInfo, error) {
	duration, err := h.project(rg.Duration())
	if err != nil {
		return nil, err
	}
	return &RangeInfo{
		In:       rg.In().Timecode(),
		Out:      rg.Out().Timecode(),
		Length:   duration.Frames,
		Duration: duration,
	}, nil
}

func (h *Handler) handleRange(w http.ResponseWriter, r *http.Request) {
	var req RangeRequest
	if !h.decode(w, r, &req) {
		return
	}

	start := time.Now()
	resp, err := h.rangeQuery(req)
	metrics.RecordConversion("range", err, time.Since(start))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) newRange(b RangeBounds, rate vtc.Framerate) (vtc.Range, error) {
	in, err := h.parse(KindText, b.In, rate)
	if err != nil {
		return vtc.Range{}, err
	}
	out, err := h.parse(KindText, b.Out, rate)
	if err != nil {
		return vtc.Range{}, err
	}
	return vtc.NewRange(in, out)
}

func (h *Handler) rangeQuery(req RangeRequest) (*RangeResponse, error) {
	rate, err := req.Rate.Framerate(h.defaultRate)
	if err != nil {
		return nil, err
	}

	rg, err := h.newRange(req.RangeBounds, rate)
	if err != nil {
		return nil, err
	}
	info, err := h.rangeInfo(rg)
	if err != nil {
		return nil, err
	}
	resp := &RangeResponse{Range: *info}

	if req.Point != "" {
		point, err := h.parse(KindText, req.Point, rate)
		if err != nil {
			return nil, err
		}
		contains := rg.Contains(point)
		resp.Contains = &contains
	}

	if req.Other != nil {
		other, err := h.newRange(*req.Other, rate)
		if err != nil {
			return nil, err
		}
		overlaps := rg.Overlaps(other)
		resp.Overlaps = &overlaps
		if x, ok := rg.Intersection(other); ok {
			if resp.Intersection, err = h.rangeInfo(x); err != nil {
				return nil, err
			}
		}
		if x, ok := rg.Separation(other); ok {
			if resp.Separation, err = h.rangeInfo(x); err != nil {
				return nil, err
			}
		}
	}

	return resp, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.errorHandler.HandleError(w, r, errors.NewInvalidJSONError(err))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).WithError(err).Error("Failed to encode response")
	}
}
