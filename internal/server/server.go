// Package server serves the loan calculation engine over a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-engine/internal/optimizer"
	"github.com/iwvelando/loan-engine/pkg/adapters"
	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/loans"
	"github.com/iwvelando/loan-engine/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// CalculationIDHeader carries the identifier assigned to each calculation.
const CalculationIDHeader = "X-Calculation-ID"

// Error kinds reported in error bodies.
const (
	kindValidation  = "validation"
	kindUnsupported = "unsupported_combination"
	kindBadRequest  = "bad_request"
	kindInternal    = "internal"
)

type handler struct {
	logger         *zap.Logger
	maxRequestSize int64
	version        string
	normalizer     *adapters.Normalizer
	calc           *loans.Calculator
	solver         *optimizer.Runner
	maxLTV         decimal.Decimal
}

type calculationOptions struct {
	SolvePayment bool
}

// NewHandler constructs the HTTP handler that serves the calculation API and
// metrics. A nil cfg uses the defaults of LoadConfig("").
func NewHandler(logger *zap.Logger, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg, _ = LoadConfig("")
	}

	maxRequestSize := cfg.RequestSizeBytes()
	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	engine := cfg.engineConfiguration()
	h := &handler{
		logger:         logger,
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
		normalizer:     adapters.NewNormalizer(engine.NormalizerOptions()),
		calc:           loans.NewCalculator(logger),
		solver:         optimizer.NewRunner(logger),
		maxLTV:         engine.MaxLTV(),
	}

	mux := http.NewServeMux()

	// Calculation API endpoint
	mux.HandleFunc("/api/calculate", h.handleCalculate)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	mux.HandleFunc("/healthz", h.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	calculationID := uuid.NewString()
	w.Header().Set(CalculationIDHeader, calculationID)
	op := "server.handleCalculate"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge, kindBadRequest,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), calculationID)
			return
		}
		h.respondError(w, http.StatusBadRequest, kindBadRequest,
			fmt.Sprintf("failed to decode request: %v", err), calculationID)
		return
	}
	if payload == nil {
		h.respondError(w, http.StatusBadRequest, kindBadRequest, "request body must be a JSON object", calculationID)
		return
	}

	requestPayload := payload
	if rawRequest, ok := payload["request"]; ok {
		reqMap, ok := rawRequest.(map[string]interface{})
		if !ok {
			h.respondError(w, http.StatusBadRequest, kindBadRequest, "invalid request payload: expected object", calculationID)
			return
		}
		requestPayload = reqMap
	}

	options := calculationOptions{}
	if rawOptions, ok := payload["options"]; ok {
		optsMap, ok := rawOptions.(map[string]interface{})
		if !ok {
			h.respondError(w, http.StatusBadRequest, kindBadRequest, "invalid options payload: expected object", calculationID)
			return
		}
		for _, key := range []string{"solvePayment", "solve_payment"} {
			if value, ok := optsMap[key]; ok {
				options.SolvePayment = cast.ToBool(fmt.Sprint(value))
			}
		}
	}

	req, _, err := h.normalizer.Normalize(requestPayload)
	if err != nil {
		h.respondEngineError(w, err, calculationID, "unknown")
		return
	}

	result, err := h.calc.Calculate(req)
	if err != nil {
		h.respondEngineError(w, err, calculationID, string(req.LoanType))
		return
	}

	response := adapters.BuildResponse(result)
	advisories := validation.CheckResult(calculationID, result, h.maxLTV)
	if advisories == nil {
		advisories = []string{}
	}
	response["advisories"] = advisories

	if options.SolvePayment {
		if _, ok := optimizer.FieldFor(req.RepaymentOption); ok {
			summary, _, err := h.solver.Solve(calculationID, req)
			if err != nil {
				h.respondEngineError(w, err, calculationID, string(req.LoanType))
				return
			}
			response["solver"] = summary
		}
	}

	elapsed := time.Since(start)
	response["calculation_id"] = calculationID
	response["calculationId"] = calculationID
	response["duration"] = elapsed.String()

	calculationsTotal.WithLabelValues(string(req.LoanType), "ok").Inc()
	calculationDuration.WithLabelValues(string(req.LoanType)).Observe(elapsed.Seconds())

	h.logger.Info("calculation completed",
		zap.String("op", op),
		zap.String("calculationId", calculationID),
		zap.String("loanType", string(req.LoanType)),
		zap.String("repaymentOption", string(req.RepaymentOption)),
		zap.Int("rows", len(result.Schedule)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondEngineError maps the engine's error taxonomy onto HTTP responses.
func (h *handler) respondEngineError(w http.ResponseWriter, err error, calculationID, loanType string) {
	var validationErr *loans.ValidationError
	var combinationErr *loans.UnsupportedCombinationError
	switch {
	case errors.As(err, &validationErr):
		h.respondError(w, http.StatusBadRequest, kindValidation, err.Error(), calculationID)
	case errors.As(err, &combinationErr):
		h.respondError(w, http.StatusBadRequest, kindUnsupported, err.Error(), calculationID)
	default:
		h.respondError(w, http.StatusInternalServerError, kindInternal, err.Error(), calculationID)
	}
	calculationsTotal.WithLabelValues(loanType, "error").Inc()
}

func (h *handler) respondError(w http.ResponseWriter, status int, kind, msg, calculationID string) {
	h.logger.Error("calculation request failed",
		zap.String("op", "server.handleCalculate"),
		zap.String("calculationId", calculationID),
		zap.Int("status", status),
		zap.String("kind", kind),
		zap.String("error", msg),
	)
	calculationErrors.WithLabelValues(kind).Inc()

	h.writeJSON(w, status, map[string]string{
		"error":          msg,
		"kind":           kind,
		"calculation_id": calculationID,
		"calculationId":  calculationID,
	})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response", zap.String("op", "server.writeJSON"), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response", zap.String("op", "server.writeJSON"), zap.Error(err))
	}
}
