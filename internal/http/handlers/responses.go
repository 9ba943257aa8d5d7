package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/http/respond"
	"github.com/hongminglow/bunny-bank/internal/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 16

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// responder writes envelopes and logs what cannot be shown to the client.
type responder struct {
	logger *zap.Logger
}

func (h responder) ok(w http.ResponseWriter, r *http.Request, message string, data any) {
	if err := respond.JSON(w, http.StatusOK, message, data); err != nil {
		h.logger.Warn("encode response failed", zap.String("trace_id", middleware.TraceIDFrom(r.Context())), zap.Error(err))
	}
}

func (h responder) fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := respond.Error(w, status, message); err != nil {
		h.logger.Warn("encode response failed", zap.String("trace_id", middleware.TraceIDFrom(r.Context())), zap.Error(err))
	}
}

// failWith maps a bank error onto an HTTP status. Unclassified errors are
// logged and hidden behind a 500.
func (h responder) failWith(w http.ResponseWriter, r *http.Request, err error) {
	var bankErr *bank.Error
	if !errors.As(err, &bankErr) {
		h.logger.Error("operation failed",
			zap.String("path", r.URL.Path),
			zap.String("trace_id", middleware.TraceIDFrom(r.Context())),
			zap.Error(err),
		)
		h.fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	h.fail(w, r, statusOf(err), bankErr.Message)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, bank.ErrNoSession), errors.Is(err, bank.ErrBadCredential):
		return http.StatusUnauthorized
	case errors.Is(err, bank.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, bank.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, bank.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bank.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON payload")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("field %s fails %q", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	return nil
}
