// This file implements utilities for parsing and validating HTTP request
// data. Handlers accept both JSON and form-encoded bodies.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"flowbarber/internal/core"
	"flowbarber/internal/services"
)

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *ResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *ResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

var errMissingName = errors.New("nome é obrigatório")

// parseServicePayload builds a Service from the request body. The date
// defaults to today and the payment method to cash.
func parseServicePayload(p *RequestBodyParser) (core.Service, error) {
	name := p.Get("name")
	if name == "" {
		return core.Service{}, errMissingName
	}

	cents, err := core.ParseDecimalToCents(p.Get("price"))
	if err != nil {
		return core.Service{}, err
	}

	method := core.PaymentMethod(p.Get("paymentMethod"))
	if method == "" {
		method = core.Cash
	}

	date := core.Today()
	if v := p.Get("date"); v != "" {
		date, err = core.ParseDate(v)
		if err != nil {
			return core.Service{}, err
		}
	}

	svc := core.Service{
		Name:          name,
		Price:         core.Money{Cents: cents},
		PaymentMethod: method,
		Date:          date,
	}
	return svc, svc.Validate()
}

// parsePlanPayload builds a ClientPlan from the request body.
func parsePlanPayload(p *RequestBodyParser) (core.ClientPlan, error) {
	name := p.Get("name")
	if name == "" {
		return core.ClientPlan{}, errMissingName
	}

	cents, err := core.ParseDecimalToCents(p.Get("price"))
	if err != nil {
		return core.ClientPlan{}, err
	}

	totalCuts, err := strconv.Atoi(p.Get("totalCuts"))
	if err != nil {
		return core.ClientPlan{}, core.ErrInvalidCuts
	}

	plan := core.ClientPlan{
		Name:          name,
		Price:         core.Money{Cents: cents},
		TotalCuts:     totalCuts,
		RemainingCuts: totalCuts,
	}
	if v := p.Get("remainingCuts"); v != "" {
		remaining, err := strconv.Atoi(v)
		if err != nil {
			return core.ClientPlan{}, core.ErrCutsOutOfRange
		}
		plan.RemainingCuts = remaining
	}
	return plan, plan.Validate()
}

// parsePaymentDetails reads the optional revenue flags of a plan purchase
// or renewal. An absent or unknown method stays zero, which suppresses the
// revenue entry downstream.
func parsePaymentDetails(p *RequestBodyParser) services.PaymentDetails {
	var details services.PaymentDetails
	if v := p.Get("addToRevenue"); v == "true" || v == "1" || v == "on" {
		details.AddToRevenue = true
	}
	if m := core.PaymentMethod(p.Get("paymentMethod")); m.Validate() == nil {
		details.Method = m
	}
	return details
}
