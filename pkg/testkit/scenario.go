// Package testkit runs JSON-described HTTP scenarios against an http.Handler.
//
// A scenario file holds an ordered array of steps that share one handler,
// so later steps observe what earlier ones wrote:
//
//	[
//	  {
//	    "name": "create override",
//	    "requestMethod": "POST",
//	    "requestUrl": "/api/special-prices",
//	    "requestBody": {"userId": "u1", "productSku": "A1", "price": 80},
//	    "expectedCode": 201,
//	    "expectedBody": {"userId": "u1", "productSku": "A1", "price": 80},
//	    "ignoreFields": ["_id"]
//	  }
//	]
//
// Example _test.go:
//
//	func TestAPI(t *testing.T) {
//	    testkit.RunFile(t, handler, "testdata/special_prices.json")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Scenario describes a single request and the response it must produce.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod string            `json:"requestMethod"` // default GET
	RequestURL    string            `json:"requestUrl"`
	RequestBody   json.RawMessage   `json:"requestBody"`
	Headers       map[string]string `json:"headers"`

	ExpectedCode int             `json:"expectedCode"`
	ExpectedBody json.RawMessage `json:"expectedBody"` // compared as JSON when set
	// IgnoreFields are object keys dropped from the actual body at any depth
	// before comparison, for generated values such as IDs.
	IgnoreFields []string `json:"ignoreFields"`
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	return nil
}

// LoadFile reads and validates an array of scenarios.
func LoadFile(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	for i, s := range scenarios {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: %q step %d: %w", abs, i, err)
		}
	}
	return scenarios, nil
}
