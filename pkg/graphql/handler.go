package graphql

import (
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/pricebook/pkg/bind"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/response"
)

// Request is the standard GraphQL-over-HTTP payload.
type Request struct {
	Query         string                 `json:"query"         validate:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler executes POSTed queries against schema under the request context.
// GraphQL errors come back with 200 in the "errors" array; only a body that
// cannot be decoded is a 400.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		errs, err := bind.JSON(w, r, &req)
		if err != nil {
			if errors.Is(err, bind.ErrMalformed) {
				response.ErrorDetail(w, http.StatusBadRequest, "Invalid GraphQL request", err.Error())
				return
			}
			response.Error(w, http.StatusBadRequest, "Invalid GraphQL request")
			return
		}
		if errs != nil {
			response.ValidationError(w, errs)
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})
		if result.HasErrors() {
			logger.WithCtx(r.Context()).Debug("graphql: errors", "count", len(result.Errors), "first", result.Errors[0].Message)
		}
		response.OK(w, result)
	}
}
