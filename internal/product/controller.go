package product

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/api"
	apperrors "storefront/internal/errors"
)

const maxSearchVariants = 100

type Controller struct {
	useCase SearchUseCase
	logger  *zap.Logger
}

func NewController(useCase SearchUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *Controller) HandleSearchVariants(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req SearchVariantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteValidationError(w, traceID, "invalid JSON body", logger, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := c.validateSearchRequest(req); err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	resp, err := c.useCase.SearchVariants(r.Context(), req)
	if err != nil {
		logger.Error("search variants failed", zap.Error(err))
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, resp, logger)
}

func (c *Controller) validateSearchRequest(req SearchVariantsRequest) error {
	if len(req.VariantIDs) == 0 {
		return apperrors.NewValidationError("variantIds is required", apperrors.ValidationDetail{
			Field:   "variantIds",
			Message: "variantIds must not be empty",
		})
	}

	if len(req.VariantIDs) > maxSearchVariants {
		msg := "variantIds exceeds maximum of 100"
		return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
			Field:   "variantIds",
			Message: msg,
		})
	}

	for _, id := range req.VariantIDs {
		if id <= 0 {
			msg := "each variantId must be a positive integer"
			return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
				Field:   "variantIds",
				Message: msg,
			})
		}
	}

	return nil
}
