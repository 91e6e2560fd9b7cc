package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wristcare/alertband-backend/internal/repository"
	"github.com/wristcare/alertband-backend/internal/service"
	"github.com/wristcare/alertband-backend/pkg/api"
	"github.com/wristcare/alertband-backend/pkg/model"
)

// Helper functions for type conversions between API types and internal models

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// requestToConfiguration converts an encode request into the domain model.
// String-typed hour, minute and day fields are parsed here; parse failures
// come back as field-specific validation errors.
func requestToConfiguration(req *api.EncodeRequest) (*model.DeviceConfiguration, error) {
	alerts := make([]model.AlertDefinition, 0, len(req.Alerts))
	for i, in := range req.Alerts {
		alert, err := alertInputToModel(in, i)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	return &model.DeviceConfiguration{
		Contact: model.ContactProfile{
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		},
		MedicalInfo: req.MedicalInfo,
		DeviceID:    req.DeviceID,
		Alerts:      alerts,
	}, nil
}

// alertInputToModel converts one schedule row from its form representation
func alertInputToModel(in api.AlertInput, index int) (model.AlertDefinition, error) {
	field := func(name string) string { return fmt.Sprintf("alerts[%d].%s", index, name) }

	hour, err := strconv.Atoi(in.Hour)
	if err != nil {
		return model.AlertDefinition{}, &service.ValidationError{
			Field:   field("hour"),
			Message: fmt.Sprintf("hour %q is not a number", in.Hour),
		}
	}

	minute, err := strconv.Atoi(in.Minute)
	if err != nil {
		return model.AlertDefinition{}, &service.ValidationError{
			Field:   field("minute"),
			Message: fmt.Sprintf("minute %q is not a number", in.Minute),
		}
	}

	days := make([]model.Weekday, 0, len(in.SelectedDays))
	for _, code := range in.SelectedDays {
		day, err := strconv.Atoi(code)
		if err != nil {
			return model.AlertDefinition{}, &service.ValidationError{
				Field:   field("selectedDays"),
				Message: fmt.Sprintf("day code %q is not a number", code),
			}
		}
		days = append(days, model.Weekday(day))
	}

	return model.AlertDefinition{
		Message:  in.Message,
		Category: model.AlertCategory(in.Type),
		Everyday: in.IsEveryday,
		Days:     days,
		Hour:     hour,
		Minute:   minute,
	}, nil
}

// configurationToResponse converts a saved configuration to its API form
func configurationToResponse(cfg *model.SavedConfiguration) api.ConfigurationResponse {
	alerts := make([]api.AlertResponse, 0, len(cfg.Alerts))
	for _, alert := range cfg.Alerts {
		days := make([]string, 0, len(alert.Days))
		for _, day := range alert.Days {
			days = append(days, strconv.Itoa(int(day)))
		}
		alerts = append(alerts, api.AlertResponse{
			Message:      alert.Message,
			Type:         string(alert.Category),
			IsEveryday:   alert.Everyday,
			SelectedDays: days,
			Hour:         fmt.Sprintf("%02d", alert.Hour),
			Minute:       fmt.Sprintf("%02d", alert.Minute),
		})
	}

	return api.ConfigurationResponse{
		ID:              cfg.ID,
		CreatedAt:       cfg.CreatedAt,
		Name:            cfg.Contact.Name,
		Phone:           cfg.Contact.Phone,
		Email:           cfg.Contact.Email,
		MedicalInfo:     cfg.MedicalInfo,
		DeviceID:        cfg.DeviceID,
		Alerts:          alerts,
		FormattedOutput: cfg.Payload,
	}
}

// respondServiceError maps a service error onto the HTTP error envelope.
// Validation failures carry their field name in the details; unknown ids map
// to 404; everything else is an internal error.
func respondServiceError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: vErr.Message,
			Details: stringPtr(vErr.Field),
		})
		return
	}

	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Configuration not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, api.ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Details: stringPtr(err.Error()),
	})
}
