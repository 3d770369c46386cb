package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/defent/order-intake/internal/service/models/order"
	"github.com/defent/order-intake/internal/service/services/ordersvc"
	"github.com/defent/order-intake/internal/transport/http/response"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	Admit(ctx context.Context, req ordersvc.AdmitOrderRequest) (*order.Order, *ordersvc.Rejection, error)
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	FirstName         string   `json:"firstName"          validate:"required"`
	LastName          string   `json:"lastName"           validate:"required"`
	StreetAddress     string   `json:"streetAddress"      validate:"required"`
	StreetAddress2    string   `json:"streetAddress2"`
	PostCode          string   `json:"postCode"           validate:"required"`
	Email             string   `json:"email"              validate:"required"`
	ProductID         string   `json:"productId"          validate:"required"`
	Subscription      string   `json:"subscription"`
	Age               string   `json:"age"`
	Gender            string   `json:"gender"`
	Identity          string   `json:"identity"`
	HouseholdSize     string   `json:"household_size"`
	Ethnicity         []string `json:"ethnicity"`
	HouseholdLanguage []string `json:"household_language"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createOrderRequest) toModel() ordersvc.AdmitOrderRequest {
	return ordersvc.AdmitOrderRequest{
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		Email:             r.Email,
		StreetAddress:     r.StreetAddress,
		StreetAddress2:    r.StreetAddress2,
		PostCode:          r.PostCode,
		ProductID:         r.ProductID,
		Subscription:      r.Subscription,
		Age:               r.Age,
		Gender:            r.Gender,
		Identity:          r.Identity,
		HouseholdSize:     r.HouseholdSize,
		Ethnicity:         r.Ethnicity,
		HouseholdLanguage: r.HouseholdLanguage,
	}
}

// CreateOrder handles the order admission request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		response.Rejected(w, "Missing required field")

		return
	}

	created, rejection, err := service.Admit(r.Context(), req.toModel())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to create an order")
		slog.Error("Error admitting order", "error", err)

		return
	}
	if rejection != nil {
		response.Rejected(w, rejection.Message)

		return
	}

	response.OK(w, created, "Order created")
}
