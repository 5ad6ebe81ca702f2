package booking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ServiGo-Platform/service-marketplace/internal/domain/catalog"
	"github.com/ServiGo-Platform/service-marketplace/pkg/domain"
)

// PlatformFeePercent is the marketplace's cut of the service subtotal.
const PlatformFeePercent = 10

// LineRequest is one requested service entry before pricing.
type LineRequest struct {
	ServiceID       uuid.UUID `json:"service_id"`
	Quantity        int       `json:"quantity"`
	SelectedOptions []string  `json:"selected_options"`
}

// Pricing is a booking's monetary breakdown. TotalAmount is always
// ServiceTotal + PlatformFee.
type Pricing struct {
	ServiceTotal int64  `json:"service_total"`
	PlatformFee  int64  `json:"platform_fee"`
	TotalAmount  int64  `json:"total_amount"`
	Currency     string `json:"currency"`
}

// Quote is the priced result of a booking request: the resolved lines, the
// breakdown, and the single provider all lines belong to.
type Quote struct {
	ProviderID uuid.UUID
	Lines      []ServiceLine
	Pricing    Pricing
}

// ComputeQuote prices the requested lines against the resolved catalog
// services. Per line the unit price (discounted when applicable) is
// multiplied by quantity and the selected option prices are added flat, once,
// regardless of quantity. The platform fee is 10% of the subtotal, rounded
// half-up. Pure computation; the caller persists and bumps counters.
func ComputeQuote(requests []LineRequest, services []*catalog.Service) (Quote, error) {
	if len(requests) == 0 {
		return Quote{}, domain.NewValidationError("please select at least one service")
	}

	byID := make(map[uuid.UUID]*catalog.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	var providerID uuid.UUID
	lines := make([]ServiceLine, 0, len(requests))
	var serviceTotal int64
	currency := ""

	for _, req := range requests {
		svc, ok := byID[req.ServiceID]
		if !ok || !svc.IsAvailable {
			return Quote{}, &domain.Error{
				Kind:    domain.KindNotFound,
				Message: "one or more services were not found or are unavailable",
			}
		}

		if providerID == uuid.Nil {
			providerID = svc.ProviderID
			currency = svc.Pricing.Currency
		} else if svc.ProviderID != providerID {
			return Quote{}, domain.NewValidationError("all services must belong to the same provider")
		}

		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 1 {
			return Quote{}, domain.NewValidationError("quantity must be at least 1")
		}

		lineTotal := svc.UnitPrice() * int64(quantity)

		options := make([]SelectedOption, 0, len(req.SelectedOptions))
		for _, name := range req.SelectedOptions {
			price, found := svc.OptionPrice(name)
			if !found {
				return Quote{}, domain.NewValidationError(
					fmt.Sprintf("unknown option %q for service %q", name, svc.Title))
			}
			options = append(options, SelectedOption{Name: name, Price: price})
			lineTotal += price
		}

		lines = append(lines, ServiceLine{
			ServiceID:       svc.ID,
			Quantity:        quantity,
			Price:           lineTotal,
			SelectedOptions: options,
		})
		serviceTotal += lineTotal
	}

	fee := platformFee(serviceTotal)
	return Quote{
		ProviderID: providerID,
		Lines:      lines,
		Pricing: Pricing{
			ServiceTotal: serviceTotal,
			PlatformFee:  fee,
			TotalAmount:  serviceTotal + fee,
			Currency:     currency,
		},
	}, nil
}

// platformFee computes round-half-up(serviceTotal * 10%) in integer math.
func platformFee(serviceTotal int64) int64 {
	fee := serviceTotal * PlatformFeePercent / 100
	if serviceTotal*PlatformFeePercent%100 >= 50 {
		fee++
	}
	return fee
}
