package service

import (
	"fmt"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
)

// DefaultPincodes are the postal codes served when none are configured.
var DefaultPincodes = []string{"560001", "110002", "400002", "700001", "500001"}

// DeliveryService answers whether a postal code is served.
type DeliveryService struct {
	pincodes map[string]struct{}
}

// NewDeliveryService builds the allow-list. Codes that are not six digits
// are rejected so a bad configuration fails at start.
func NewDeliveryService(pincodes []string) (*DeliveryService, error) {
	set := make(map[string]struct{}, len(pincodes))
	for _, code := range pincodes {
		if !isPincode(code) {
			return nil, fmt.Errorf("invalid delivery pincode %q: %w", code, entity.ErrMalformedPostalCode)
		}
		set[code] = struct{}{}
	}
	return &DeliveryService{pincodes: set}, nil
}

// IsDeliverable reports whether code is on the allow-list. Anything other
// than exactly six ASCII digits is malformed.
func (s *DeliveryService) IsDeliverable(code string) (bool, error) {
	if !isPincode(code) {
		return false, fmt.Errorf("%w: %q", entity.ErrMalformedPostalCode, code)
	}
	_, ok := s.pincodes[code]
	return ok, nil
}

func isPincode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
