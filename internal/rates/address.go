package rates

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRequest marks a request rejected before any provider call.
var ErrInvalidRequest = errors.New("invalid shipment request")

// Postcode heuristics. They are best-effort: any other 5-digit scheme is read
// as a US ZIP, so callers should send ISO-2 country codes whenever they can.
var (
	ukPostcode = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?\s?[0-9][A-Z]{2}$`)
	usZip      = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
	caPostcode = regexp.MustCompile(`^[A-Z][0-9][A-Z]\s?[0-9][A-Z][0-9]$`)
)

// InferCountry guesses an ISO-2 country from a postal code, falling back to def.
func InferCountry(postalCode, def string) string {
	pc := strings.ToUpper(strings.TrimSpace(postalCode))
	switch {
	case ukPostcode.MatchString(pc):
		return "GB"
	case usZip.MatchString(pc):
		return "US"
	case caPostcode.MatchString(pc):
		return "CA"
	default:
		return strings.ToUpper(def)
	}
}

// ResolveCountry returns the address country when it is a 2-letter code,
// otherwise the inferred one.
func ResolveCountry(addr Address, def string) string {
	c := strings.TrimSpace(addr.Country)
	if len(c) == 2 {
		return strings.ToUpper(c)
	}
	return InferCountry(addr.PostalCode, def)
}

// Normalize returns a copy of the request with both countries resolved.
func (r ShipmentRequest) Normalize(defaultCountry string) ShipmentRequest {
	out := r
	out.From.Country = ResolveCountry(r.From, defaultCountry)
	out.To.Country = ResolveCountry(r.To, defaultCountry)
	return out
}

// Validate checks the fields every provider needs.
func (r ShipmentRequest) Validate() error {
	if err := validateAddress("from", r.From); err != nil {
		return err
	}
	if err := validateAddress("to", r.To); err != nil {
		return err
	}
	if r.Parcel.WeightKg <= 0 {
		return fmt.Errorf("%w: parcel weight must be greater than zero", ErrInvalidRequest)
	}
	return nil
}

func validateAddress(side string, a Address) error {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(a.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(a.Street1) == "" {
		missing = append(missing, "street1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	if len(strings.TrimSpace(a.Country)) != 2 {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s address missing %s", ErrInvalidRequest, side, strings.Join(missing, ", "))
	}
	return nil
}
