package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCarrierNotSupported is returned for carrier names outside the known set,
// and for known carriers that have no registered handler.
var ErrCarrierNotSupported = errors.New("carrier not supported")

// Carrier identifies a shipping provider.
type Carrier string

const (
	// CarrierUSPS is the United States Postal Service.
	CarrierUSPS Carrier = "USPS"
	// CarrierFedEx is FedEx.
	CarrierFedEx Carrier = "FedEx"
	// CarrierUPS is United Parcel Service.
	CarrierUPS Carrier = "UPS"
	// CarrierDHL is DHL.
	CarrierDHL Carrier = "DHL"
)

// knownCarriers is the closed set of carrier names, keyed by lower-case name.
var knownCarriers = map[string]Carrier{
	"usps":  CarrierUSPS,
	"fedex": CarrierFedEx,
	"ups":   CarrierUPS,
	"dhl":   CarrierDHL,
}

// ParseCarrier resolves an untrusted carrier name (case-insensitive) against the known set.
func ParseCarrier(name string) (Carrier, error) {
	if c, ok := knownCarriers[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrCarrierNotSupported, name)
}

// String returns the display name.
func (c Carrier) String() string {
	return string(c)
}

// Carriers returns the known carriers in display order.
func Carriers() []Carrier {
	return []Carrier{CarrierUSPS, CarrierFedEx, CarrierUPS, CarrierDHL}
}
