package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRecord is the realised commission of one confirmed booking.
// Records are append-only and never modified after creation.
type CommissionRecord struct {
	ID                   string          `json:"id"`
	Timestamp            time.Time       `json:"timestamp"`
	Provider             string          `json:"provider"`
	CarrierName          string          `json:"carrierName"`
	ServiceName          string          `json:"serviceName"`
	CustomerPrice        decimal.Decimal `json:"customerPrice"`
	Commission           decimal.Decimal `json:"commission"`
	CommissionPercentage decimal.Decimal `json:"commissionPercentage"`
	Currency             string          `json:"currency"`
	ShipmentID           *string         `json:"shipmentId,omitempty"`
	CustomerEmail        *string         `json:"customerEmail,omitempty"`
	Route                string          `json:"route"`
}
