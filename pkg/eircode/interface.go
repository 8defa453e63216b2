package eircode

import "context"

// Lookup defines the blocking Eircode API operations
type Lookup interface {
	// FindAddress searches for an address or postcode
	FindAddress(ctx context.Context, address string, opts FindAddressOptions) (any, error)

	// PostcodeLookup resolves an Eircode to its address
	PostcodeLookup(ctx context.Context, postcode string) (any, error)

	// VerifyAddress checks an address against an Eircode
	VerifyAddress(ctx context.Context, postcode, address string, opts VerifyAddressOptions) (any, error)

	// GetEcadData fetches the ECAD record for an ecad id
	GetEcadData(ctx context.Context, ecadID string) (any, error)
}

var _ Lookup = (*Client)(nil)
