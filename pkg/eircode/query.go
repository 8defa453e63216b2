package eircode

import (
	"net/url"
	"strconv"
)

// Query parameter names understood by the API.
const (
	paramKey                = "key"
	paramPostcode           = "postcode"
	paramAddress            = "address"
	paramAddressID          = "addressId"
	paramLimit              = "limit"
	paramLanguage           = "language"
	paramCountry            = "country"
	paramVanityMode         = "vanityMode"
	paramAddressProfileName = "addressProfileName"
	paramEcadID             = "ecadId"
)

// Endpoint suffixes, appended to the base URL.
const (
	pathFindAddress    = "/FindAddress"
	pathPostcodeLookup = "/postcodelookup"
	pathVerifyAddress  = "/VerifyAddress"
	pathGetEcadData    = "/getEcadData"
)

type findAddressRequest struct {
	Address string `validate:"required"`
	FindAddressOptions
}

func (r findAddressRequest) query(apiKey string) url.Values {
	q := url.Values{}
	q.Set(paramKey, apiKey)
	q.Set(paramAddress, r.Address)
	if r.AddressID != nil {
		q.Set(paramAddressID, *r.AddressID)
	}
	if r.Limit != nil {
		q.Set(paramLimit, strconv.Itoa(*r.Limit))
	}
	if r.Language != "" {
		q.Set(paramLanguage, string(r.Language))
	}
	if r.Country != "" {
		q.Set(paramCountry, string(r.Country))
	}
	// vanityMode defaults to false upstream, so it's only ever sent as true.
	if r.IncludeVanity {
		q.Set(paramVanityMode, "true")
	}
	if r.AddressProfileName != nil {
		q.Set(paramAddressProfileName, *r.AddressProfileName)
	}
	return q
}

type postcodeLookupRequest struct {
	Postcode string `validate:"required"`
}

func (r postcodeLookupRequest) query(apiKey string) url.Values {
	q := url.Values{}
	q.Set(paramKey, apiKey)
	q.Set(paramPostcode, r.Postcode)
	return q
}

type verifyAddressRequest struct {
	Postcode string `validate:"required"`
	Address  string `validate:"required"`
	VerifyAddressOptions
}

func (r verifyAddressRequest) query(apiKey string) url.Values {
	q := url.Values{}
	q.Set(paramKey, apiKey)
	q.Set(paramPostcode, r.Postcode)
	q.Set(paramAddress, r.Address)
	if r.Language != "" {
		q.Set(paramLanguage, string(r.Language))
	}
	return q
}

type getEcadDataRequest struct {
	EcadID string `validate:"required"`
}

func (r getEcadDataRequest) query(apiKey string) url.Values {
	q := url.Values{}
	q.Set(paramKey, apiKey)
	q.Set(paramEcadID, r.EcadID)
	return q
}
