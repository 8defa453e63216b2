package eircode

// Language selects the language of returned addresses.
type Language string

const (
	English Language = "en"
	Irish   Language = "ga"
)

// Country selects the country an address is searched in.
type Country string

const (
	GreatBritain Country = "gb"
	Ireland      Country = "ie"
)

// FindAddressOptions holds the optional FindAddress parameters. Nil pointers
// and empty enums are left out of the request entirely.
type FindAddressOptions struct {
	// AddressID looks up a specific address, as returned by ECAD lookups.
	AddressID *string
	// Limit caps the number of results. The API defaults to 20.
	Limit    *int     `validate:"omitempty,gt=0"`
	Language Language `validate:"omitempty,oneof=en ga"`
	Country  Country  `validate:"omitempty,oneof=gb ie"`
	// IncludeVanity requests the vanity form of an address when it exists.
	IncludeVanity      bool
	AddressProfileName *string
}

type VerifyAddressOptions struct {
	Language Language `validate:"omitempty,oneof=en ga"`
}

// Completion receives the outcome of an async call. It is called exactly
// once, from the goroutine that performed the request.
type Completion func(err error, data any)

// String returns a pointer to v.
func String(v string) *string { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
