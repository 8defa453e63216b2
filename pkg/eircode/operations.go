package eircode

import "context"

// Operation names, used as log fields and metric labels.
const (
	OpFindAddress    = "findAddress"
	OpPostcodeLookup = "postcodeLookup"
	OpVerifyAddress  = "verifyAddress"
	OpGetEcadData    = "getEcadData"
)

// FindAddress searches for an address or postcode.
// See https://www.autoaddress.ie/support/developer-centre/api/find-address
func (c *Client) FindAddress(ctx context.Context, address string, opts FindAddressOptions) (any, error) {
	return c.send(ctx, OpFindAddress, pathFindAddress, findAddressRequest{
		Address:            address,
		FindAddressOptions: opts,
	})
}

// PostcodeLookup resolves an Eircode to its address.
// See https://www.autoaddress.ie/support/developer-centre/api/postcode-lookup
func (c *Client) PostcodeLookup(ctx context.Context, postcode string) (any, error) {
	return c.send(ctx, OpPostcodeLookup, pathPostcodeLookup, postcodeLookupRequest{
		Postcode: postcode,
	})
}

// VerifyAddress checks a comma separated address against an Eircode.
// See https://www.autoaddress.ie/support/developer-centre/api/verify-address
func (c *Client) VerifyAddress(ctx context.Context, postcode, address string, opts VerifyAddressOptions) (any, error) {
	return c.send(ctx, OpVerifyAddress, pathVerifyAddress, verifyAddressRequest{
		Postcode:             postcode,
		Address:              address,
		VerifyAddressOptions: opts,
	})
}

// GetEcadData fetches the Eircode Address Database record for ecadID.
// See https://www.autoaddress.ie/support/developer-centre/api/get-ecad-data
func (c *Client) GetEcadData(ctx context.Context, ecadID string) (any, error) {
	return c.send(ctx, OpGetEcadData, pathGetEcadData, getEcadDataRequest{
		EcadID: ecadID,
	})
}

func (c *Client) FindAddressAsync(ctx context.Context, address string, opts FindAddressOptions, done Completion) {
	goComplete(done, func() (any, error) {
		return c.FindAddress(ctx, address, opts)
	})
}

func (c *Client) PostcodeLookupAsync(ctx context.Context, postcode string, done Completion) {
	goComplete(done, func() (any, error) {
		return c.PostcodeLookup(ctx, postcode)
	})
}

func (c *Client) VerifyAddressAsync(ctx context.Context, postcode, address string, opts VerifyAddressOptions, done Completion) {
	goComplete(done, func() (any, error) {
		return c.VerifyAddress(ctx, postcode, address, opts)
	})
}

func (c *Client) GetEcadDataAsync(ctx context.Context, ecadID string, done Completion) {
	goComplete(done, func() (any, error) {
		return c.GetEcadData(ctx, ecadID)
	})
}

// goComplete runs call on a new goroutine and hands its result to done.
func goComplete(done Completion, call func() (any, error)) {
	go func() {
		data, err := call()
		if done != nil {
			done(err, data)
		}
	}()
}
