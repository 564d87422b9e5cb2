package customerio

// Region selects the Customer.io data center the client talks to. It only
// affects the default hostnames; credentials and behaviour are identical
// across regions.
type Region struct {
	Name      string
	TrackHost string
	APIHost   string
}

var (
	// RegionUS is the default United States region.
	RegionUS = Region{Name: "us", TrackHost: "track.customer.io", APIHost: "api.customer.io"}

	// RegionEU is the European Union region.
	RegionEU = Region{Name: "eu", TrackHost: "track-eu.customer.io", APIHost: "api-eu.customer.io"}
)

func (r Region) valid() bool {
	return r.TrackHost != "" && r.APIHost != ""
}
