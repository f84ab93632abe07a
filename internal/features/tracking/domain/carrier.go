package domain

// Carrier tags a known LTL carrier.
type Carrier string

const (
	CarrierFedExFreight Carrier = "fedex_freight"
	CarrierRLCarriers   Carrier = "rl_carriers"
	CarrierEstes        Carrier = "estes"
	CarrierTForce       Carrier = "tforce_freight"
	CarrierPeninsula    Carrier = "peninsula_truck_lines"
	CarrierAveritt      Carrier = "averitt_express"
	CarrierUnknown      Carrier = "unknown"
)

// CarrierProfile holds everything the engine knows about one carrier: where
// to fetch, which strategies apply in which order, and which page markers
// identify a block. Profiles are built once at startup and read-only after.
//
// Endpoint URLs and field names are best-effort seed data. Carriers publish
// no stable API, so every value here is overridable through configuration.
type CarrierProfile struct {
	// Carrier is the tag this profile describes.
	Carrier Carrier `mapstructure:"carrier" json:"carrier"`
	// Name is the human-readable carrier name.
	Name string `mapstructure:"name" json:"name"`
	// TrackingURL is a printf-style template (%s = PRO number) for the
	// public tracking page. Used by the direct and browser strategies.
	TrackingURL string `mapstructure:"tracking_url" json:"tracking_url"`
	// FormURL is the page carrying the tracking search form.
	FormURL string `mapstructure:"form_url" json:"form_url"`
	// FormField is the input name the PRO number is submitted under.
	FormField string `mapstructure:"form_field" json:"form_field"`
	// APIEndpoint is the reverse-engineered JSON endpoint, when known.
	APIEndpoint string `mapstructure:"api_endpoint" json:"api_endpoint"`
	// APIField is the JSON request field carrying the PRO number.
	APIField string `mapstructure:"api_field" json:"api_field"`
	// MirrorURLs are third-party aggregator templates (%s = PRO number).
	MirrorURLs []string `mapstructure:"mirror_urls" json:"mirror_urls"`
	// HijackPattern is the XHR URL glob the browser strategy intercepts.
	// Empty means the strategy returns the rendered page HTML instead.
	HijackPattern string `mapstructure:"hijack_pattern" json:"hijack_pattern"`
	// BlockKeywords extend the carrier-agnostic block keyword set with
	// markers specific to this carrier's challenge pages.
	BlockKeywords []string `mapstructure:"block_keywords" json:"block_keywords"`
	// Strategies is the escalation order for this carrier.
	Strategies []StrategyID `mapstructure:"strategies" json:"strategies"`
	// MaxConcurrent caps simultaneous in-flight requests to this carrier.
	MaxConcurrent int `mapstructure:"max_concurrent" json:"max_concurrent"`
	// RequestsPerSecond is the sustained rate ceiling for this carrier.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second"`
}

// defaultStrategies is the escalation order used when a profile does not
// override it: cheap fetches first, the headless browser last.
var defaultStrategies = []StrategyID{
	StrategyDirect,
	StrategyForm,
	StrategyAPI,
	StrategyAntiBot,
	StrategyMirror,
	StrategyBrowser,
}

// SeedProfiles returns the built-in carrier profiles. URLs and field names
// mirror what the carriers' public sites used at the time of writing and are
// expected to drift; treat them as a starting point, not a contract.
func SeedProfiles() map[Carrier]*CarrierProfile {
	profiles := []*CarrierProfile{
		{
			Carrier:       CarrierFedExFreight,
			Name:          "FedEx Freight",
			TrackingURL:   "https://www.fedex.com/fedextrack/?trknbr=%s",
			FormURL:       "https://www.fedex.com/en-us/tracking.html",
			FormField:     "trackingnumber",
			APIEndpoint:   "https://www.fedex.com/trackingCal/track",
			APIField:      "trackingNumber",
			HijackPattern: "*/trackingCal/track*",
			BlockKeywords: []string{"fedex security", "unusual activity"},
		},
		{
			Carrier:     CarrierRLCarriers,
			Name:        "R+L Carriers",
			TrackingURL: "https://www.rlcarriers.com/tracking?pro=%s",
			FormURL:     "https://www.rlcarriers.com/freight/shipping/shipment-tracing",
			FormField:   "pro",
			APIEndpoint: "https://www.rlcarriers.com/api/Tracking",
			APIField:    "proNumber",
		},
		{
			Carrier:       CarrierEstes,
			Name:          "Estes Express",
			TrackingURL:   "https://www.estes-express.com/myestes/tracking/shipment?searchValue=%s",
			FormURL:       "https://www.estes-express.com/myestes/tracking/shipments",
			FormField:     "searchValue",
			APIEndpoint:   "https://www.estes-express.com/api/tracking",
			APIField:      "pro",
			HijackPattern: "*/api/tracking*",
		},
		{
			Carrier:     CarrierTForce,
			Name:        "TForce Freight",
			TrackingURL: "https://www.tforcefreight.com/tracking?pro=%s",
			FormURL:     "https://www.tforcefreight.com/ltl/apps/Tracking",
			FormField:   "proNumbers",
			APIEndpoint: "https://www.tforcefreight.com/api/tracking",
			APIField:    "proNumber",
		},
		{
			// Peninsula's site is a single page application; the plain
			// page carries no data, so the browser strategy ranks early.
			Carrier:       CarrierPeninsula,
			Name:          "Peninsula Truck Lines",
			TrackingURL:   "https://www.peninsulatruck.com/_/#/track/?pro_number=%s",
			APIEndpoint:   "https://www.peninsulatruck.com/api/tracking",
			APIField:      "pro_number",
			HijackPattern: "*/api/tracking*",
			Strategies: []StrategyID{
				StrategyAPI,
				StrategyBrowser,
				StrategyAntiBot,
				StrategyMirror,
			},
		},
		{
			Carrier:     CarrierAveritt,
			Name:        "Averitt Express",
			TrackingURL: "https://www.averittexpress.com/tracking?pro=%s",
			FormURL:     "https://www.averittexpress.com/resources/tools/ltl-tracking",
			FormField:   "proNumber",
		},
	}

	out := make(map[Carrier]*CarrierProfile, len(profiles))
	for _, p := range profiles {
		p.ApplyDefaults()
		out[p.Carrier] = p
	}
	return out
}

// ApplyDefaults fills the zero-valued fields every profile must carry.
func (p *CarrierProfile) ApplyDefaults() {
	if len(p.Strategies) == 0 {
		p.Strategies = append([]StrategyID(nil), defaultStrategies...)
	}
	if len(p.MirrorURLs) == 0 {
		p.MirrorURLs = []string{
			"https://packagetrackr.com/track/%s",
			"https://parcelsapp.com/en/tracking/%s",
		}
	}
	if p.MaxConcurrent <= 0 {
		p.MaxConcurrent = 5
	}
	if p.RequestsPerSecond <= 0 {
		p.RequestsPerSecond = 2
	}
}
