package steam

// searchResponse is the /api/storesearch wire shape.
type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// appDetailsEnvelope wraps each entry of the /api/appdetails response,
// which is keyed by app id.
type appDetailsEnvelope struct {
	Success bool            `json:"success"`
	Data    *appDetailsData `json:"data"`
}

type appDetailsData struct {
	Name          string            `json:"name"`
	IsFree        bool              `json:"is_free"`
	HeaderImage   string            `json:"header_image"`
	ReleaseDate   apiReleaseDate    `json:"release_date"`
	Platforms     apiPlatforms      `json:"platforms"`
	PriceOverview *apiPriceOverview `json:"price_overview"`
}

type apiReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

type apiPlatforms struct {
	Windows bool `json:"windows"`
	Mac     bool `json:"mac"`
	Linux   bool `json:"linux"`
}

type apiPriceOverview struct {
	DiscountPercent  int    `json:"discount_percent"`
	InitialFormatted string `json:"initial_formatted"`
	FinalFormatted   string `json:"final_formatted"`
}
