package models

import (
	"encoding/json"
	"time"
)

// EntityType identifies the kind of entity in the entities array.
type EntityType string

const (
	EntityMerchant     EntityType = "merchant"
	EntityLocation     EntityType = "location"
	EntityIntermediary EntityType = "intermediary"
	EntityPerson       EntityType = "person"
)

// Confidence is a confidence score with explanatory reason tags (v1.1.0+).
// Older API versions returned a bare integer; both shapes decode.
type Confidence struct {
	Value   int      `json:"value"`
	Reasons []string `json:"reasons,omitempty"`
}

// UnmarshalJSON accepts either a plain integer or a {value, reasons} object.
func (c *Confidence) UnmarshalJSON(b []byte) error {
	var v int
	if err := json.Unmarshal(b, &v); err == nil {
		c.Value = v
		c.Reasons = nil
		return nil
	}
	type plain Confidence
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = Confidence(p)
	return nil
}

// UnmarshalJSON maps unrecognized channel values to ChannelUnknown instead
// of failing the whole response.
func (c *TransactionChannel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch TransactionChannel(s) {
	case ChannelInStore, ChannelOnline, ChannelMobileApp, ChannelATM, ChannelBankTransfer, ChannelUnknown:
		*c = TransactionChannel(s)
	default:
		*c = ChannelUnknown
	}
	return nil
}

// Coordinates are geographic coordinates.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CategoryCode holds industry classification codes. Zero means absent.
type CategoryCode struct {
	MCC   int `json:"mcc,omitempty"`
	SIC   int `json:"sic,omitempty"`
	NAICS int `json:"naics,omitempty"`
}

// Category is one level of the category hierarchy.
//
// The API has returned codes in two shapes across versions: nested under a
// "code" object, or flat on the category itself. UnmarshalJSON folds the
// flat shape into Code so callers only deal with one.
type Category struct {
	Name        string        `json:"name"`
	Code        *CategoryCode `json:"code,omitempty"`
	Type        string        `json:"type,omitempty"` // primary, secondary, tertiary
	Level       int           `json:"level,omitempty"`
	Parent      string        `json:"parent,omitempty"`
	Description string        `json:"description,omitempty"`
}

// UnmarshalJSON normalizes flat mcc/sic/naics fields into the Code object.
func (c *Category) UnmarshalJSON(b []byte) error {
	type plain Category
	aux := struct {
		*plain
		MCC   *int `json:"mcc"`
		SIC   *int `json:"sic"`
		NAICS *int `json:"naics"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if c.Code == nil && (aux.MCC != nil || aux.SIC != nil || aux.NAICS != nil) {
		code := &CategoryCode{}
		if aux.MCC != nil {
			code.MCC = *aux.MCC
		}
		if aux.SIC != nil {
			code.SIC = *aux.SIC
		}
		if aux.NAICS != nil {
			code.NAICS = *aux.NAICS
		}
		c.Code = code
	}
	return nil
}

// MCC returns the Merchant Category Code, or 0 if absent.
func (c Category) MCC() int {
	if c.Code == nil {
		return 0
	}
	return c.Code.MCC
}

// CategoryStructure is the hierarchical category classification.
type CategoryStructure struct {
	Primary    Category  `json:"primary"`
	Secondary  *Category `json:"secondary,omitempty"`
	Tertiary   *Category `json:"tertiary,omitempty"`
	Confidence int       `json:"confidence,omitempty"`
}

// Subscription is the recurring-payment detection result.
type Subscription struct {
	Recurring bool   `json:"recurring"`
	Type      string `json:"type,omitempty"` // streaming, software, news, fitness, mobile, gaming, utilities, other
}

// LocationRating is aggregate rating data for a location.
type LocationRating struct {
	Average float64 `json:"average,omitempty"`
	Count   int     `json:"count,omitempty"`
	Source  string  `json:"source,omitempty"`
}

// StructuredAddress is a structured postal address.
type StructuredAddress struct {
	Street      string       `json:"street,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	PostalCode  string       `json:"postalCode,omitempty"`
	Country     string       `json:"country,omitempty"`
	CountryName string       `json:"countryName,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Timezone    string       `json:"timezone,omitempty"`
}

// MerchantData is the payload of a merchant entity.
type MerchantData struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Alias       []string `json:"alias,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Description string   `json:"description,omitempty"`
	Color       string   `json:"color,omitempty"`
	Website     string   `json:"website,omitempty"`
	Domain      string   `json:"domain,omitempty"`
}

// LocationData is the payload of a location entity.
type LocationData struct {
	ID          string             `json:"id,omitempty"`
	Name        string             `json:"name,omitempty"`
	Formatted   string             `json:"formatted,omitempty"`
	PhoneNumber string             `json:"phoneNumber,omitempty"`
	Website     string             `json:"website,omitempty"`
	PriceRange  string             `json:"priceRange,omitempty"`
	Rating      *LocationRating    `json:"rating,omitempty"`
	Structured  *StructuredAddress `json:"structured,omitempty"`
}

// IntermediaryData is the payload of an intermediary entity (payment
// processors, platforms, wallets, P2P services).
type IntermediaryData struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Website     string `json:"website,omitempty"`
	Domain      string `json:"domain,omitempty"`
}

// PersonData is the payload of a person entity (P2P transfer recipients).
type PersonData struct {
	DisplayName string `json:"displayName"`
}

// EntityResult is one identified entity from the entities array. The data
// bag is type-specific; use the As* accessors to decode it.
type EntityResult struct {
	Type       EntityType     `json:"type"`
	Role       string         `json:"role"` // e.g. organization, store_location, processor, recipient
	Confidence Confidence     `json:"confidence"`
	Data       map[string]any `json:"data"`
}

// Name returns the primary display name from the entity data, regardless of
// entity type. Empty string when absent.
func (e EntityResult) Name() string {
	key := "name"
	if e.Type == EntityPerson {
		key = "displayName"
	}
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

// decodeData round-trips the dynamic data bag through JSON into dst.
func (e EntityResult) decodeData(dst any) bool {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// AsMerchant decodes the data bag as merchant data. The second return is
// false when this is not a merchant entity or the payload does not fit.
func (e EntityResult) AsMerchant() (MerchantData, bool) {
	var m MerchantData
	if e.Type != EntityMerchant || !e.decodeData(&m) {
		return MerchantData{}, false
	}
	return m, true
}

// AsLocation decodes the data bag as location data.
func (e EntityResult) AsLocation() (LocationData, bool) {
	var l LocationData
	if e.Type != EntityLocation || !e.decodeData(&l) {
		return LocationData{}, false
	}
	return l, true
}

// AsIntermediary decodes the data bag as intermediary data.
func (e EntityResult) AsIntermediary() (IntermediaryData, bool) {
	var i IntermediaryData
	if e.Type != EntityIntermediary || !e.decodeData(&i) {
		return IntermediaryData{}, false
	}
	return i, true
}

// AsPerson decodes the data bag as person data.
func (e EntityResult) AsPerson() (PersonData, bool) {
	var p PersonData
	if e.Type != EntityPerson || !e.decodeData(&p) {
		return PersonData{}, false
	}
	return p, true
}

// TransactionData is the enriched transaction block of a response.
//
// Category is kept raw because the API has returned both the nested
// {primary: {...}} structure and a flat single category object; see
// CategoryStructure and PrimaryCategoryName.
type TransactionData struct {
	Category     json.RawMessage    `json:"category,omitempty"`
	Subscription *Subscription      `json:"subscription,omitempty"`
	Channel      TransactionChannel `json:"channel,omitempty"`
	Confidence   Confidence         `json:"confidence"`
}

// CategoryStructure parses the category field into the hierarchical shape.
// A flat {name, ...} object is treated as an implicit primary category.
// Returns false when the field is absent or has an unrecognized shape.
func (d TransactionData) CategoryStructure() (CategoryStructure, bool) {
	if len(d.Category) == 0 || string(d.Category) == "null" {
		return CategoryStructure{}, false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(d.Category, &probe); err != nil {
		return CategoryStructure{}, false
	}
	if _, ok := probe["primary"]; ok {
		var cs CategoryStructure
		if err := json.Unmarshal(d.Category, &cs); err != nil {
			return CategoryStructure{}, false
		}
		return cs, true
	}
	if _, ok := probe["name"]; ok {
		var c Category
		if err := json.Unmarshal(d.Category, &c); err != nil {
			return CategoryStructure{}, false
		}
		cs := CategoryStructure{Primary: c}
		if raw, ok := probe["confidence"]; ok {
			_ = json.Unmarshal(raw, &cs.Confidence)
		}
		return cs, true
	}
	return CategoryStructure{}, false
}

// PrimaryCategoryName returns the primary category name, or "Unknown" when
// the category is absent or unparseable.
func (d TransactionData) PrimaryCategoryName() string {
	cs, ok := d.CategoryStructure()
	if !ok || cs.Primary.Name == "" {
		return "Unknown"
	}
	return cs.Primary.Name
}

// EnrichmentData is the complete enrichment payload of a response.
type EnrichmentData struct {
	Transaction TransactionData `json:"transaction"`
	Entities    []EntityResult  `json:"entities,omitempty"`
}

// Entity returns the first entity of the given type.
func (d EnrichmentData) Entity(t EntityType) (EntityResult, bool) {
	for _, e := range d.Entities {
		if e.Type == t {
			return e, true
		}
	}
	return EntityResult{}, false
}

// EntitiesOf returns all entities of the given type.
func (d EnrichmentData) EntitiesOf(t EntityType) []EntityResult {
	var out []EntityResult
	for _, e := range d.Entities {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// MerchantName returns the merchant display name, or empty when no merchant
// entity was identified.
func (d EnrichmentData) MerchantName() string {
	if e, ok := d.Entity(EntityMerchant); ok {
		return e.Name()
	}
	return ""
}

// ResponseMeta is the metadata block attached to every API response.
type ResponseMeta struct {
	GeneratedAt     time.Time `json:"generatedAt"`
	RequestID       string    `json:"requestId"`
	Version         string    `json:"version"`
	CategoryVersion string    `json:"categoryVersion,omitempty"`
	Errors          []string  `json:"errors,omitempty"`
}

// EnrichResponse is a 2xx enrichment response.
type EnrichResponse struct {
	Success bool           `json:"success"`
	Partial bool           `json:"partial"`
	Data    EnrichmentData `json:"data"`
	Meta    ResponseMeta   `json:"meta"`
}

// ErrorDetail is the structured error body of a non-2xx response.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is a non-2xx API response.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   ErrorDetail  `json:"error"`
	Meta    ResponseMeta `json:"meta"`
}
