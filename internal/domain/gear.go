package domain

// Grinder is a registered coffee grinder.
type Grinder struct {
	Meta

	Name       string `json:"name"`
	Brand      string `json:"brand,omitempty"`
	Kind       string `json:"kind,omitempty"` // "burr", "blade", "hand"
	MinSetting int    `json:"minSetting,omitempty"`
	MaxSetting int    `json:"maxSetting,omitempty"`
	Notes      string `json:"notes,omitempty"`
	OwnerID    string `json:"ownerId,omitempty"`
}

// Brewer is a registered manual brewing device.
type Brewer struct {
	Meta

	Name       string `json:"name"`
	Method     string `json:"method,omitempty"` // "pour-over", "immersion", "pressure"
	CapacityML int    `json:"capacityMl,omitempty"`
	Notes      string `json:"notes,omitempty"`
	OwnerID    string `json:"ownerId,omitempty"`
}
