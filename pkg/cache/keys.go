package cache

// Keyer generates cache keys.
type Keyer interface {
	// PlanKey identifies the page plan computed for a set of inputs.
	PlanKey(inputHash string, opts PlanKeyOpts) string
}

// PlanKeyOpts holds every setting that changes where items land. Output
// format, overlays and export options are deliberately absent: a plan is
// replayed onto any of them.
type PlanKeyOpts struct {
	Mode          string  `json:"mode"`
	PageWidth     int     `json:"page_width"`
	PageHeight    int     `json:"page_height"`
	Margin        int     `json:"margin"`
	Spacing       int     `json:"spacing"`
	Scale         float64 `json:"scale"`
	ImagesPerPage int     `json:"images_per_page"`
	SortPrimary   string  `json:"sort_primary"`
	SortSecondary string  `json:"sort_secondary"`
	Seed          uint64  `json:"seed"`
	GroupBreak    bool    `json:"group_break"`
	BreakType     string  `json:"break_type"`
	GroupHeaders  bool    `json:"group_headers"`
	Captions      string  `json:"captions"` // caption fields and font size, empty when off
	Extra         string  `json:"extra"`    // mode-specific tunables
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PlanKey hashes the input fingerprint together with opts.
func (DefaultKeyer) PlanKey(inputHash string, opts PlanKeyOpts) string {
	return hashKey("plan", inputHash, opts)
}
